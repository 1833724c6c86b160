package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/mercatto/catalog-sync/internal/dto"
	"github.com/mercatto/catalog-sync/internal/entity"
)

type (
	// InternalizeUseCase pulls one entity's external image into managed
	// storage: fetch, transcode, upload, record update. At-least-once and
	// safe to retry from the top.
	InternalizeUseCase interface {
		InternalizeProduct(ctx context.Context, product *entity.Product) error
		InternalizeImage(ctx context.Context, tenantID uuid.UUID, img *entity.ProductImage) error
	}

	// SyncUseCase creates batch jobs, enqueues the work event, and drives the
	// consumer-side backlog drain.
	SyncUseCase interface {
		RunBatch(ctx context.Context, tenantID uuid.UUID, filters dto.SyncFilters) (*entity.SyncJob, error)
		GetJob(ctx context.Context, id uuid.UUID) (*entity.SyncJob, error)
		ReprocessProduct(ctx context.Context, id uuid.UUID) (*entity.SyncJob, error)
		ReprocessFailed(ctx context.Context, tenantID uuid.UUID, brand string) (*entity.SyncJob, error)
		ProcessBacklog(ctx context.Context, event dto.SyncRequested) error
	}

	// ForkUseCase duplicates a stored object into a new owner's namespace
	// without touching the source.
	ForkUseCase interface {
		ForkImage(ctx context.Context, event dto.ForkRequested) (destPath, publicURL string, err error)
		CopyBrandAsset(ctx context.Context, event dto.BrandCopyRequested) (destPath, publicURL string, err error)
	}

	// CloneUseCase bulk-duplicates a brand's products and gallery rows across
	// tenants, idempotently, and can undo exactly what it cloned.
	CloneUseCase interface {
		Clone(ctx context.Context, sourceTenantID, targetTenantID uuid.UUID, brand string) (int, error)
		Undo(ctx context.Context, sourceTenantID, targetTenantID uuid.UUID, brand string) (int, error)
	}

	// CleanupUseCase removes storage objects nothing references any more.
	CleanupUseCase interface {
		SafeDelete(ctx context.Context, path string) error
		FindOrphans(ctx context.Context) ([]string, error)
		Cleanup(ctx context.Context, dryRun bool) (orphans []string, deleted int, err error)
	}
)
