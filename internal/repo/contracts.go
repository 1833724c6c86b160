package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/mercatto/catalog-sync/internal/entity"
)

type (
	ProductRepo interface {
		GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
		ListByBrand(ctx context.Context, tenantID uuid.UUID, brand string) ([]*entity.Product, error)
		ListPending(ctx context.Context, tenantID uuid.UUID, brand string, limit int) ([]*entity.Product, error)
		CountPending(ctx context.Context, tenantID uuid.UUID, brand string) (int, error)
		SetInternalized(ctx context.Context, id uuid.UUID, storagePath, publicURL string) error
		MarkFailed(ctx context.Context, id uuid.UUID, message string) error
		MarkSynced(ctx context.Context, id uuid.UUID, note string) error
		ResetToPending(ctx context.Context, tenantID uuid.UUID, brand string, onlyFailed bool) (int64, error)
		ResetOneToPending(ctx context.Context, id uuid.UUID) error
		UpsertClones(ctx context.Context, products []*entity.Product) error
		GetByReferenceCodes(ctx context.Context, tenantID uuid.UUID, codes []string) ([]*entity.Product, error)
		DeleteByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (int64, error)
		ListStoragePaths(ctx context.Context) ([]string, error)
	}

	ProductImageRepo interface {
		GetByID(ctx context.Context, id uuid.UUID) (*entity.ProductImage, error)
		ListByProduct(ctx context.Context, productID uuid.UUID) ([]*entity.ProductImage, error)
		ListPendingByProduct(ctx context.Context, productID uuid.UUID) ([]*entity.ProductImage, error)
		InsertBatch(ctx context.Context, images []*entity.ProductImage) error
		SetInternalized(ctx context.Context, id uuid.UUID, storagePath, optimizedURL string) error
		MarkFailed(ctx context.Context, id uuid.UUID, message string) error
		MarkSynced(ctx context.Context, id uuid.UUID, note string) error
		SetForked(ctx context.Context, id uuid.UUID, storagePath, optimizedURL string) error
		ListStoragePaths(ctx context.Context) ([]string, error)
	}

	StagingImageRepo interface {
		Create(ctx context.Context, img *entity.StagingImage) error
		Delete(ctx context.Context, id uuid.UUID) error
		DeleteOlderThan(ctx context.Context, days int) (int64, error)
		ListStoragePaths(ctx context.Context) ([]string, error)
	}

	SyncJobRepo interface {
		Create(ctx context.Context, job *entity.SyncJob) error
		GetByID(ctx context.Context, id uuid.UUID) (*entity.SyncJob, error)
		SetTotal(ctx context.Context, id uuid.UUID, total int) error
		IncrementCompleted(ctx context.Context, id uuid.UUID, delta int) error
		Finish(ctx context.Context, id uuid.UUID, status entity.JobStatus) error
	}

	CloneRecordRepo interface {
		InsertBatch(ctx context.Context, records []*entity.CatalogCloneRecord) error
		ListByPair(ctx context.Context, sourceTenantID, targetTenantID uuid.UUID, brand string) ([]*entity.CatalogCloneRecord, error)
		DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
	}

	// StorageRefRepo answers "how many rows still point at this storage path"
	// across every path-bearing table, as a single aggregate query.
	StorageRefRepo interface {
		CountReferences(ctx context.Context, storagePath string) (int, error)
	}

	ObjectStorage interface {
		Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) error
		Download(ctx context.Context, path string) ([]byte, error)
		List(ctx context.Context, prefix string) ([]string, error)
		DeleteBatch(ctx context.Context, paths []string) error
		PublicURL(path string) string
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)
