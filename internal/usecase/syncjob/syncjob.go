package syncjob

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mercatto/catalog-sync/internal/dto"
	"github.com/mercatto/catalog-sync/internal/entity"
	"github.com/mercatto/catalog-sync/internal/infrastructure"
	"github.com/mercatto/catalog-sync/internal/repo"
	"github.com/mercatto/catalog-sync/internal/usecase"
	"github.com/mercatto/catalog-sync/pkg/logger"
	"golang.org/x/sync/errgroup"
)

type UseCase struct {
	jobs         repo.SyncJobRepo
	products     repo.ProductRepo
	images       repo.ProductImageRepo
	internalizer usecase.InternalizeUseCase
	publisher    infrastructure.EventPublisher

	chunkSize      int
	productWorkers int
	imageWorkers   int

	logger logger.Interface
}

func New(
	jobs repo.SyncJobRepo,
	products repo.ProductRepo,
	images repo.ProductImageRepo,
	internalizer usecase.InternalizeUseCase,
	publisher infrastructure.EventPublisher,
	chunkSize int,
	productWorkers int,
	imageWorkers int,
	l logger.Interface,
) *UseCase {
	return &UseCase{
		jobs:           jobs,
		products:       products,
		images:         images,
		internalizer:   internalizer,
		publisher:      publisher,
		chunkSize:      chunkSize,
		productWorkers: productWorkers,
		imageWorkers:   imageWorkers,
		logger:         l,
	}
}

// RunBatch creates the job row first - progress polling sees it immediately -
// then hands the actual work to the background dispatcher and returns. Only a
// dispatch that could not be scheduled fails the job here.
func (uc *UseCase) RunBatch(ctx context.Context, tenantID uuid.UUID, filters dto.SyncFilters) (*entity.SyncJob, error) {
	job := &entity.SyncJob{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Status:    entity.JobProcessing,
		CreatedAt: time.Now(),
	}

	if err := uc.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("SyncJobUseCase - RunBatch - uc.jobs.Create: %w", err)
	}

	event := dto.SyncRequested{
		JobID:    job.ID,
		TenantID: tenantID,
		Filters:  filters,
	}

	if err := uc.publisher.PublishSyncRequested(ctx, event); err != nil {
		if finishErr := uc.jobs.Finish(ctx, job.ID, entity.JobFailed); finishErr != nil {
			uc.logger.Error(finishErr, "SyncJobUseCase - RunBatch - uc.jobs.Finish")
		}
		return nil, fmt.Errorf("SyncJobUseCase - RunBatch - uc.publisher.PublishSyncRequested: %w", err)
	}

	return job, nil
}

func (uc *UseCase) GetJob(ctx context.Context, id uuid.UUID) (*entity.SyncJob, error) {
	job, err := uc.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("SyncJobUseCase - GetJob - uc.jobs.GetByID: %w", err)
	}

	return job, nil
}

// ReprocessProduct resets one entity to pending and enqueues its tenant's
// backlog.
func (uc *UseCase) ReprocessProduct(ctx context.Context, id uuid.UUID) (*entity.SyncJob, error) {
	product, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("SyncJobUseCase - ReprocessProduct - uc.products.GetByID: %w", err)
	}

	if err := uc.products.ResetOneToPending(ctx, id); err != nil {
		return nil, fmt.Errorf("SyncJobUseCase - ReprocessProduct - uc.products.ResetOneToPending: %w", err)
	}

	return uc.RunBatch(ctx, product.TenantID, dto.SyncFilters{})
}

// ReprocessFailed enqueues the backlog with the failed-status filter; the
// consumer side does the bulk reset, so a replayed event re-runs the whole
// reset-and-drain and not just the drain.
func (uc *UseCase) ReprocessFailed(ctx context.Context, tenantID uuid.UUID, brand string) (*entity.SyncJob, error) {
	return uc.RunBatch(ctx, tenantID, dto.SyncFilters{
		Brand:  brand,
		Status: string(entity.SyncFailed),
	})
}

// ProcessBacklog is the consumer-side worker loop: pending products are
// drained in bounded chunks, each chunk with a fixed-size worker pool, and
// the job counters advance as chunks finish. A single item's failure is
// recorded on that item only. A failed-status filter first resets the failed
// entities back to pending so the drain picks them up.
func (uc *UseCase) ProcessBacklog(ctx context.Context, event dto.SyncRequested) error {
	if entity.SyncStatus(event.Filters.Status) == entity.SyncFailed {
		reset, err := uc.products.ResetToPending(ctx, event.TenantID, event.Filters.Brand, true)
		if err != nil {
			uc.finish(ctx, event.JobID, entity.JobFailed)
			return fmt.Errorf("SyncJobUseCase - ProcessBacklog - uc.products.ResetToPending: %w", err)
		}

		uc.logger.Info("sync: reset %d failed products for tenant %s", reset, event.TenantID)
	}

	total, err := uc.products.CountPending(ctx, event.TenantID, event.Filters.Brand)
	if err != nil {
		uc.finish(ctx, event.JobID, entity.JobFailed)
		return fmt.Errorf("SyncJobUseCase - ProcessBacklog - uc.products.CountPending: %w", err)
	}

	if err := uc.jobs.SetTotal(ctx, event.JobID, total); err != nil {
		uc.finish(ctx, event.JobID, entity.JobFailed)
		return fmt.Errorf("SyncJobUseCase - ProcessBacklog - uc.jobs.SetTotal: %w", err)
	}

	// bounded by the total computed up front: items that stay pending
	// because their own record update failed are left for the next run
	// instead of spinning this one forever
	processed := 0
	for processed < total {
		chunk, err := uc.products.ListPending(ctx, event.TenantID, event.Filters.Brand, uc.chunkSize)
		if err != nil {
			uc.finish(ctx, event.JobID, entity.JobFailed)
			return fmt.Errorf("SyncJobUseCase - ProcessBacklog - uc.products.ListPending: %w", err)
		}
		if len(chunk) == 0 {
			break
		}

		uc.processChunk(ctx, event.TenantID, chunk)

		processed += len(chunk)
		if err := uc.jobs.IncrementCompleted(ctx, event.JobID, len(chunk)); err != nil {
			uc.logger.Error(err, "SyncJobUseCase - ProcessBacklog - uc.jobs.IncrementCompleted")
		}
	}

	uc.finish(ctx, event.JobID, entity.JobDone)

	return nil
}

func (uc *UseCase) processChunk(ctx context.Context, tenantID uuid.UUID, chunk []*entity.Product) {
	g := &errgroup.Group{}
	g.SetLimit(uc.productWorkers)

	for _, product := range chunk {
		product := product
		g.Go(func() error {
			if err := uc.internalizer.InternalizeProduct(ctx, product); err != nil {
				uc.logger.Warn("sync: product %s failed: %v", product.ID, err)
			}

			uc.processGallery(ctx, tenantID, product.ID)

			return nil
		})
	}

	_ = g.Wait()
}

func (uc *UseCase) processGallery(ctx context.Context, tenantID, productID uuid.UUID) {
	pending, err := uc.images.ListPendingByProduct(ctx, productID)
	if err != nil {
		uc.logger.Error(err, "SyncJobUseCase - processGallery - uc.images.ListPendingByProduct")
		return
	}
	if len(pending) == 0 {
		return
	}

	g := &errgroup.Group{}
	g.SetLimit(uc.imageWorkers)

	for _, img := range pending {
		img := img
		g.Go(func() error {
			if err := uc.internalizer.InternalizeImage(ctx, tenantID, img); err != nil {
				uc.logger.Warn("sync: gallery image %s failed: %v", img.ID, err)
			}
			return nil
		})
	}

	_ = g.Wait()
}

func (uc *UseCase) finish(ctx context.Context, jobID uuid.UUID, status entity.JobStatus) {
	if err := uc.jobs.Finish(ctx, jobID, status); err != nil {
		uc.logger.Error(err, "SyncJobUseCase - finish - uc.jobs.Finish")
	}
}
