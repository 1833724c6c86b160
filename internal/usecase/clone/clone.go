package clone

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mercatto/catalog-sync/internal/entity"
	"github.com/mercatto/catalog-sync/internal/repo"
	"github.com/mercatto/catalog-sync/pkg/logger"
	"github.com/mercatto/catalog-sync/pkg/types/errs"
)

type UseCase struct {
	products   repo.ProductRepo
	images     repo.ProductImageRepo
	records    repo.CloneRecordRepo
	transactor repo.Transactor

	logger logger.Interface
}

func New(
	products repo.ProductRepo,
	images repo.ProductImageRepo,
	records repo.CloneRecordRepo,
	transactor repo.Transactor,
	l logger.Interface,
) *UseCase {
	return &UseCase{
		products:   products,
		images:     images,
		records:    records,
		transactor: transactor,
		logger:     l,
	}
}

// Clone duplicates a brand's products from one tenant to another. Idempotence
// comes from the (tenant_id, reference_code) upsert, not from a pre-check: a
// re-run inserts nothing and the target row count stays put. Gallery rows are
// replicated pointing at the source tenant's storage paths - images stay
// shared until an explicit copy-on-write fork.
func (uc *UseCase) Clone(ctx context.Context, sourceTenantID, targetTenantID uuid.UUID, brand string) (int, error) {
	sources, err := uc.products.ListByBrand(ctx, sourceTenantID, brand)
	if err != nil {
		return 0, fmt.Errorf("CloneUseCase - Clone - uc.products.ListByBrand: %w", err)
	}
	if len(sources) == 0 {
		return 0, nil
	}

	clones := make([]*entity.Product, 0, len(sources))
	codes := make([]string, 0, len(sources))
	for _, s := range sources {
		codes = append(codes, s.ReferenceCode)
		clones = append(clones, &entity.Product{
			TenantID:         targetTenantID,
			ReferenceCode:    s.ReferenceCode,
			Name:             s.Name,
			Brand:            s.Brand,
			ImageURL:         s.ImageURL,
			ImagePath:        s.ImagePath,
			ExternalImageURL: s.ExternalImageURL,
			GalleryURLs:      s.GalleryURLs,
			SyncStatus:       s.SyncStatus,
		})
	}

	cloned := 0

	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.products.UpsertClones(ctx, clones); err != nil {
			return fmt.Errorf("uc.products.UpsertClones: %w", err)
		}

		// the upsert swallows generated ids; read the target rows back
		targets, err := uc.products.GetByReferenceCodes(ctx, targetTenantID, codes)
		if err != nil {
			return fmt.Errorf("uc.products.GetByReferenceCodes: %w", err)
		}

		targetByCode := make(map[string]*entity.Product, len(targets))
		for _, t := range targets {
			targetByCode[t.ReferenceCode] = t
		}

		var records []*entity.CatalogCloneRecord
		for _, s := range sources {
			target, ok := targetByCode[s.ReferenceCode]
			if !ok {
				continue
			}

			if err := uc.replicateGallery(ctx, s, target); err != nil {
				return err
			}

			records = append(records, &entity.CatalogCloneRecord{
				SourceTenantID:  sourceTenantID,
				TargetTenantID:  targetTenantID,
				SourceProductID: s.ID,
				TargetProductID: target.ID,
				Brand:           brand,
			})
			cloned++
		}

		if err := uc.records.InsertBatch(ctx, records); err != nil {
			return fmt.Errorf("uc.records.InsertBatch: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("CloneUseCase - Clone - uc.transactor.WithinTransaction: %w", err)
	}

	uc.logger.Info("clone: %d products of brand %q from %s to %s", cloned, brand, sourceTenantID, targetTenantID)

	return cloned, nil
}

// replicateGallery copies the source gallery rows under the target product,
// skipping targets that already have one (a re-run must not duplicate rows).
func (uc *UseCase) replicateGallery(ctx context.Context, source, target *entity.Product) error {
	existing, err := uc.images.ListByProduct(ctx, target.ID)
	if err != nil {
		return fmt.Errorf("uc.images.ListByProduct(target): %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	sourceImages, err := uc.images.ListByProduct(ctx, source.ID)
	if err != nil {
		return fmt.Errorf("uc.images.ListByProduct(source): %w", err)
	}
	if len(sourceImages) == 0 {
		return nil
	}

	replicas := make([]*entity.ProductImage, 0, len(sourceImages))
	for _, img := range sourceImages {
		replicas = append(replicas, &entity.ProductImage{
			ProductID:    target.ID,
			URL:          img.URL,
			OptimizedURL: img.OptimizedURL,
			StoragePath:  img.StoragePath,
			Position:     img.Position,
			IsPrimary:    img.IsPrimary,
			Shared:       true,
			SyncStatus:   img.SyncStatus,
		})
	}

	if err := uc.images.InsertBatch(ctx, replicas); err != nil {
		return fmt.Errorf("uc.images.InsertBatch: %w", err)
	}

	return nil
}

// Undo removes exactly the target rows recorded by a prior clone of the same
// pair. Products the target tenant created independently have no mapping row
// and are never touched.
func (uc *UseCase) Undo(ctx context.Context, sourceTenantID, targetTenantID uuid.UUID, brand string) (int, error) {
	records, err := uc.records.ListByPair(ctx, sourceTenantID, targetTenantID, brand)
	if err != nil {
		return 0, fmt.Errorf("CloneUseCase - Undo - uc.records.ListByPair: %w", err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("CloneUseCase - Undo: %w", errs.ErrCloneLogNotFound)
	}

	productIDs := make([]uuid.UUID, 0, len(records))
	recordIDs := make([]uuid.UUID, 0, len(records))
	for _, rec := range records {
		productIDs = append(productIDs, rec.TargetProductID)
		recordIDs = append(recordIDs, rec.ID)
	}

	var removed int64

	err = uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		// gallery rows go with the products via FK cascade
		removed, err = uc.products.DeleteByIDs(ctx, targetTenantID, productIDs)
		if err != nil {
			return fmt.Errorf("uc.products.DeleteByIDs: %w", err)
		}

		if err := uc.records.DeleteByIDs(ctx, recordIDs); err != nil {
			return fmt.Errorf("uc.records.DeleteByIDs: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("CloneUseCase - Undo - uc.transactor.WithinTransaction: %w", err)
	}

	uc.logger.Info("undo clone: removed %d products of brand %q from %s", removed, brand, targetTenantID)

	return int(removed), nil
}
