package internalize

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mercatto/catalog-sync/internal/entity"
	"github.com/mercatto/catalog-sync/internal/infrastructure"
	"github.com/mercatto/catalog-sync/internal/repo"
	"github.com/mercatto/catalog-sync/internal/usecase/ingest"
	"github.com/mercatto/catalog-sync/pkg/logger"
	"github.com/mercatto/catalog-sync/pkg/types/errs"
)

type UseCase struct {
	products   repo.ProductRepo
	images     repo.ProductImageRepo
	storage    repo.ObjectStorage
	fetcher    infrastructure.ImageFetcher
	transcoder infrastructure.ImageTranscoder

	managedHost string

	logger logger.Interface
}

func New(
	products repo.ProductRepo,
	images repo.ProductImageRepo,
	storage repo.ObjectStorage,
	fetcher infrastructure.ImageFetcher,
	transcoder infrastructure.ImageTranscoder,
	managedHost string,
	l logger.Interface,
) *UseCase {
	return &UseCase{
		products:    products,
		images:      images,
		storage:     storage,
		fetcher:     fetcher,
		transcoder:  transcoder,
		managedHost: managedHost,
		logger:      l,
	}
}

// InternalizeProduct runs one attempt for the product's primary image. The
// entity always leaves pending: classification short-circuits to synced or
// failed, and an attempted download ends in exactly one record update.
func (uc *UseCase) InternalizeProduct(ctx context.Context, product *entity.Product) error {
	c := ingest.Classify(product.ExternalImageURL, uc.managedHost)

	switch c.Status {
	case entity.SyncSynced:
		if err := uc.products.MarkSynced(ctx, product.ID, c.Note); err != nil {
			return fmt.Errorf("InternalizeUseCase - InternalizeProduct - uc.products.MarkSynced: %w", err)
		}
		return nil
	case entity.SyncFailed:
		if err := uc.products.MarkFailed(ctx, product.ID, c.Note); err != nil {
			return fmt.Errorf("InternalizeUseCase - InternalizeProduct - uc.products.MarkFailed: %w", err)
		}
		return nil
	}

	path := ProductPath(product.TenantID, product.ID)

	publicURL, err := uc.pull(ctx, c.NormalizedURL, path)
	if err != nil {
		uc.fail(ctx, "product", product.ID, err, uc.products.MarkFailed)
		return fmt.Errorf("InternalizeUseCase - InternalizeProduct: %w", err)
	}

	err = uc.products.SetInternalized(ctx, product.ID, path, publicURL)
	if err != nil {
		return fmt.Errorf("InternalizeUseCase - InternalizeProduct - uc.products.SetInternalized: %w", err)
	}

	return nil
}

// InternalizeImage runs one attempt for a single gallery image.
func (uc *UseCase) InternalizeImage(ctx context.Context, tenantID uuid.UUID, img *entity.ProductImage) error {
	c := ingest.Classify(img.URL, uc.managedHost)

	switch c.Status {
	case entity.SyncSynced:
		if err := uc.images.MarkSynced(ctx, img.ID, c.Note); err != nil {
			return fmt.Errorf("InternalizeUseCase - InternalizeImage - uc.images.MarkSynced: %w", err)
		}
		return nil
	case entity.SyncFailed:
		if err := uc.images.MarkFailed(ctx, img.ID, c.Note); err != nil {
			return fmt.Errorf("InternalizeUseCase - InternalizeImage - uc.images.MarkFailed: %w", err)
		}
		return nil
	}

	path := GalleryPath(tenantID, img.ID)

	publicURL, err := uc.pull(ctx, c.NormalizedURL, path)
	if err != nil {
		uc.fail(ctx, "image", img.ID, err, uc.images.MarkFailed)
		return fmt.Errorf("InternalizeUseCase - InternalizeImage: %w", err)
	}

	err = uc.images.SetInternalized(ctx, img.ID, path, publicURL)
	if err != nil {
		return fmt.Errorf("InternalizeUseCase - InternalizeImage - uc.images.SetInternalized: %w", err)
	}

	return nil
}

// pull is the shared fetch -> transcode -> upload sequence. An object already
// present at the destination means an earlier attempt got that far; the
// retry proceeds to the record update.
func (uc *UseCase) pull(ctx context.Context, sourceURL, destPath string) (string, error) {
	data, err := uc.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", sourceURL, err)
	}

	encoded, contentType, err := uc.transcoder.Normalize(ctx, data)
	if err != nil {
		return "", fmt.Errorf("transcode: %w", err)
	}

	err = uc.storage.Upload(ctx, destPath, encoded, contentType, false)
	switch {
	case errors.Is(err, errs.ErrObjectExists):
		uc.logger.Info("internalize: destination %s already present, treating as uploaded", destPath)
	case err != nil:
		return "", fmt.Errorf("upload %s: %w", destPath, err)
	default:
		uc.logger.Info("internalize: uploaded %s (%d bytes)", destPath, len(encoded))
	}

	return uc.storage.PublicURL(destPath), nil
}

func (uc *UseCase) fail(ctx context.Context, kind string, id uuid.UUID, cause error, mark func(context.Context, uuid.UUID, string) error) {
	if err := mark(ctx, id, cause.Error()); err != nil {
		uc.logger.Error(err, "InternalizeUseCase - fail - mark %s %s", kind, id)
	}
}

// ProductPath is the deterministic destination for a product's primary image.
func ProductPath(tenantID, productID uuid.UUID) string {
	return fmt.Sprintf("%s/products/%s.jpg", tenantID, productID)
}

// GalleryPath is the deterministic destination for one gallery image.
func GalleryPath(tenantID, imageID uuid.UUID) string {
	return fmt.Sprintf("%s/products/gallery/%s.jpg", tenantID, imageID)
}
