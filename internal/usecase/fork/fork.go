package fork

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mercatto/catalog-sync/internal/dto"
	"github.com/mercatto/catalog-sync/internal/repo"
	"github.com/mercatto/catalog-sync/pkg/logger"
	"github.com/mercatto/catalog-sync/pkg/types/errs"
)

const _defaultAssetKind = "products"

type UseCase struct {
	images  repo.ProductImageRepo
	storage repo.ObjectStorage

	logger logger.Interface
}

func New(images repo.ProductImageRepo, storage repo.ObjectStorage, l logger.Interface) *UseCase {
	return &UseCase{
		images:  images,
		storage: storage,
		logger:  l,
	}
}

// ForkImage duplicates the source object into the target tenant's namespace
// and repoints the target gallery row at the copy. The source object is never
// modified or deleted. Two concurrent forks of the same pair resolve through
// "destination already exists" counting as success.
func (uc *UseCase) ForkImage(ctx context.Context, event dto.ForkRequested) (string, string, error) {
	kind := event.AssetKind
	if kind == "" {
		kind = _defaultAssetKind
	}
	destPath := fmt.Sprintf("%s/%s/%s%s", event.TargetTenantID, kind, event.EntityID, extOf(event.SourcePath))

	publicURL, err := uc.copyObject(ctx, event.SourcePath, destPath)
	if err != nil {
		return "", "", fmt.Errorf("ForkUseCase - ForkImage: %w", err)
	}

	err = uc.images.SetForked(ctx, event.EntityID, destPath, publicURL)
	if err != nil {
		return "", "", fmt.Errorf("ForkUseCase - ForkImage - uc.images.SetForked: %w", err)
	}

	return destPath, publicURL, nil
}

// CopyBrandAsset duplicates a brand-level asset (logo, banner) into the
// target tenant's namespace. Brand records live outside this service, so only
// the object is copied; the caller persists the returned URL.
func (uc *UseCase) CopyBrandAsset(ctx context.Context, event dto.BrandCopyRequested) (string, string, error) {
	kind := event.AssetKind
	if kind == "" {
		kind = "logo"
	}
	destPath := fmt.Sprintf("%s/brands/%s/%s%s", event.TargetTenantID, kind, event.BrandID, extOf(event.SourcePath))

	publicURL, err := uc.copyObject(ctx, event.SourcePath, destPath)
	if err != nil {
		return "", "", fmt.Errorf("ForkUseCase - CopyBrandAsset: %w", err)
	}

	return destPath, publicURL, nil
}

func (uc *UseCase) copyObject(ctx context.Context, sourcePath, destPath string) (string, error) {
	data, err := uc.storage.Download(ctx, sourcePath)
	if err != nil {
		return "", fmt.Errorf("uc.storage.Download: %w", err)
	}

	err = uc.storage.Upload(ctx, destPath, data, contentTypeOf(destPath), false)
	switch {
	case errors.Is(err, errs.ErrObjectExists):
		// another fork of the same pair won the upload; same outcome
		uc.logger.Info("fork: destination %s already present", destPath)
	case err != nil:
		return "", fmt.Errorf("uc.storage.Upload: %w", err)
	default:
		uc.logger.Info("fork: copied %s -> %s", sourcePath, destPath)
	}

	return uc.storage.PublicURL(destPath), nil
}

func extOf(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		ext = ".jpg"
	}
	return ext
}

func contentTypeOf(path string) string {
	switch extOf(path) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
