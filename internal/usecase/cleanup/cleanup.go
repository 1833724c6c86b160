package cleanup

import (
	"context"
	"fmt"
	"strings"

	"github.com/mercatto/catalog-sync/internal/repo"
	"github.com/mercatto/catalog-sync/pkg/logger"
	"github.com/mercatto/catalog-sync/pkg/types/errs"
)

type UseCase struct {
	products repo.ProductRepo
	images   repo.ProductImageRepo
	staging  repo.StagingImageRepo
	refs     repo.StorageRefRepo
	storage  repo.ObjectStorage

	logger logger.Interface
}

func New(
	products repo.ProductRepo,
	images repo.ProductImageRepo,
	staging repo.StagingImageRepo,
	refs repo.StorageRefRepo,
	storage repo.ObjectStorage,
	l logger.Interface,
) *UseCase {
	return &UseCase{
		products: products,
		images:   images,
		staging:  staging,
		refs:     refs,
		storage:  storage,
		logger:   l,
	}
}

// SafeDelete removes a storage object only when nothing references it any
// more. The reference count always runs first; there is no path that deletes
// without it. The check and the delete are two round trips, not one
// transaction - a reference added in between is an accepted, recoverable race.
func (uc *UseCase) SafeDelete(ctx context.Context, path string) error {
	count, err := uc.refs.CountReferences(ctx, path)
	if err != nil {
		return fmt.Errorf("CleanupUseCase - SafeDelete - uc.refs.CountReferences: %w", err)
	}

	if count > 0 {
		return fmt.Errorf("CleanupUseCase - SafeDelete - %d references to %s: %w", count, path, errs.ErrImageInUse)
	}

	err = uc.storage.DeleteBatch(ctx, []string{path})
	if err != nil {
		return fmt.Errorf("CleanupUseCase - SafeDelete - uc.storage.DeleteBatch: %w", err)
	}

	uc.logger.Info("cleanup: deleted unreferenced object %s", path)

	return nil
}

// FindOrphans recomputes the valid-path set fresh on every call - no caching,
// so objects that became referenced since the last run are never flagged.
func (uc *UseCase) FindOrphans(ctx context.Context) ([]string, error) {
	valid, err := uc.validPaths(ctx)
	if err != nil {
		return nil, err
	}

	names, err := uc.storage.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("CleanupUseCase - FindOrphans - uc.storage.List: %w", err)
	}

	var orphans []string
	for _, name := range names {
		if isDirMarker(name) {
			continue
		}
		if _, ok := valid[name]; !ok {
			orphans = append(orphans, name)
		}
	}

	return orphans, nil
}

// Cleanup lists orphans and, unless dryRun, removes exactly that list in one
// batch call. An upload landing between the valid-path scan and the delete is
// an accepted operational risk; there is no bucket-wide lock.
func (uc *UseCase) Cleanup(ctx context.Context, dryRun bool) ([]string, int, error) {
	orphans, err := uc.FindOrphans(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("CleanupUseCase - Cleanup: %w", err)
	}

	if dryRun || len(orphans) == 0 {
		return orphans, 0, nil
	}

	err = uc.storage.DeleteBatch(ctx, orphans)
	if err != nil {
		return orphans, 0, fmt.Errorf("CleanupUseCase - Cleanup - uc.storage.DeleteBatch: %w", err)
	}

	uc.logger.Info("cleanup: removed %d orphaned objects", len(orphans))

	return orphans, len(orphans), nil
}

func (uc *UseCase) validPaths(ctx context.Context) (map[string]struct{}, error) {
	productPaths, err := uc.products.ListStoragePaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("CleanupUseCase - validPaths - uc.products.ListStoragePaths: %w", err)
	}

	imagePaths, err := uc.images.ListStoragePaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("CleanupUseCase - validPaths - uc.images.ListStoragePaths: %w", err)
	}

	// staging uploads are not orphans: they hold their objects alive until
	// linked to a product or expired by their own TTL
	stagingPaths, err := uc.staging.ListStoragePaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("CleanupUseCase - validPaths - uc.staging.ListStoragePaths: %w", err)
	}

	valid := make(map[string]struct{}, len(productPaths)+len(imagePaths)+len(stagingPaths))
	for _, p := range productPaths {
		valid[uc.normalizeKey(p)] = struct{}{}
	}
	for _, p := range imagePaths {
		valid[uc.normalizeKey(p)] = struct{}{}
	}
	for _, p := range stagingPaths {
		valid[uc.normalizeKey(p)] = struct{}{}
	}

	return valid, nil
}

// normalizeKey strips a public-URL prefix down to the bare storage key, so
// gallery entries stored as full URLs compare against bucket listings.
func (uc *UseCase) normalizeKey(path string) string {
	base := uc.storage.PublicURL("")
	if base != "" && strings.HasPrefix(path, base) {
		path = path[len(base):]
	}
	return strings.TrimLeft(path, "/")
}

func isDirMarker(name string) bool {
	return strings.HasSuffix(name, "/") || strings.HasSuffix(name, "/.emptyFolderPlaceholder")
}
