package persistent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mercatto/catalog-sync/internal/entity"
	"github.com/mercatto/catalog-sync/pkg/postgres"
	"github.com/mercatto/catalog-sync/pkg/types/errs"
)

const (
	// Table
	productImagesTable = "product_images"

	// Columns
	imageIDColumn         = "id"
	imageProductIDColumn  = "product_id"
	urlColumn             = "url"
	optimizedURLColumn    = "optimized_url"
	storagePathColumn     = "storage_path"
	positionColumn        = "position"
	isPrimaryColumn       = "is_primary"
	sharedColumn          = "shared"
	imageSyncStatusColumn = "sync_status"
	imageSyncErrorColumn  = "sync_error"
	imageCreatedAtColumn  = "created_at"
)

var productImageColumns = []string{
	imageIDColumn,
	imageProductIDColumn,
	urlColumn,
	optimizedURLColumn,
	storagePathColumn,
	positionColumn,
	isPrimaryColumn,
	sharedColumn,
	imageSyncStatusColumn,
	imageSyncErrorColumn,
	imageCreatedAtColumn,
}

type ProductImageRepo struct {
	*postgres.Postgres
}

func NewProductImageRepo(pg *postgres.Postgres) *ProductImageRepo {
	return &ProductImageRepo{pg}
}

func scanProductImage(row pgx.Row) (*entity.ProductImage, error) {
	var img entity.ProductImage
	err := row.Scan(
		&img.ID,
		&img.ProductID,
		&img.URL,
		&img.OptimizedURL,
		&img.StoragePath,
		&img.Position,
		&img.IsPrimary,
		&img.Shared,
		&img.SyncStatus,
		&img.SyncError,
		&img.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &img, nil
}

func (r *ProductImageRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ProductImage, error) {
	sql, args, err := r.Builder.
		Select(productImageColumns...).
		From(productImagesTable).
		Where(squirrel.Eq{imageIDColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ProductImageRepo - GetByID - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	img, err := scanProductImage(executor.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ProductImageRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("ProductImageRepo - GetByID - executor.QueryRow: %w", err)
	}

	return img, nil
}

func (r *ProductImageRepo) listWhere(ctx context.Context, where squirrel.Sqlizer) ([]*entity.ProductImage, error) {
	sql, args, err := r.Builder.
		Select(productImageColumns...).
		From(productImagesTable).
		Where(where).
		OrderBy(positionColumn + " ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ProductImageRepo - listWhere - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("ProductImageRepo - listWhere - executor.Query: %w", err)
	}
	defer rows.Close()

	var images []*entity.ProductImage
	for rows.Next() {
		img, err := scanProductImage(rows)
		if err != nil {
			return nil, fmt.Errorf("ProductImageRepo - listWhere - rows.Scan: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ProductImageRepo - listWhere - rows.Err: %w", err)
	}

	return images, nil
}

func (r *ProductImageRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*entity.ProductImage, error) {
	return r.listWhere(ctx, squirrel.Eq{imageProductIDColumn: productID})
}

func (r *ProductImageRepo) ListPendingByProduct(ctx context.Context, productID uuid.UUID) ([]*entity.ProductImage, error) {
	return r.listWhere(ctx, squirrel.And{
		squirrel.Eq{imageProductIDColumn: productID},
		squirrel.Eq{imageSyncStatusColumn: entity.SyncPending},
	})
}

func (r *ProductImageRepo) InsertBatch(ctx context.Context, images []*entity.ProductImage) error {
	if len(images) == 0 {
		return nil
	}

	q := r.Builder.
		Insert(productImagesTable).
		Columns(
			imageProductIDColumn,
			urlColumn,
			optimizedURLColumn,
			storagePathColumn,
			positionColumn,
			isPrimaryColumn,
			sharedColumn,
			imageSyncStatusColumn,
		)

	for _, img := range images {
		q = q.Values(
			img.ProductID,
			img.URL,
			img.OptimizedURL,
			img.StoragePath,
			img.Position,
			img.IsPrimary,
			img.Shared,
			img.SyncStatus,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("ProductImageRepo - InsertBatch - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ProductImageRepo - InsertBatch - executor.Exec: %w", err)
	}

	return nil
}

func (r *ProductImageRepo) SetInternalized(ctx context.Context, id uuid.UUID, storagePath, optimizedURL string) error {
	return r.update(ctx, "SetInternalized", id, map[string]interface{}{
		storagePathColumn:     storagePath,
		optimizedURLColumn:    optimizedURL,
		imageSyncStatusColumn: entity.SyncSynced,
		imageSyncErrorColumn:  nil,
	})
}

func (r *ProductImageRepo) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	return r.update(ctx, "MarkFailed", id, map[string]interface{}{
		imageSyncStatusColumn: entity.SyncFailed,
		imageSyncErrorColumn:  message,
	})
}

func (r *ProductImageRepo) MarkSynced(ctx context.Context, id uuid.UUID, note string) error {
	values := map[string]interface{}{
		imageSyncStatusColumn: entity.SyncSynced,
		imageSyncErrorColumn:  nil,
	}
	if note != "" {
		values[imageSyncErrorColumn] = note
	}
	return r.update(ctx, "MarkSynced", id, values)
}

// SetForked points the row at its own copy of the object; shared drops to
// false so a later safe-delete on this row can never touch the source
// tenant's object.
func (r *ProductImageRepo) SetForked(ctx context.Context, id uuid.UUID, storagePath, optimizedURL string) error {
	return r.update(ctx, "SetForked", id, map[string]interface{}{
		storagePathColumn:  storagePath,
		optimizedURLColumn: optimizedURL,
		sharedColumn:       false,
	})
}

func (r *ProductImageRepo) ListStoragePaths(ctx context.Context) ([]string, error) {
	sql, args, err := r.Builder.
		Select(storagePathColumn).
		From(productImagesTable).
		Where(squirrel.NotEq{storagePathColumn: nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ProductImageRepo - ListStoragePaths - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("ProductImageRepo - ListStoragePaths - executor.Query: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("ProductImageRepo - ListStoragePaths - rows.Scan: %w", err)
		}
		if path != "" {
			paths = append(paths, path)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ProductImageRepo - ListStoragePaths - rows.Err: %w", err)
	}

	return paths, nil
}

func (r *ProductImageRepo) update(ctx context.Context, method string, id uuid.UUID, values map[string]interface{}) error {
	q := r.Builder.Update(productImagesTable).Where(squirrel.Eq{imageIDColumn: id})
	for col, val := range values {
		q = q.Set(col, val)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("ProductImageRepo - %s - r.Builder.ToSql: %w", method, err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ProductImageRepo - %s - executor.Exec: %w", method, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ProductImageRepo - %s: %w", method, errs.ErrRecordNotFound)
	}

	return nil
}
