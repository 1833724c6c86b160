package persistent

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/mercatto/catalog-sync/internal/entity"
	"github.com/mercatto/catalog-sync/pkg/postgres"
	"github.com/mercatto/catalog-sync/pkg/types/errs"
)

const (
	// Table
	stagingImagesTable = "staging_images"

	// Columns
	stagingIDColumn        = "id"
	stagingTenantIDColumn  = "tenant_id"
	stagingPathColumn      = "storage_path"
	stagingCreatedAtColumn = "created_at"
)

type StagingImageRepo struct {
	*postgres.Postgres
}

func NewStagingImageRepo(pg *postgres.Postgres) *StagingImageRepo {
	return &StagingImageRepo{pg}
}

func (r *StagingImageRepo) Create(ctx context.Context, img *entity.StagingImage) error {
	sql, args, err := r.Builder.
		Insert(stagingImagesTable).
		Columns(stagingIDColumn, stagingTenantIDColumn, stagingPathColumn, stagingCreatedAtColumn).
		Values(img.ID, img.TenantID, img.StoragePath, img.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("StagingImageRepo - Create - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("StagingImageRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *StagingImageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.Builder.
		Delete(stagingImagesTable).
		Where(squirrel.Eq{stagingIDColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("StagingImageRepo - Delete - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("StagingImageRepo - Delete - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("StagingImageRepo - Delete: %w", errs.ErrRecordNotFound)
	}

	return nil
}

func (r *StagingImageRepo) ListStoragePaths(ctx context.Context) ([]string, error) {
	sql, args, err := r.Builder.
		Select(stagingPathColumn).
		From(stagingImagesTable).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("StagingImageRepo - ListStoragePaths - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("StagingImageRepo - ListStoragePaths - executor.Query: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("StagingImageRepo - ListStoragePaths - rows.Scan: %w", err)
		}
		if path != "" {
			paths = append(paths, path)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("StagingImageRepo - ListStoragePaths - rows.Err: %w", err)
	}

	return paths, nil
}

// DeleteOlderThan expires staging uploads never linked to a product.
func (r *StagingImageRepo) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	sql, args, err := r.Builder.
		Delete(stagingImagesTable).
		Where(squirrel.Expr(stagingCreatedAtColumn+" < now() - make_interval(days => ?)", days)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("StagingImageRepo - DeleteOlderThan - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("StagingImageRepo - DeleteOlderThan - executor.Exec: %w", err)
	}

	return tag.RowsAffected(), nil
}
