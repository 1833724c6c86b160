package persistent

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/mercatto/catalog-sync/internal/entity"
	"github.com/mercatto/catalog-sync/pkg/postgres"
)

const (
	// Table
	cloneRecordsTable = "catalog_clone_records"

	// Columns
	cloneIDColumn         = "id"
	sourceTenantIDColumn  = "source_tenant_id"
	targetTenantIDColumn  = "target_tenant_id"
	sourceProductIDColumn = "source_product_id"
	targetProductIDColumn = "target_product_id"
	cloneBrandColumn      = "brand"
	cloneCreatedAtColumn  = "created_at"
)

type CloneRecordRepo struct {
	*postgres.Postgres
}

func NewCloneRecordRepo(pg *postgres.Postgres) *CloneRecordRepo {
	return &CloneRecordRepo{pg}
}

// InsertBatch writes the audit mapping; a record already present for the same
// (source product, target tenant) is left untouched so re-clones stay silent.
func (r *CloneRecordRepo) InsertBatch(ctx context.Context, records []*entity.CatalogCloneRecord) error {
	if len(records) == 0 {
		return nil
	}

	q := r.Builder.
		Insert(cloneRecordsTable).
		Columns(
			sourceTenantIDColumn,
			targetTenantIDColumn,
			sourceProductIDColumn,
			targetProductIDColumn,
			cloneBrandColumn,
		)

	for _, rec := range records {
		q = q.Values(
			rec.SourceTenantID,
			rec.TargetTenantID,
			rec.SourceProductID,
			rec.TargetProductID,
			rec.Brand,
		)
	}

	sql, args, err := q.
		Suffix(fmt.Sprintf("ON CONFLICT (%s, %s) DO NOTHING", sourceProductIDColumn, targetTenantIDColumn)).
		ToSql()
	if err != nil {
		return fmt.Errorf("CloneRecordRepo - InsertBatch - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("CloneRecordRepo - InsertBatch - executor.Exec: %w", err)
	}

	return nil
}

func (r *CloneRecordRepo) ListByPair(ctx context.Context, sourceTenantID, targetTenantID uuid.UUID, brand string) ([]*entity.CatalogCloneRecord, error) {
	filter := squirrel.And{
		squirrel.Eq{sourceTenantIDColumn: sourceTenantID},
		squirrel.Eq{targetTenantIDColumn: targetTenantID},
	}
	if brand != "" {
		filter = append(filter, squirrel.Eq{cloneBrandColumn: brand})
	}

	sql, args, err := r.Builder.
		Select(
			cloneIDColumn,
			sourceTenantIDColumn,
			targetTenantIDColumn,
			sourceProductIDColumn,
			targetProductIDColumn,
			cloneBrandColumn,
			cloneCreatedAtColumn,
		).
		From(cloneRecordsTable).
		Where(filter).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("CloneRecordRepo - ListByPair - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("CloneRecordRepo - ListByPair - executor.Query: %w", err)
	}
	defer rows.Close()

	var records []*entity.CatalogCloneRecord
	for rows.Next() {
		var rec entity.CatalogCloneRecord
		err = rows.Scan(
			&rec.ID,
			&rec.SourceTenantID,
			&rec.TargetTenantID,
			&rec.SourceProductID,
			&rec.TargetProductID,
			&rec.Brand,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("CloneRecordRepo - ListByPair - rows.Scan: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("CloneRecordRepo - ListByPair - rows.Err: %w", err)
	}

	return records, nil
}

func (r *CloneRecordRepo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	sql, args, err := r.Builder.
		Delete(cloneRecordsTable).
		Where(squirrel.Eq{cloneIDColumn: ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("CloneRecordRepo - DeleteByIDs - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("CloneRecordRepo - DeleteByIDs - executor.Exec: %w", err)
	}

	return nil
}
