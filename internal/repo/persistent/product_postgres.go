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
	productsTable = "products"

	// Columns
	productIDColumn         = "id"
	tenantIDColumn          = "tenant_id"
	referenceCodeColumn     = "reference_code"
	nameColumn              = "name"
	brandColumn             = "brand"
	imageURLColumn          = "image_url"
	imagePathColumn         = "image_path"
	externalImageURLColumn  = "external_image_url"
	galleryURLsColumn       = "gallery_urls"
	productSyncStatusColumn = "sync_status"
	productSyncErrorColumn  = "sync_error"
	productCreatedAtColumn  = "created_at"
	productUpdatedAtColumn  = "updated_at"
)

var productColumns = []string{
	productIDColumn,
	tenantIDColumn,
	referenceCodeColumn,
	nameColumn,
	brandColumn,
	imageURLColumn,
	imagePathColumn,
	externalImageURLColumn,
	galleryURLsColumn,
	productSyncStatusColumn,
	productSyncErrorColumn,
	productCreatedAtColumn,
	productUpdatedAtColumn,
}

type ProductRepo struct {
	*postgres.Postgres
}

func NewProductRepo(pg *postgres.Postgres) *ProductRepo {
	return &ProductRepo{pg}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.ReferenceCode,
		&p.Name,
		&p.Brand,
		&p.ImageURL,
		&p.ImagePath,
		&p.ExternalImageURL,
		&p.GalleryURLs,
		&p.SyncStatus,
		&p.SyncError,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	sql, args, err := r.Builder.
		Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{productIDColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ProductRepo - GetByID - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	p, err := scanProduct(executor.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ProductRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("ProductRepo - GetByID - executor.QueryRow: %w", err)
	}

	return p, nil
}

func (r *ProductRepo) listWhere(ctx context.Context, where squirrel.Sqlizer, limit int) ([]*entity.Product, error) {
	q := r.Builder.
		Select(productColumns...).
		From(productsTable).
		Where(where).
		OrderBy(productCreatedAtColumn + " ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ProductRepo - listWhere - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("ProductRepo - listWhere - executor.Query: %w", err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("ProductRepo - listWhere - rows.Scan: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ProductRepo - listWhere - rows.Err: %w", err)
	}

	return products, nil
}

func (r *ProductRepo) ListByBrand(ctx context.Context, tenantID uuid.UUID, brand string) ([]*entity.Product, error) {
	return r.listWhere(ctx, squirrel.And{
		squirrel.Eq{tenantIDColumn: tenantID},
		squirrel.Eq{brandColumn: brand},
	}, 0)
}

func pendingFilter(tenantID uuid.UUID, brand string) squirrel.Sqlizer {
	filter := squirrel.And{
		squirrel.Eq{tenantIDColumn: tenantID},
		squirrel.Eq{productSyncStatusColumn: entity.SyncPending},
	}
	if brand != "" {
		filter = append(filter, squirrel.Eq{brandColumn: brand})
	}
	return filter
}

func (r *ProductRepo) ListPending(ctx context.Context, tenantID uuid.UUID, brand string, limit int) ([]*entity.Product, error) {
	return r.listWhere(ctx, pendingFilter(tenantID, brand), limit)
}

func (r *ProductRepo) CountPending(ctx context.Context, tenantID uuid.UUID, brand string) (int, error) {
	sql, args, err := r.Builder.
		Select("COUNT(*)").
		From(productsTable).
		Where(pendingFilter(tenantID, brand)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ProductRepo - CountPending - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var count int
	err = executor.QueryRow(ctx, sql, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ProductRepo - CountPending - executor.QueryRow: %w", err)
	}

	return count, nil
}

// SetInternalized records a completed internalization: storage path, managed
// public URL and synced status land in one update.
func (r *ProductRepo) SetInternalized(ctx context.Context, id uuid.UUID, storagePath, publicURL string) error {
	return r.update(ctx, "SetInternalized", squirrel.Eq{productIDColumn: id}, map[string]interface{}{
		imagePathColumn:         storagePath,
		imageURLColumn:          publicURL,
		productSyncStatusColumn: entity.SyncSynced,
		productSyncErrorColumn:  nil,
		productUpdatedAtColumn:  squirrel.Expr("now()"),
	}, true)
}

func (r *ProductRepo) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	return r.update(ctx, "MarkFailed", squirrel.Eq{productIDColumn: id}, map[string]interface{}{
		productSyncStatusColumn: entity.SyncFailed,
		productSyncErrorColumn:  message,
		productUpdatedAtColumn:  squirrel.Expr("now()"),
	}, true)
}

// MarkSynced closes an entity that needed no internalization (empty or
// already-managed source); note lands in sync_error as an explanation.
func (r *ProductRepo) MarkSynced(ctx context.Context, id uuid.UUID, note string) error {
	values := map[string]interface{}{
		productSyncStatusColumn: entity.SyncSynced,
		productSyncErrorColumn:  nil,
		productUpdatedAtColumn:  squirrel.Expr("now()"),
	}
	if note != "" {
		values[productSyncErrorColumn] = note
	}
	return r.update(ctx, "MarkSynced", squirrel.Eq{productIDColumn: id}, values, true)
}

func (r *ProductRepo) ResetOneToPending(ctx context.Context, id uuid.UUID) error {
	return r.update(ctx, "ResetOneToPending", squirrel.Eq{productIDColumn: id}, map[string]interface{}{
		productSyncStatusColumn: entity.SyncPending,
		productSyncErrorColumn:  nil,
		productUpdatedAtColumn:  squirrel.Expr("now()"),
	}, true)
}

func (r *ProductRepo) ResetToPending(ctx context.Context, tenantID uuid.UUID, brand string, onlyFailed bool) (int64, error) {
	filter := squirrel.And{squirrel.Eq{tenantIDColumn: tenantID}}
	if brand != "" {
		filter = append(filter, squirrel.Eq{brandColumn: brand})
	}
	if onlyFailed {
		filter = append(filter, squirrel.Eq{productSyncStatusColumn: entity.SyncFailed})
	}

	sql, args, err := r.Builder.
		Update(productsTable).
		Set(productSyncStatusColumn, entity.SyncPending).
		Set(productSyncErrorColumn, nil).
		Set(productUpdatedAtColumn, squirrel.Expr("now()")).
		Where(filter).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ProductRepo - ResetToPending - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("ProductRepo - ResetToPending - executor.Exec: %w", err)
	}

	return tag.RowsAffected(), nil
}

// UpsertClones inserts products under the target tenant keyed on
// (tenant_id, reference_code); already-cloned rows are skipped, which is what
// makes a re-clone a no-op.
func (r *ProductRepo) UpsertClones(ctx context.Context, products []*entity.Product) error {
	if len(products) == 0 {
		return nil
	}

	q := r.Builder.
		Insert(productsTable).
		Columns(
			tenantIDColumn,
			referenceCodeColumn,
			nameColumn,
			brandColumn,
			imageURLColumn,
			imagePathColumn,
			externalImageURLColumn,
			galleryURLsColumn,
			productSyncStatusColumn,
		)

	for _, p := range products {
		q = q.Values(
			p.TenantID,
			p.ReferenceCode,
			p.Name,
			p.Brand,
			p.ImageURL,
			p.ImagePath,
			p.ExternalImageURL,
			p.GalleryURLs,
			p.SyncStatus,
		)
	}

	sql, args, err := q.
		Suffix(fmt.Sprintf("ON CONFLICT (%s, %s) DO NOTHING", tenantIDColumn, referenceCodeColumn)).
		ToSql()
	if err != nil {
		return fmt.Errorf("ProductRepo - UpsertClones - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ProductRepo - UpsertClones - executor.Exec: %w", err)
	}

	return nil
}

func (r *ProductRepo) GetByReferenceCodes(ctx context.Context, tenantID uuid.UUID, codes []string) ([]*entity.Product, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	return r.listWhere(ctx, squirrel.And{
		squirrel.Eq{tenantIDColumn: tenantID},
		squirrel.Eq{referenceCodeColumn: codes},
	}, 0)
}

func (r *ProductRepo) DeleteByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	sql, args, err := r.Builder.
		Delete(productsTable).
		Where(squirrel.And{
			squirrel.Eq{tenantIDColumn: tenantID},
			squirrel.Eq{productIDColumn: ids},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ProductRepo - DeleteByIDs - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("ProductRepo - DeleteByIDs - executor.Exec: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ListStoragePaths returns every storage-path-bearing value on products:
// the internalized primary path plus each gallery entry. Gallery entries may
// still carry a public-URL prefix; normalization is up to the caller.
func (r *ProductRepo) ListStoragePaths(ctx context.Context) ([]string, error) {
	sql, args, err := r.Builder.
		Select(imagePathColumn, galleryURLsColumn).
		From(productsTable).
		Where(squirrel.Or{
			squirrel.NotEq{imagePathColumn: nil},
			squirrel.Expr("cardinality(" + galleryURLsColumn + ") > 0"),
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ProductRepo - ListStoragePaths - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("ProductRepo - ListStoragePaths - executor.Query: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var imagePath *string
		var gallery []string
		if err := rows.Scan(&imagePath, &gallery); err != nil {
			return nil, fmt.Errorf("ProductRepo - ListStoragePaths - rows.Scan: %w", err)
		}
		if imagePath != nil && *imagePath != "" {
			paths = append(paths, *imagePath)
		}
		paths = append(paths, gallery...)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ProductRepo - ListStoragePaths - rows.Err: %w", err)
	}

	return paths, nil
}

func (r *ProductRepo) update(ctx context.Context, method string, where squirrel.Sqlizer, values map[string]interface{}, requireRow bool) error {
	q := r.Builder.Update(productsTable).Where(where)
	for col, val := range values {
		q = q.Set(col, val)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("ProductRepo - %s - r.Builder.ToSql: %w", method, err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ProductRepo - %s - executor.Exec: %w", method, err)
	}

	if requireRow && tag.RowsAffected() == 0 {
		return fmt.Errorf("ProductRepo - %s: %w", method, errs.ErrRecordNotFound)
	}

	return nil
}
