package persistent

import (
	"context"
	"fmt"

	"github.com/mercatto/catalog-sync/pkg/postgres"
)

type StorageRefRepo struct {
	*postgres.Postgres
}

func NewStorageRefRepo(pg *postgres.Postgres) *StorageRefRepo {
	return &StorageRefRepo{pg}
}

// CountReferences is the one server-side aggregate the safe-delete path relies
// on: a single round trip summing references across every table that can point
// at a storage object.
func (r *StorageRefRepo) CountReferences(ctx context.Context, storagePath string) (int, error) {
	const sql = `
SELECT (SELECT COUNT(*) FROM products WHERE image_path = $1)
     + (SELECT COUNT(*) FROM product_images WHERE storage_path = $1)
     + (SELECT COUNT(*) FROM staging_images WHERE storage_path = $1)`

	executor := r.GetExecutor(ctx)

	var count int
	err := executor.QueryRow(ctx, sql, storagePath).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("StorageRefRepo - CountReferences - executor.QueryRow: %w", err)
	}

	return count, nil
}
