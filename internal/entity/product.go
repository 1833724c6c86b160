package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product is a sellable item owned by exactly one tenant. Once ImagePath is
// non-nil, ImageURL resolves through managed storage; ExternalImageURL keeps
// the original source for audit.
type Product struct {
	ID            uuid.UUID `json:"id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	ReferenceCode string    `json:"reference_code"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`

	ImageURL         string   `json:"image_url"`
	ImagePath        *string  `json:"image_path,omitempty"`
	ExternalImageURL string   `json:"external_image_url"`
	GalleryURLs      []string `json:"gallery_urls"`

	SyncStatus SyncStatus `json:"sync_status"`
	SyncError  *string    `json:"sync_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductImage is one entry of a product's gallery. Shared is true while a
// cloned row still points at the source tenant's storage object; a
// copy-on-write fork flips it to false.
type ProductImage struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`

	URL          string  `json:"url"`
	OptimizedURL string  `json:"optimized_url"`
	StoragePath  *string `json:"storage_path,omitempty"`
	Position     int     `json:"position"`
	IsPrimary    bool    `json:"is_primary"`
	Shared       bool    `json:"shared"`

	SyncStatus SyncStatus `json:"sync_status"`
	SyncError  *string    `json:"sync_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// StagingImage is an upload not yet linked to a product.
type StagingImage struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}
