package entity

import (
	"time"

	"github.com/google/uuid"
)

// CatalogCloneRecord maps a source product to its target-tenant counterpart.
// Written once by the clone engine, read for idempotent re-clone detection,
// deleted only by undo-clone.
type CatalogCloneRecord struct {
	ID              uuid.UUID `json:"id"`
	SourceTenantID  uuid.UUID `json:"source_tenant_id"`
	TargetTenantID  uuid.UUID `json:"target_tenant_id"`
	SourceProductID uuid.UUID `json:"source_product_id"`
	TargetProductID uuid.UUID `json:"target_product_id"`
	Brand           string    `json:"brand"`
	CreatedAt       time.Time `json:"created_at"`
}
