package dto

import "github.com/google/uuid"

// EventType travels in the message header; the payload is the matching struct.
type EventType string

const (
	EventSyncRequested      EventType = "sync.requested"
	EventForkRequested      EventType = "fork.requested"
	EventBrandCopyRequested EventType = "brand-copy.requested"
)

type SyncFilters struct {
	Brand  string `json:"brand,omitempty"`
	Status string `json:"status,omitempty"`
}

// SyncRequested asks the background worker to drain one tenant's pending
// backlog, reporting progress on the given job.
type SyncRequested struct {
	JobID    uuid.UUID   `json:"job_id"`
	TenantID uuid.UUID   `json:"tenant_id"`
	Filters  SyncFilters `json:"filters"`
}

// ForkRequested asks for a copy-on-write fork of one gallery image into the
// target tenant's namespace.
type ForkRequested struct {
	SourcePath     string    `json:"source_path"`
	TargetTenantID uuid.UUID `json:"target_tenant_id"`
	EntityID       uuid.UUID `json:"entity_id"`
	AssetKind      string    `json:"asset_kind"`
}

// BrandCopyRequested asks for a copy of a brand-level asset (logo, banner)
// into the target tenant's namespace.
type BrandCopyRequested struct {
	SourcePath     string    `json:"source_path"`
	TargetTenantID uuid.UUID `json:"target_tenant_id"`
	BrandID        uuid.UUID `json:"brand_id"`
	AssetKind      string    `json:"asset_kind"`
}
