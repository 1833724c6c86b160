package entity

import (
	"time"

	"github.com/google/uuid"
)

// SyncJob tracks aggregate progress of one tenant's internalization backlog.
type SyncJob struct {
	ID             uuid.UUID  `json:"id"`
	TenantID       uuid.UUID  `json:"tenant_id"`
	TotalCount     int        `json:"total_count"`
	CompletedCount int        `json:"completed_count"`
	Status         JobStatus  `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}
