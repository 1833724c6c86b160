package response

type Error struct {
	Error string `json:"error"`
}

type SyncJob struct {
	JobID          string `json:"job_id"`
	TenantID       string `json:"tenant_id"`
	Status         string `json:"status"`
	TotalCount     int    `json:"total_count"`
	CompletedCount int    `json:"completed_count"`
	CreatedAt      string `json:"created_at"`
	FinishedAt     string `json:"finished_at,omitempty"`
}

type ForkAccepted struct {
	EventType string `json:"event_type"`
	Status    string `json:"status"`
}

type CloneResult struct {
	ClonedCount int `json:"cloned_count"`
}

type UndoCloneResult struct {
	RemovedCount int `json:"removed_count"`
}

type CleanupResult struct {
	DryRun       bool     `json:"dry_run"`
	Orphans      []string `json:"orphans"`
	DeletedCount int      `json:"deleted_count"`
}

// DeleteItem is the per-path outcome of a safe-delete request: a declined
// delete (the object is still referenced) is reported, not treated as a
// request failure.
type DeleteItem struct {
	Path    string `json:"path"`
	Deleted bool   `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

type DeleteResult struct {
	Results []DeleteItem `json:"results"`
}
