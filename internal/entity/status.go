package entity

// SyncStatus tracks image internalization per product / gallery image.
// Every path to Synced or Failed passes through an internalization attempt;
// only an explicit reprocess moves an entity back to Pending.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncFailed  SyncStatus = "failed"
)

type JobStatus string

const (
	JobProcessing JobStatus = "processing"
	JobDone       JobStatus = "done"
	JobFailed     JobStatus = "failed"
)
