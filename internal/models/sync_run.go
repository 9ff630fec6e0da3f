package models

import "time"

// SyncRun is the persisted record of one batch operation.
type SyncRun struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Operation   string    `json:"operation"`
	DryRun      bool      `json:"dry_run"`
	State       string    `json:"state"`
	Processed   int       `json:"processed"`
	Succeeded   int       `json:"succeeded"`
	AlreadyDone int       `json:"already_done"`
	Failed      int       `json:"failed"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}
