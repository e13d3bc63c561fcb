package reconcile

import (
	"fmt"
	"time"
)

// Config holds tuning for the reconciliation engine.
type Config struct {
	// SiteIDs is the comma-separated fallback used when the site id setting is not stored.
	SiteIDs string `mapstructure:"site_ids" default:""`
	// StrictCleanup aborts a run when a stale remote case cannot be looked up or deleted.
	// When false such failures are logged and the stale row is retracted anyway.
	StrictCleanup bool `mapstructure:"strict_cleanup" default:"false"`
	// LockTimeoutSeconds bounds the wait for the per-item exclusive scope.
	LockTimeoutSeconds int `mapstructure:"lock_timeout_seconds" default:"30"`
}

func (c Config) lockTimeout() time.Duration {
	if c.LockTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.LockTimeoutSeconds) * time.Second
}

// ItemChanged is the inbound event that triggers a reconciliation run.
type ItemChanged struct {
	ItemID     int    `json:"item_id" validate:"required,gt=0"`
	TemplateID int    `json:"template_id" validate:"required,gt=0"`
	FolderName string `json:"folder_name" validate:"required,max=255"`
	// Force runs the full retract and recreate cycle even when the item is unchanged.
	Force bool `json:"force,omitempty"`
}

// LockKey is the exclusive scope key of an item.
func LockKey(itemID int) string {
	return fmt.Sprintf("items-planning:item:%d", itemID)
}

// Report describes one reconciliation run.
type Report struct {
	RunID      string `json:"run_id"`
	ItemID     int    `json:"item_id"`
	TemplateID int    `json:"template_id"`
	FolderName string `json:"folder_name"`
	FolderID   int    `json:"folder_id"`

	// Skipped is set when the item does not exist.
	Skipped bool `json:"skipped"`

	PlanningCaseID int `json:"planning_case_id,omitempty"`
	// RetractedCaseID is the planning case superseded by this run, if any.
	RetractedCaseID *int `json:"retracted_case_id,omitempty"`
	// Reused is set when the item was unchanged and the active planning case was kept.
	Reused bool `json:"reused"`

	Sites []SiteOutcome `json:"sites"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Error      string    `json:"error,omitempty"`
}

// Created counts the remote cases created by the run.
func (r *Report) Created() int {
	n := 0
	for _, s := range r.Sites {
		if s.Created {
			n++
		}
	}
	return n
}

// Deleted counts the stale remote cases deleted by the run.
func (r *Report) Deleted() int {
	n := 0
	for _, s := range r.Sites {
		n += s.Deleted
	}
	return n
}

// SiteOutcome describes what happened at one site.
type SiteOutcome struct {
	SiteID             int  `json:"site_id"`
	PlanningCaseSiteID int  `json:"planning_case_site_id"`
	Retracted          int  `json:"retracted"`
	Deleted            int  `json:"deleted"`
	CleanupFailures    int  `json:"cleanup_failures,omitempty"`
	Created            bool `json:"created"`
	AlreadyFulfilled   bool `json:"already_fulfilled"`
	RemoteCaseID       *int `json:"remote_case_id,omitempty"`
}
