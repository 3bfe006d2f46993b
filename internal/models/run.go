package models

import (
	"time"

	"gorm.io/datatypes"
)

// RunStatus is the lifecycle state of a pipeline run
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusPassed   RunStatus = "passed"
	RunStatusDegraded RunStatus = "degraded" // Completed without every review passing
	RunStatusFailed   RunStatus = "failed"
)

// RunRecord persists one pipeline run
type RunRecord struct {
	ID          string              `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Owner       string              `gorm:"index" json:"owner"`
	Status      RunStatus           `gorm:"index;not null" json:"status"`
	Brief       datatypes.JSON      `json:"brief"`
	Result      datatypes.JSON      `json:"result,omitempty"`
	Warning     string              `json:"warning,omitempty"`
	Error       string              `json:"error,omitempty"`
	DurationMs  int64               `json:"duration_ms"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	Rounds      []ReviewRoundRecord `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"rounds,omitempty"`
}

// ReviewRoundRecord persists one review round of one loop
type ReviewRoundRecord struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	RunID           string         `gorm:"index;size:36;not null" json:"run_id"`
	Loop            string         `gorm:"not null" json:"loop"` // "director" or "script"
	Round           int            `gorm:"not null" json:"round"`
	Passed          bool           `json:"passed"`
	Summary         string         `json:"summary"`
	Issues          datatypes.JSON `json:"issues"`
	RequiredChanges datatypes.JSON `json:"required_changes"`
}

// RunUpdate is the final state written when a run completes
type RunUpdate struct {
	Status     RunStatus
	Result     datatypes.JSON
	Warning    string
	Error      string
	DurationMs int64
}

// RunRequest asks for one full pipeline run.
// A zero TargetDurationSec lets the planner choose the length; a nil
// VideoSpec uses the configured output format. Photos default to the
// brief's photo refs.
type RunRequest struct {
	Brief             NarrativeBrief `json:"brief"`
	Photos            []Photo        `json:"photos,omitempty"`
	TargetDurationSec float64        `json:"targetDurationSec,omitempty"`
	VideoSpec         *VideoSpec     `json:"videoSpec,omitempty"`
}
