package domain

import (
	"time"

	"github.com/google/uuid"
)

type RunTrigger string

const (
	TriggerScheduled RunTrigger = "scheduled"
	TriggerManual    RunTrigger = "manual"
	TriggerBulk      RunTrigger = "bulk"
)

type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunPartial   RunStatus = "partial"
	RunFailed    RunStatus = "failed"
)

// PromptRun is one audit cycle for one prompt. ModelResponses point back at it.
type PromptRun struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"workspace_id"`
	PromptID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"prompt_id"`
	Trigger        RunTrigger `gorm:"column:triggered_by;not null" json:"trigger"`
	Status         RunStatus  `gorm:"column:status;not null;index" json:"status"`
	BackendsOK     int        `gorm:"column:backends_ok;not null;default:0" json:"backends_ok"`
	BackendsFailed int        `gorm:"column:backends_failed;not null;default:0" json:"backends_failed"`
	BrandsUpdated  int        `gorm:"column:brands_updated;not null;default:0" json:"brands_updated"`
	Error          string     `gorm:"column:error;type:text" json:"error,omitempty"`
	StartedAt      time.Time  `gorm:"column:started_at;not null;index" json:"started_at"`
	FinishedAt     *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

func (PromptRun) TableName() string { return "prompt_run" }
