package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Prompt struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID uuid.UUID                   `gorm:"type:uuid;not null;index" json:"workspace_id"`
	PromptText  string                      `gorm:"column:prompt_text;type:text;not null" json:"prompt_text"`
	Topic       string                      `gorm:"column:topic" json:"topic,omitempty"`
	Tags        datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	IsActive    bool                        `gorm:"column:is_active;not null;index" json:"is_active"`
	IsScheduled bool                        `gorm:"column:is_scheduled;not null;default:false;index" json:"is_scheduled"`
	LastRunAt   *time.Time                  `gorm:"column:last_run_at" json:"last_run_at,omitempty"`
	CreatedAt   time.Time                   `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"not null" json:"updated_at"`
}

func (Prompt) TableName() string { return "prompt" }

func StringsOrEmpty(v []string) datatypes.JSONSlice[string] {
	if v == nil {
		return datatypes.JSONSlice[string]{}
	}
	return datatypes.JSONSlice[string](v)
}
