package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is the tenant boundary. Every brand, prompt and target brand belongs to exactly one.
type Workspace struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	IsDefault bool      `gorm:"column:is_default;not null;default:false;index" json:"is_default"`
	IsActive  bool      `gorm:"column:is_active;not null;index" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Workspace) TableName() string { return "workspace" }
