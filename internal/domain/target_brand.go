package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TargetBrand is a brand the operator wants tracked and injected into every extraction prompt.
type TargetBrand struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkspaceID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_target_brand_ws_name,priority:1" json:"workspace_id"`
	BrandName       string    `gorm:"column:brand_name;not null" json:"brand_name"`
	NameKey         string    `gorm:"column:name_key;not null;uniqueIndex:idx_target_brand_ws_name,priority:2" json:"-"`
	OfficialURL     string    `gorm:"column:official_url;not null" json:"official_url"`
	ActualBrandName string    `gorm:"column:actual_brand_name" json:"actual_brand_name,omitempty"`
	BrandType       string    `gorm:"column:brand_type" json:"brand_type,omitempty"`
	IsActive        bool      `gorm:"column:is_active;not null;index" json:"is_active"`
	IsScheduled     bool      `gorm:"column:is_scheduled;not null;default:false;index" json:"is_scheduled"`
	CreatedAt       time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (TargetBrand) TableName() string { return "target_brand" }

// NameKey normalises a brand name for uniqueness checks.
func NameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
