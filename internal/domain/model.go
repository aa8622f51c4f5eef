package domain

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID gives new rows a v4 id in Go so the schema does not depend on a
// database-side uuid extension.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (w *Workspace) BeforeCreate(*gorm.DB) error     { assignID(&w.ID); return nil }
func (b *TargetBrand) BeforeCreate(*gorm.DB) error   { assignID(&b.ID); return nil }
func (b *Brand) BeforeCreate(*gorm.DB) error         { assignID(&b.ID); return nil }
func (p *Prompt) BeforeCreate(*gorm.DB) error        { assignID(&p.ID); return nil }
func (r *PromptRun) BeforeCreate(*gorm.DB) error     { assignID(&r.ID); return nil }
func (m *ModelResponse) BeforeCreate(*gorm.DB) error { assignID(&m.ID); return nil }

// AllModels lists every persisted type, in migration order.
func AllModels() []any {
	return []any{
		&Workspace{},
		&TargetBrand{},
		&Brand{},
		&Prompt{},
		&PromptRun{},
		&ModelResponse{},
	}
}
