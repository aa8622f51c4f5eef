package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/brandlens-backend/internal/data/repos/audit"
	"github.com/yungbote/brandlens-backend/internal/data/repos/brand"
	"github.com/yungbote/brandlens-backend/internal/data/repos/tenancy"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type WorkspaceRepo = tenancy.WorkspaceRepo

type TargetBrandRepo = brand.TargetBrandRepo
type BrandRepo = brand.BrandRepo
type BrandObservation = brand.Observation

type PromptRepo = audit.PromptRepo
type PromptRunRepo = audit.PromptRunRepo
type ModelResponseRepo = audit.ModelResponseRepo

func NewWorkspaceRepo(db *gorm.DB, baseLog *logger.Logger) WorkspaceRepo {
	return tenancy.NewWorkspaceRepo(db, baseLog)
}

func NewTargetBrandRepo(db *gorm.DB, baseLog *logger.Logger) TargetBrandRepo {
	return brand.NewTargetBrandRepo(db, baseLog)
}
func NewBrandRepo(db *gorm.DB, baseLog *logger.Logger) BrandRepo {
	return brand.NewBrandRepo(db, baseLog)
}

func NewPromptRepo(db *gorm.DB, baseLog *logger.Logger) PromptRepo {
	return audit.NewPromptRepo(db, baseLog)
}
func NewPromptRunRepo(db *gorm.DB, baseLog *logger.Logger) PromptRunRepo {
	return audit.NewPromptRunRepo(db, baseLog)
}
func NewModelResponseRepo(db *gorm.DB, baseLog *logger.Logger) ModelResponseRepo {
	return audit.NewModelResponseRepo(db, baseLog)
}
