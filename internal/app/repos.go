package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/brandlens-backend/internal/data/repos"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type Repos struct {
	Workspace     repos.WorkspaceRepo
	TargetBrand   repos.TargetBrandRepo
	Brand         repos.BrandRepo
	Prompt        repos.PromptRepo
	PromptRun     repos.PromptRunRepo
	ModelResponse repos.ModelResponseRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Workspace:     repos.NewWorkspaceRepo(db, log),
		TargetBrand:   repos.NewTargetBrandRepo(db, log),
		Brand:         repos.NewBrandRepo(db, log),
		Prompt:        repos.NewPromptRepo(db, log),
		PromptRun:     repos.NewPromptRunRepo(db, log),
		ModelResponse: repos.NewModelResponseRepo(db, log),
	}
}
