package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/brandlens-backend/internal/jobs/scheduler"
	"github.com/yungbote/brandlens-backend/internal/modules/audit"
	"github.com/yungbote/brandlens-backend/internal/observability"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/services"
)

type Services struct {
	Pipeline  *audit.Pipeline
	Scheduler *scheduler.Scheduler

	Workspace   services.WorkspaceService
	TargetBrand services.TargetBrandService
	Brand       services.BrandService
	Prompt      services.PromptService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, metrics *observability.Metrics, clients Clients, r Repos) (Services, error) {
	log.Info("Wiring services...")

	pipeline := audit.NewPipeline(audit.PipelineDeps{
		Log:          log,
		Metrics:      metrics,
		Locker:       clients.Locker,
		LLM:          clients.LLM,
		Prompts:      r.Prompt,
		TargetBrands: r.TargetBrand,
		Brands:       r.Brand,
		Runs:         r.PromptRun,
		Responses:    r.ModelResponse,
		CallTimeout:  cfg.LLM.CallTimeout,
		LockTTL:      cfg.Schedule.LockTTL,
	})

	sched, err := scheduler.New(scheduler.Deps{
		Log:             log,
		Metrics:         metrics,
		Runner:          pipeline,
		Prompts:         r.Prompt,
		TargetBrands:    r.TargetBrand,
		Spec:            cfg.Schedule.Spec,
		Location:        cfg.Schedule.Location,
		BulkConcurrency: cfg.Schedule.BulkConcurrency,
	})
	if err != nil {
		return Services{}, err
	}

	return Services{
		Pipeline:    pipeline,
		Scheduler:   sched,
		Workspace:   services.NewWorkspaceService(db, log, r.Workspace),
		TargetBrand: services.NewTargetBrandService(log, r.TargetBrand, sched),
		Brand:       services.NewBrandService(log, r.Brand, audit.BrandColor),
		Prompt:      services.NewPromptService(log, r.Prompt, r.PromptRun, r.ModelResponse, sched),
	}, nil
}
