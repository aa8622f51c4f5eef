package app

import (
	"context"

	"gorm.io/gorm"

	apphttp "github.com/yungbote/brandlens-backend/internal/http"
	httpH "github.com/yungbote/brandlens-backend/internal/http/handlers"
	"github.com/yungbote/brandlens-backend/internal/observability"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

func wireServer(db *gorm.DB, log *logger.Logger, cfg Config, metrics *observability.Metrics, svc Services) *apphttp.Server {
	log.Info("Wiring handlers and router...")
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		ServiceName:        serviceName,
		CORSOrigins:        cfg.CORSOrigins,
		Tracing:            cfg.Otel.Enabled,
		Workspaces:         svc.Workspace,
		HealthHandler:      httpH.NewHealthHandler(pinger(db)),
		WorkspaceHandler:   httpH.NewWorkspaceHandler(svc.Workspace),
		TargetBrandHandler: httpH.NewTargetBrandHandler(svc.TargetBrand),
		BrandHandler:       httpH.NewBrandHandler(svc.Brand),
		PromptHandler:      httpH.NewPromptHandler(svc.Prompt, svc.Scheduler),
	})
}

func pinger(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
