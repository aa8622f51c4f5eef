package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/brandlens-backend/internal/http/handlers"
	httpMW "github.com/yungbote/brandlens-backend/internal/http/middleware"
	"github.com/yungbote/brandlens-backend/internal/observability"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string
	// Tracing adds otelgin spans; the global tracer provider decides where they go.
	Tracing bool

	Workspaces httpMW.WorkspaceResolver

	HealthHandler      *httpH.HealthHandler
	WorkspaceHandler   *httpH.WorkspaceHandler
	TargetBrandHandler *httpH.TargetBrandHandler
	BrandHandler       *httpH.BrandHandler
	PromptHandler      *httpH.PromptHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Workspaces (not workspace-scoped)
		if cfg.WorkspaceHandler != nil {
			api.GET("/workspaces", cfg.WorkspaceHandler.List)
			api.POST("/workspaces", cfg.WorkspaceHandler.Create)
			api.GET("/workspaces/:id", cfg.WorkspaceHandler.Get)
		}
	}

	scoped := api.Group("/")
	{
		if cfg.Workspaces != nil {
			scoped.Use(httpMW.RequireWorkspace(cfg.Workspaces))
		}

		// Target brands
		if cfg.TargetBrandHandler != nil {
			scoped.GET("/target-brands", cfg.TargetBrandHandler.List)
			scoped.POST("/target-brands", cfg.TargetBrandHandler.Create)
			scoped.GET("/target-brands/:id", cfg.TargetBrandHandler.Get)
			scoped.PATCH("/target-brands/:id", cfg.TargetBrandHandler.Update)
			scoped.POST("/target-brands/:id/start-schedule", cfg.TargetBrandHandler.StartSchedule)
			scoped.POST("/target-brands/:id/stop-schedule", cfg.TargetBrandHandler.StopSchedule)
		}

		// Brands (leaderboard)
		if cfg.BrandHandler != nil {
			scoped.GET("/brands", cfg.BrandHandler.List)
			scoped.POST("/brands", cfg.BrandHandler.Create)
			scoped.GET("/brands/:id", cfg.BrandHandler.Get)
		}

		// Prompts, runs and the scheduler trigger surface
		if cfg.PromptHandler != nil {
			scoped.GET("/prompts", cfg.PromptHandler.List)
			scoped.POST("/prompts", cfg.PromptHandler.Create)
			scoped.POST("/prompts/execute-all", cfg.PromptHandler.ExecuteAll)
			scoped.GET("/prompts/:id", cfg.PromptHandler.Get)
			scoped.POST("/prompts/:id", cfg.PromptHandler.Action)
			scoped.PATCH("/prompts/:id", cfg.PromptHandler.Update)
			scoped.POST("/prompts/:id/start-schedule", cfg.PromptHandler.StartSchedule)
			scoped.POST("/prompts/:id/stop-schedule", cfg.PromptHandler.StopSchedule)
			scoped.GET("/prompts/:id/runs", cfg.PromptHandler.ListRuns)
			scoped.GET("/prompt-runs/:id", cfg.PromptHandler.GetRun)
			scoped.GET("/prompt-runs/:id/responses", cfg.PromptHandler.ListRunResponses)
		}
	}

	return r
}
