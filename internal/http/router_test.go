package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/brandlens-backend/internal/clients/llm"
	"github.com/yungbote/brandlens-backend/internal/data/repos"
	"github.com/yungbote/brandlens-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/brandlens-backend/internal/http/handlers"
	"github.com/yungbote/brandlens-backend/internal/jobs/scheduler"
	"github.com/yungbote/brandlens-backend/internal/modules/audit"
	"github.com/yungbote/brandlens-backend/internal/observability"
	"github.com/yungbote/brandlens-backend/internal/platform/lock"
	"github.com/yungbote/brandlens-backend/internal/services"
)

const acmeExtraction = `{"predefined_brand_analysis":[{"brand_name":"Acme","found":true,"mention_count":2,"sentiment":"Positive","rank_position":1,"prominence_score":7,"context":"...","associated_links":[]}],"discovered_competitor_analysis":[]}`

type testServer struct {
	engine *gin.Engine
	locker *lock.MemoryLocker
	sched  *scheduler.Scheduler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	metrics := observability.New()

	workspaceRepo := repos.NewWorkspaceRepo(db, log)
	targetRepo := repos.NewTargetBrandRepo(db, log)
	brandRepo := repos.NewBrandRepo(db, log)
	promptRepo := repos.NewPromptRepo(db, log)
	runRepo := repos.NewPromptRunRepo(db, log)
	responseRepo := repos.NewModelResponseRepo(db, log)

	locker := lock.NewMemoryLocker()
	fake := &llm.Fake{
		BackendName: "openai",
		ModelName:   "gpt-4o-mini",
		Respond: func(ctx context.Context, req llm.Request) (string, error) {
			if req.JSON {
				return acmeExtraction, nil
			}
			return "Acme is the best widget provider.", nil
		},
	}
	pipeline := audit.NewPipeline(audit.PipelineDeps{
		Log:          log,
		Metrics:      metrics,
		Locker:       locker,
		LLM:          &llm.Set{Chat: []llm.Backend{fake}},
		Prompts:      promptRepo,
		TargetBrands: targetRepo,
		Brands:       brandRepo,
		Runs:         runRepo,
		Responses:    responseRepo,
	})
	sched, err := scheduler.New(scheduler.Deps{
		Log:          log,
		Metrics:      metrics,
		Runner:       pipeline,
		Prompts:      promptRepo,
		TargetBrands: targetRepo,
	})
	require.NoError(t, err)

	workspaces := services.NewWorkspaceService(db, log, workspaceRepo)
	engine := NewRouter(RouterConfig{
		Log:                log,
		Metrics:            metrics,
		ServiceName:        "brandlens-test",
		Workspaces:         workspaces,
		HealthHandler:      httpH.NewHealthHandler(nil),
		WorkspaceHandler:   httpH.NewWorkspaceHandler(workspaces),
		TargetBrandHandler: httpH.NewTargetBrandHandler(services.NewTargetBrandService(log, targetRepo, sched)),
		BrandHandler:       httpH.NewBrandHandler(services.NewBrandService(log, brandRepo, audit.BrandColor)),
		PromptHandler: httpH.NewPromptHandler(
			services.NewPromptService(log, promptRepo, runRepo, responseRepo, sched),
			sched,
		),
	})
	return &testServer{engine: engine, locker: locker, sched: sched}
}

func (s *testServer) do(t *testing.T, method, path string, workspaceID *uuid.UUID, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if workspaceID != nil {
		req.Header.Set("X-Workspace-ID", workspaceID.String())
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	out := map[string]any{}
	if ct := rec.Header().Get("Content-Type"); len(ct) >= 16 && ct[:16] == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func (s *testServer) createWorkspace(t *testing.T, name string) uuid.UUID {
	t.Helper()
	rec, body := s.do(t, nethttp.MethodPost, "/api/workspaces", nil, map[string]any{"name": name})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	ws := body["workspace"].(map[string]any)
	id, err := uuid.Parse(ws["id"].(string))
	require.NoError(t, err)
	return id
}

func (s *testServer) createPrompt(t *testing.T, ws uuid.UUID, text string, scheduled bool) uuid.UUID {
	t.Helper()
	rec, body := s.do(t, nethttp.MethodPost, "/api/prompts", &ws, map[string]any{"prompt_text": text, "is_scheduled": scheduled})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	id, err := uuid.Parse(body["prompt"].(map[string]any)["id"].(string))
	require.NoError(t, err)
	return id
}

func errorCode(body map[string]any) string {
	e, ok := body["error"].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := e["code"].(string)
	return code
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, nethttp.MethodGet, "/healthcheck", nil, nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec, _ = s.do(t, nethttp.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
}

func TestWorkspaceScoping(t *testing.T) {
	s := newTestServer(t)

	rec, body := s.do(t, nethttp.MethodGet, "/api/brands", nil, nil)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "workspace_required", errorCode(body))

	rec, _ = s.do(t, nethttp.MethodGet, "/api/brands?workspace_id=not-a-uuid", nil, nil)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	unknown := uuid.New()
	rec, body = s.do(t, nethttp.MethodGet, "/api/brands", &unknown, nil)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	assert.Equal(t, "workspace_not_found", errorCode(body))

	ws := s.createWorkspace(t, "W1")
	rec, _ = s.do(t, nethttp.MethodGet, "/api/brands?workspace_id="+ws.String(), nil, nil)
	assert.Equal(t, nethttp.StatusOK, rec.Code)
}

func TestRunPromptEndToEnd(t *testing.T) {
	s := newTestServer(t)
	w1 := s.createWorkspace(t, "W1")
	w2 := s.createWorkspace(t, "W2")

	rec, _ := s.do(t, nethttp.MethodPost, "/api/target-brands", &w1, map[string]any{"brand_name": "Acme", "official_url": "acme.com"})
	require.Equal(t, nethttp.StatusCreated, rec.Code, rec.Body.String())
	rec, body := s.do(t, nethttp.MethodPost, "/api/target-brands", &w1, map[string]any{"brand_name": "acme", "official_url": "acme.com"})
	assert.Equal(t, nethttp.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", errorCode(body))

	promptID := s.createPrompt(t, w1, "best widget providers?", true)
	assert.True(t, s.sched.ScheduledPrompt(promptID))

	rec, body = s.do(t, nethttp.MethodPost, "/api/prompts/"+promptID.String(), &w1, map[string]any{"action": "run"})
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	run := body["run"].(map[string]any)
	assert.Equal(t, "completed", run["status"])
	assert.Equal(t, "manual", run["trigger"])

	rec, body = s.do(t, nethttp.MethodGet, "/api/brands", &w1, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	brands := body["brands"].([]any)
	require.Len(t, brands, 1)
	acme := brands[0].(map[string]any)
	assert.Equal(t, "Acme", acme["brand_name"])
	assert.EqualValues(t, 2, acme["mentions"])
	assert.EqualValues(t, 1, acme["last_rank"])
	assert.EqualValues(t, 7, acme["prominence_score"])

	// W2 sees nothing and cannot run W1's prompt.
	rec, body = s.do(t, nethttp.MethodGet, "/api/brands", &w2, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Empty(t, body["brands"])
	rec, _ = s.do(t, nethttp.MethodPost, "/api/prompts/"+promptID.String(), &w2, map[string]any{"action": "run"})
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)

	runID := run["id"].(string)
	rec, body = s.do(t, nethttp.MethodGet, "/api/prompt-runs/"+runID+"/responses", &w1, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Len(t, body["responses"], 2)

	rec, body = s.do(t, nethttp.MethodGet, "/api/prompts/"+promptID.String()+"/runs", &w1, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Len(t, body["runs"], 1)
}

func TestRunPromptConflictWhileLocked(t *testing.T) {
	s := newTestServer(t)
	ws := s.createWorkspace(t, "W1")
	promptID := s.createPrompt(t, ws, "best widget providers?", false)

	release, err := s.locker.Acquire(context.Background(), audit.LockKey(promptID), time.Minute)
	require.NoError(t, err)
	defer release()

	rec, body := s.do(t, nethttp.MethodPost, "/api/prompts/"+promptID.String(), &ws, map[string]any{"action": "run"})
	assert.Equal(t, nethttp.StatusConflict, rec.Code)
	assert.Equal(t, "run_in_progress", errorCode(body))
}

func TestScheduleTogglesAndExecuteAll(t *testing.T) {
	s := newTestServer(t)
	ws := s.createWorkspace(t, "W1")
	a := s.createPrompt(t, ws, "a", true)
	b := s.createPrompt(t, ws, "b", false)

	rec, _ := s.do(t, nethttp.MethodPost, "/api/prompts/"+b.String()+"/start-schedule", &ws, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, s.sched.ScheduledPrompt(b))

	rec, _ = s.do(t, nethttp.MethodPost, "/api/prompts/"+a.String()+"/stop-schedule", &ws, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.False(t, s.sched.ScheduledPrompt(a))

	rec, body := s.do(t, nethttp.MethodPost, "/api/prompts/execute-all", &ws, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 0, body["failed"])

	rec, body = s.do(t, nethttp.MethodPost, "/api/prompts/"+a.String(), &ws, map[string]any{"action": "explode"})
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
	assert.Equal(t, "unknown_action", errorCode(body))
}
