package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/http/response"
	"github.com/yungbote/brandlens-backend/internal/jobs/scheduler"
	"github.com/yungbote/brandlens-backend/internal/platform/ctxutil"
	"github.com/yungbote/brandlens-backend/internal/services"
)

// AuditTrigger starts audit cycles outside the schedule. *scheduler.Scheduler satisfies it.
type AuditTrigger interface {
	RunPrompt(ctx context.Context, workspaceID, promptID uuid.UUID, trigger domain.RunTrigger) (*domain.PromptRun, error)
	RunAllScheduled(ctx context.Context, workspaceID uuid.UUID) ([]scheduler.BulkResult, error)
}

type PromptHandler struct {
	prompts services.PromptService
	trigger AuditTrigger
}

func NewPromptHandler(prompts services.PromptService, trigger AuditTrigger) *PromptHandler {
	return &PromptHandler{prompts: prompts, trigger: trigger}
}

// GET /api/prompts?active=true
func (h *PromptHandler) List(c *gin.Context) {
	list, err := h.prompts.List(c.Request.Context(), boolQuery(c, "active", false))
	if err != nil {
		respondErr(c, err, "list_prompts_failed")
		return
	}
	response.RespondOK(c, gin.H{"prompts": list})
}

// POST /api/prompts
func (h *PromptHandler) Create(c *gin.Context) {
	var in services.CreatePromptInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.prompts.Create(c.Request.Context(), in)
	if err != nil {
		respondErr(c, err, "create_prompt_failed")
		return
	}
	response.RespondCreated(c, gin.H{"prompt": p})
}

// GET /api/prompts/:id
func (h *PromptHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_prompt_id")
	if !ok {
		return
	}
	p, err := h.prompts.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err, "get_prompt_failed")
		return
	}
	response.RespondOK(c, gin.H{"prompt": p})
}

// PATCH /api/prompts/:id
func (h *PromptHandler) Update(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_prompt_id")
	if !ok {
		return
	}
	var in services.UpdatePromptInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.prompts.Update(c.Request.Context(), id, in)
	if err != nil {
		respondErr(c, err, "update_prompt_failed")
		return
	}
	response.RespondOK(c, gin.H{"prompt": p})
}

// POST /api/prompts/:id/start-schedule
func (h *PromptHandler) StartSchedule(c *gin.Context) { h.setScheduled(c, true) }

// POST /api/prompts/:id/stop-schedule
func (h *PromptHandler) StopSchedule(c *gin.Context) { h.setScheduled(c, false) }

func (h *PromptHandler) setScheduled(c *gin.Context, scheduled bool) {
	id, ok := uuidParam(c, "id", "invalid_prompt_id")
	if !ok {
		return
	}
	p, err := h.prompts.SetScheduled(c.Request.Context(), id, scheduled)
	if err != nil {
		respondErr(c, err, "schedule_prompt_failed")
		return
	}
	response.RespondOK(c, gin.H{"prompt": p})
}

type promptActionRequest struct {
	Action string `json:"action"`
}

// POST /api/prompts/:id  {"action":"run"}
func (h *PromptHandler) Action(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_prompt_id")
	if !ok {
		return
	}
	var req promptActionRequest
	if !bindJSON(c, &req) {
		return
	}
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "run":
	case "start-schedule", "start_schedule":
		h.setScheduled(c, true)
		return
	case "stop-schedule", "stop_schedule":
		h.setScheduled(c, false)
		return
	default:
		response.RespondError(c, http.StatusBadRequest, "unknown_action", fmt.Errorf("unknown action %q", req.Action))
		return
	}

	wsID, _ := ctxutil.GetWorkspaceID(c.Request.Context())
	run, err := h.trigger.RunPrompt(c.Request.Context(), wsID, id, domain.TriggerManual)
	if err != nil {
		respondErr(c, err, "run_prompt_failed")
		return
	}
	response.RespondOK(c, gin.H{"run": run})
}

// POST /api/prompts/execute-all
func (h *PromptHandler) ExecuteAll(c *gin.Context) {
	wsID, _ := ctxutil.GetWorkspaceID(c.Request.Context())
	results, err := h.trigger.RunAllScheduled(c.Request.Context(), wsID)
	if err != nil {
		respondErr(c, err, "execute_all_failed")
		return
	}
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	response.RespondOK(c, gin.H{"results": results, "total": len(results), "failed": failed})
}
