package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/brandlens-backend/internal/http/response"
)

// GET /api/prompts/:id/runs?limit=20
func (h *PromptHandler) ListRuns(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_prompt_id")
	if !ok {
		return
	}
	runs, err := h.prompts.ListRuns(c.Request.Context(), id, intQuery(c, "limit", 0))
	if err != nil {
		respondErr(c, err, "list_prompt_runs_failed")
		return
	}
	response.RespondOK(c, gin.H{"runs": runs})
}

// GET /api/prompt-runs/:id
func (h *PromptHandler) GetRun(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_prompt_run_id")
	if !ok {
		return
	}
	run, err := h.prompts.GetRun(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err, "get_prompt_run_failed")
		return
	}
	response.RespondOK(c, gin.H{"run": run})
}

// GET /api/prompt-runs/:id/responses
func (h *PromptHandler) ListRunResponses(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_prompt_run_id")
	if !ok {
		return
	}
	rows, err := h.prompts.ListRunResponses(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err, "list_model_responses_failed")
		return
	}
	response.RespondOK(c, gin.H{"responses": rows})
}
