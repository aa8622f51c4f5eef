package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/brandlens-backend/internal/http/response"
	"github.com/yungbote/brandlens-backend/internal/services"
)

type WorkspaceHandler struct {
	workspaces services.WorkspaceService
}

func NewWorkspaceHandler(workspaces services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

// GET /api/workspaces
func (h *WorkspaceHandler) List(c *gin.Context) {
	list, err := h.workspaces.List(c.Request.Context())
	if err != nil {
		respondErr(c, err, "list_workspaces_failed")
		return
	}
	response.RespondOK(c, gin.H{"workspaces": list})
}

// POST /api/workspaces
func (h *WorkspaceHandler) Create(c *gin.Context) {
	var in services.CreateWorkspaceInput
	if !bindJSON(c, &in) {
		return
	}
	ws, err := h.workspaces.Create(c.Request.Context(), in)
	if err != nil {
		respondErr(c, err, "create_workspace_failed")
		return
	}
	response.RespondCreated(c, gin.H{"workspace": ws})
}

// GET /api/workspaces/:id
func (h *WorkspaceHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id", "invalid_workspace_id")
	if !ok {
		return
	}
	ws, err := h.workspaces.Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err, "get_workspace_failed")
		return
	}
	response.RespondOK(c, gin.H{"workspace": ws})
}
