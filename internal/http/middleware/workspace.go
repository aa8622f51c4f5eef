package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/http/response"
	"github.com/yungbote/brandlens-backend/internal/platform/ctxutil"
	"github.com/yungbote/brandlens-backend/internal/services"
)

const (
	headerWorkspaceID = "X-Workspace-ID"
	queryWorkspaceID  = "workspace_id"
)

// WorkspaceResolver looks up an active workspace.
type WorkspaceResolver interface {
	Resolve(ctx context.Context, id uuid.UUID) (*domain.Workspace, error)
}

// RequireWorkspace scopes the request to the workspace named by the
// X-Workspace-ID header or workspace_id query param. Missing or malformed ids
// are 400; unknown or inactive workspaces are 404.
func RequireWorkspace(resolver WorkspaceResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(headerWorkspaceID))
		if raw == "" {
			raw = strings.TrimSpace(c.Query(queryWorkspaceID))
		}
		if raw == "" {
			response.RespondError(c, http.StatusBadRequest, "workspace_required",
				errors.New("X-Workspace-ID header or workspace_id query param is required"))
			c.Abort()
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_workspace_id", err)
			c.Abort()
			return
		}
		if _, err := resolver.Resolve(c.Request.Context(), id); err != nil {
			if errors.Is(err, services.ErrNotFound) {
				response.RespondError(c, http.StatusNotFound, "workspace_not_found", errors.New("workspace not found"))
			} else {
				_ = c.Error(err)
				response.RespondError(c, http.StatusInternalServerError, "workspace_lookup_failed", errors.New("workspace lookup failed"))
			}
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithWorkspaceID(c.Request.Context(), id))
		c.Set("workspace_id", id)
		c.Next()
	}
}
