package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/brandlens-backend/internal/http/response"
	"github.com/yungbote/brandlens-backend/internal/modules/audit"
	"github.com/yungbote/brandlens-backend/internal/platform/apierr"
	"github.com/yungbote/brandlens-backend/internal/services"
)

// toAPIError maps service and pipeline sentinels onto HTTP statuses.
func toAPIError(err error, fallbackCode string) *apierr.Error {
	var ae *apierr.Error
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, services.ErrValidation):
		return apierr.New(http.StatusBadRequest, "validation_failed", err)
	case errors.Is(err, services.ErrNoWorkspace):
		return apierr.New(http.StatusBadRequest, "workspace_required", err)
	case errors.Is(err, services.ErrConflict):
		return apierr.New(http.StatusConflict, "conflict", err)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, audit.ErrPromptNotFound):
		return apierr.New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, audit.ErrRunInProgress):
		return apierr.New(http.StatusConflict, "run_in_progress", err)
	case errors.Is(err, audit.ErrPromptInactive):
		return apierr.New(http.StatusConflict, "prompt_inactive", err)
	case errors.Is(err, services.ErrScheduleNotApplied):
		return apierr.New(http.StatusServiceUnavailable, "schedule_not_applied", services.ErrScheduleNotApplied)
	default:
		return apierr.New(http.StatusInternalServerError, fallbackCode, errors.New("internal server error"))
	}
}

func respondErr(c *gin.Context, err error, fallbackCode string) {
	ae := toAPIError(err, fallbackCode)
	if ae.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	response.RespondAPIError(c, ae)
}
