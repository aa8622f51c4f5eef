package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/brandlens-backend/internal/platform/ctxutil"
)

// ScheduleReconciler is notified after a scheduling flag changes.
type ScheduleReconciler interface {
	Reconcile(ctx context.Context) error
}

func workspaceFrom(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctxutil.GetWorkspaceID(ctx)
	if !ok {
		return uuid.Nil, ErrNoWorkspace
	}
	return id, nil
}
