package audit

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

// ModelResponseRepo is append-only.
type ModelResponseRepo interface {
	Create(dbc dbctx.Context, rows []*types.ModelResponse) ([]*types.ModelResponse, error)
	ListByRun(dbc dbctx.Context, workspaceID, runID uuid.UUID) ([]*types.ModelResponse, error)
	CountByPrompt(dbc dbctx.Context, workspaceID, promptID uuid.UUID) (int64, error)
}

type modelResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewModelResponseRepo(db *gorm.DB, baseLog *logger.Logger) ModelResponseRepo {
	return &modelResponseRepo{
		db:  db,
		log: baseLog.With("repo", "ModelResponseRepo"),
	}
}

func (r *modelResponseRepo) Create(dbc dbctx.Context, rows []*types.ModelResponse) ([]*types.ModelResponse, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.ModelResponse{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *modelResponseRepo) ListByRun(dbc dbctx.Context, workspaceID, runID uuid.UUID) ([]*types.ModelResponse, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ModelResponse
	if err := transaction.WithContext(dbc.Ctx).
		Where("workspace_id = ? AND prompt_run_id = ?", workspaceID, runID).
		Order("created_at ASC").
		Order("backend_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *modelResponseRepo) CountByPrompt(dbc dbctx.Context, workspaceID, promptID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.ModelResponse{}).
		Where("workspace_id = ? AND prompt_id = ?", workspaceID, promptID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
