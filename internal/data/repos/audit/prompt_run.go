package audit

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type PromptRunRepo interface {
	Create(dbc dbctx.Context, run *types.PromptRun) (*types.PromptRun, error)
	GetByID(dbc dbctx.Context, workspaceID, id uuid.UUID) (*types.PromptRun, error)
	ListByPrompt(dbc dbctx.Context, workspaceID, promptID uuid.UUID, limit int) ([]*types.PromptRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type promptRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromptRunRepo(db *gorm.DB, baseLog *logger.Logger) PromptRunRepo {
	return &promptRunRepo{
		db:  db,
		log: baseLog.With("repo", "PromptRunRepo"),
	}
}

func (r *promptRunRepo) Create(dbc dbctx.Context, run *types.PromptRun) (*types.PromptRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *promptRunRepo) GetByID(dbc dbctx.Context, workspaceID, id uuid.UUID) (*types.PromptRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if workspaceID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var run types.PromptRun
	if err := transaction.WithContext(dbc.Ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Limit(1).
		Find(&run).Error; err != nil {
		return nil, err
	}
	if run.ID == uuid.Nil {
		return nil, nil
	}
	return &run, nil
}

func (r *promptRunRepo) ListByPrompt(dbc dbctx.Context, workspaceID, promptID uuid.UUID, limit int) ([]*types.PromptRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*types.PromptRun
	if err := transaction.WithContext(dbc.Ctx).
		Where("workspace_id = ? AND prompt_id = ?", workspaceID, promptID).
		Order("started_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *promptRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.PromptRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}
