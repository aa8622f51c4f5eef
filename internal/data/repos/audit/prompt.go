package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type PromptRepo interface {
	Create(dbc dbctx.Context, p *types.Prompt) (*types.Prompt, error)
	GetByID(dbc dbctx.Context, workspaceID, id uuid.UUID) (*types.Prompt, error)
	List(dbc dbctx.Context, workspaceID uuid.UUID, activeOnly bool) ([]*types.Prompt, error)
	// ListScheduled returns active scheduled prompts of active workspaces. A nil
	// workspaceID means every workspace.
	ListScheduled(dbc dbctx.Context, workspaceID *uuid.UUID) ([]*types.Prompt, error)
	UpdateFields(dbc dbctx.Context, workspaceID, id uuid.UUID, updates map[string]interface{}) (bool, error)
	TouchLastRun(dbc dbctx.Context, workspaceID, id uuid.UUID, at time.Time) error
}

type promptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromptRepo(db *gorm.DB, baseLog *logger.Logger) PromptRepo {
	return &promptRepo{
		db:  db,
		log: baseLog.With("repo", "PromptRepo"),
	}
}

func (r *promptRepo) Create(dbc dbctx.Context, p *types.Prompt) (*types.Prompt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *promptRepo) GetByID(dbc dbctx.Context, workspaceID, id uuid.UUID) (*types.Prompt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if workspaceID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var p types.Prompt
	if err := transaction.WithContext(dbc.Ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Limit(1).
		Find(&p).Error; err != nil {
		return nil, err
	}
	if p.ID == uuid.Nil {
		return nil, nil
	}
	return &p, nil
}

func (r *promptRepo) List(dbc dbctx.Context, workspaceID uuid.UUID, activeOnly bool) ([]*types.Prompt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Prompt
	q := transaction.WithContext(dbc.Ctx).Where("workspace_id = ?", workspaceID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *promptRepo) ListScheduled(dbc dbctx.Context, workspaceID *uuid.UUID) ([]*types.Prompt, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Prompt
	activeWorkspaces := transaction.Model(&types.Workspace{}).Select("id").Where("is_active = ?", true)
	q := transaction.WithContext(dbc.Ctx).
		Where("is_active = ? AND is_scheduled = ?", true, true).
		Where("workspace_id IN (?)", activeWorkspaces)
	if workspaceID != nil {
		q = q.Where("workspace_id = ?", *workspaceID)
	}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *promptRepo) UpdateFields(dbc dbctx.Context, workspaceID, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return false, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Prompt{}).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *promptRepo) TouchLastRun(dbc dbctx.Context, workspaceID, id uuid.UUID, at time.Time) error {
	_, err := r.UpdateFields(dbc, workspaceID, id, map[string]interface{}{"last_run_at": at})
	return err
}
