package tenancy

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type WorkspaceRepo interface {
	Create(dbc dbctx.Context, ws *types.Workspace) (*types.Workspace, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Workspace, error)
	GetByName(dbc dbctx.Context, name string) (*types.Workspace, error)
	GetDefault(dbc dbctx.Context) (*types.Workspace, error)
	List(dbc dbctx.Context) ([]*types.Workspace, error)
	Count(dbc dbctx.Context) (int64, error)
}

type workspaceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkspaceRepo(db *gorm.DB, baseLog *logger.Logger) WorkspaceRepo {
	return &workspaceRepo{
		db:  db,
		log: baseLog.With("repo", "WorkspaceRepo"),
	}
}

func (r *workspaceRepo) Create(dbc dbctx.Context, ws *types.Workspace) (*types.Workspace, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(ws).Error; err != nil {
		return nil, err
	}
	return ws, nil
}

func (r *workspaceRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Workspace, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var ws types.Workspace
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&ws).Error; err != nil {
		return nil, err
	}
	if ws.ID == uuid.Nil {
		return nil, nil
	}
	return &ws, nil
}

func (r *workspaceRepo) GetByName(dbc dbctx.Context, name string) (*types.Workspace, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ws types.Workspace
	if err := transaction.WithContext(dbc.Ctx).
		Where("name = ?", name).
		Limit(1).
		Find(&ws).Error; err != nil {
		return nil, err
	}
	if ws.ID == uuid.Nil {
		return nil, nil
	}
	return &ws, nil
}

func (r *workspaceRepo) GetDefault(dbc dbctx.Context) (*types.Workspace, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ws types.Workspace
	if err := transaction.WithContext(dbc.Ctx).
		Where("is_default = ?", true).
		Limit(1).
		Find(&ws).Error; err != nil {
		return nil, err
	}
	if ws.ID == uuid.Nil {
		return nil, nil
	}
	return &ws, nil
}

func (r *workspaceRepo) List(dbc dbctx.Context) ([]*types.Workspace, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Workspace
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *workspaceRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).Model(&types.Workspace{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
