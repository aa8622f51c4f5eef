package brand

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type TargetBrandRepo interface {
	Create(dbc dbctx.Context, tb *types.TargetBrand) (*types.TargetBrand, error)
	GetByID(dbc dbctx.Context, workspaceID, id uuid.UUID) (*types.TargetBrand, error)
	GetByNameKey(dbc dbctx.Context, workspaceID uuid.UUID, nameKey string) (*types.TargetBrand, error)
	List(dbc dbctx.Context, workspaceID uuid.UUID, activeOnly bool) ([]*types.TargetBrand, error)
	// ListActiveNames returns the brand names of active target brands, optionally
	// narrowed to ids. An empty ids slice means every active target brand.
	ListActiveNames(dbc dbctx.Context, workspaceID uuid.UUID, ids []uuid.UUID) ([]string, error)
	// ListScheduled returns active scheduled target brands of active workspaces.
	ListScheduled(dbc dbctx.Context) ([]*types.TargetBrand, error)
	UpdateFields(dbc dbctx.Context, workspaceID, id uuid.UUID, updates map[string]interface{}) (bool, error)
}

type targetBrandRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTargetBrandRepo(db *gorm.DB, baseLog *logger.Logger) TargetBrandRepo {
	return &targetBrandRepo{
		db:  db,
		log: baseLog.With("repo", "TargetBrandRepo"),
	}
}

func (r *targetBrandRepo) Create(dbc dbctx.Context, tb *types.TargetBrand) (*types.TargetBrand, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if tb.NameKey == "" {
		tb.NameKey = types.NameKey(tb.BrandName)
	}
	if err := transaction.WithContext(dbc.Ctx).Create(tb).Error; err != nil {
		return nil, err
	}
	return tb, nil
}

func (r *targetBrandRepo) GetByID(dbc dbctx.Context, workspaceID, id uuid.UUID) (*types.TargetBrand, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if workspaceID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var tb types.TargetBrand
	if err := transaction.WithContext(dbc.Ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Limit(1).
		Find(&tb).Error; err != nil {
		return nil, err
	}
	if tb.ID == uuid.Nil {
		return nil, nil
	}
	return &tb, nil
}

func (r *targetBrandRepo) GetByNameKey(dbc dbctx.Context, workspaceID uuid.UUID, nameKey string) (*types.TargetBrand, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var tb types.TargetBrand
	if err := transaction.WithContext(dbc.Ctx).
		Where("workspace_id = ? AND name_key = ?", workspaceID, nameKey).
		Limit(1).
		Find(&tb).Error; err != nil {
		return nil, err
	}
	if tb.ID == uuid.Nil {
		return nil, nil
	}
	return &tb, nil
}

func (r *targetBrandRepo) List(dbc dbctx.Context, workspaceID uuid.UUID, activeOnly bool) ([]*types.TargetBrand, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.TargetBrand
	q := transaction.WithContext(dbc.Ctx).Where("workspace_id = ?", workspaceID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Order("brand_name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *targetBrandRepo) ListActiveNames(dbc dbctx.Context, workspaceID uuid.UUID, ids []uuid.UUID) ([]string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var names []string
	q := transaction.WithContext(dbc.Ctx).
		Model(&types.TargetBrand{}).
		Where("workspace_id = ? AND is_active = ?", workspaceID, true)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	if err := q.Order("brand_name ASC").Pluck("brand_name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

func (r *targetBrandRepo) ListScheduled(dbc dbctx.Context) ([]*types.TargetBrand, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.TargetBrand
	activeWorkspaces := transaction.Model(&types.Workspace{}).Select("id").Where("is_active = ?", true)
	if err := transaction.WithContext(dbc.Ctx).
		Where("is_active = ? AND is_scheduled = ?", true, true).
		Where("workspace_id IN (?)", activeWorkspaces).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *targetBrandRepo) UpdateFields(dbc dbctx.Context, workspaceID, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return false, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.TargetBrand{}).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
