package brand

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

// Observation is what one extraction reported about one brand.
type Observation struct {
	BrandName       string
	MentionCount    int
	Sentiment       types.Sentiment
	Rank            *int
	ProminenceScore int
	Context         string
	Links           []types.AssociatedLink
	IsTarget        bool
	PromptID        *uuid.UUID
	SeenAt          time.Time
	// Color is only used when the brand is created.
	Color string
}

type BrandRepo interface {
	Create(dbc dbctx.Context, b *types.Brand) (*types.Brand, error)
	GetByID(dbc dbctx.Context, workspaceID, id uuid.UUID) (*types.Brand, error)
	GetByNameKey(dbc dbctx.Context, workspaceID uuid.UUID, nameKey string) (*types.Brand, error)
	List(dbc dbctx.Context, workspaceID uuid.UUID) ([]*types.Brand, error)
	// Upsert applies one observation atomically: create the brand or add to its
	// mention count and overwrite the latest-observation fields. A non-null rank
	// is first cleared from any other brand in the workspace.
	Upsert(dbc dbctx.Context, workspaceID uuid.UUID, obs Observation) (*types.Brand, bool, error)
}

type brandRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBrandRepo(db *gorm.DB, baseLog *logger.Logger) BrandRepo {
	return &brandRepo{
		db:  db,
		log: baseLog.With("repo", "BrandRepo"),
	}
}

func (r *brandRepo) Create(dbc dbctx.Context, b *types.Brand) (*types.Brand, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if b.NameKey == "" {
		b.NameKey = types.NameKey(b.BrandName)
	}
	if err := transaction.WithContext(dbc.Ctx).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (r *brandRepo) GetByID(dbc dbctx.Context, workspaceID, id uuid.UUID) (*types.Brand, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if workspaceID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var b types.Brand
	if err := transaction.WithContext(dbc.Ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		Limit(1).
		Find(&b).Error; err != nil {
		return nil, err
	}
	if b.ID == uuid.Nil {
		return nil, nil
	}
	return &b, nil
}

func (r *brandRepo) GetByNameKey(dbc dbctx.Context, workspaceID uuid.UUID, nameKey string) (*types.Brand, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var b types.Brand
	if err := transaction.WithContext(dbc.Ctx).
		Where("workspace_id = ? AND name_key = ?", workspaceID, nameKey).
		Limit(1).
		Find(&b).Error; err != nil {
		return nil, err
	}
	if b.ID == uuid.Nil {
		return nil, nil
	}
	return &b, nil
}

func (r *brandRepo) List(dbc dbctx.Context, workspaceID uuid.UUID) ([]*types.Brand, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Brand
	if err := transaction.WithContext(dbc.Ctx).
		Where("workspace_id = ?", workspaceID).
		Order("mentions DESC").
		Order("brand_name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *brandRepo) Upsert(dbc dbctx.Context, workspaceID uuid.UUID, obs Observation) (*types.Brand, bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	nameKey := types.NameKey(obs.BrandName)
	if workspaceID == uuid.Nil || nameKey == "" {
		return nil, false, fmt.Errorf("upsert brand: workspace and brand name are required")
	}

	var (
		out     *types.Brand
		created bool
	)
	apply := func(txx *gorm.DB) error {
		out, created = nil, false
		if obs.Rank != nil {
			if err := txx.Model(&types.Brand{}).
				Where("workspace_id = ? AND last_rank = ? AND name_key <> ?", workspaceID, *obs.Rank, nameKey).
				Update("last_rank", nil).Error; err != nil {
				return fmt.Errorf("clear rank %d: %w", *obs.Rank, err)
			}
		}

		var existing types.Brand
		if err := txx.Where("workspace_id = ? AND name_key = ?", workspaceID, nameKey).
			Limit(1).
			Find(&existing).Error; err != nil {
			return err
		}

		links := types.AssociatedLinksOrEmpty(obs.Links)
		if existing.ID == uuid.Nil {
			seen := obs.SeenAt
			b := &types.Brand{
				WorkspaceID:      workspaceID,
				BrandName:        obs.BrandName,
				NameKey:          nameKey,
				Mentions:         obs.MentionCount,
				AverageSentiment: obs.Sentiment,
				LastRank:         obs.Rank,
				ProminenceScore:  obs.ProminenceScore,
				Context:          obs.Context,
				AssociatedLinks:  links,
				Color:            obs.Color,
				IsTarget:         obs.IsTarget,
				LastSeenAt:       &seen,
				LastPromptID:     obs.PromptID,
			}
			if err := txx.Create(b).Error; err != nil {
				return err
			}
			out, created = b, true
			return nil
		}

		updates := map[string]interface{}{
			"mentions":         gorm.Expr("mentions + ?", obs.MentionCount),
			"last_rank":        obs.Rank,
			"prominence_score": obs.ProminenceScore,
			"context":          obs.Context,
			"associated_links": links,
			"last_seen_at":     obs.SeenAt,
		}
		if obs.Sentiment != "" {
			updates["average_sentiment"] = obs.Sentiment
		}
		if obs.IsTarget {
			updates["is_target"] = true
		}
		if obs.PromptID != nil {
			updates["last_prompt_id"] = *obs.PromptID
		}
		if err := txx.Model(&types.Brand{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return err
		}
		var reloaded types.Brand
		if err := txx.Where("id = ?", existing.ID).Limit(1).Find(&reloaded).Error; err != nil {
			return err
		}
		out = &reloaded
		return nil
	}

	err := transaction.WithContext(dbc.Ctx).Transaction(apply)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A concurrent cycle created the brand or took the rank between our read
		// and write; the second attempt sees its row.
		r.log.Debug("brand upsert conflict, retrying", "workspace_id", workspaceID, "brand", obs.BrandName)
		err = transaction.WithContext(dbc.Ctx).Transaction(apply)
	}
	if err != nil {
		return nil, false, fmt.Errorf("upsert brand %q: %w", obs.BrandName, err)
	}
	return out, created, nil
}
