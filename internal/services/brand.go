package services

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/brandlens-backend/internal/data/repos"
	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type CreateBrandInput struct {
	BrandName string `json:"brand_name" validate:"required,max=200"`
	Context   string `json:"context" validate:"max=4000"`
	Color     string `json:"color" validate:"omitempty,hexcolor"`
}

type BrandService interface {
	// List is the leaderboard: most mentioned first.
	List(ctx context.Context) ([]*types.Brand, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Brand, error)
	// CreateCompetitor registers a brand by hand, before any audit has seen it.
	CreateCompetitor(ctx context.Context, in CreateBrandInput) (*types.Brand, error)
}

type brandService struct {
	log     *logger.Logger
	repo    repos.BrandRepo
	palette func(name string) string
}

func NewBrandService(baseLog *logger.Logger, repo repos.BrandRepo, palette func(name string) string) BrandService {
	if palette == nil {
		palette = fallbackColor
	}
	return &brandService{
		log:     baseLog.With("service", "BrandService"),
		repo:    repo,
		palette: palette,
	}
}

func (s *brandService) List(ctx context.Context) ([]*types.Brand, error) {
	wsID, err := workspaceFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(dbctx.Context{Ctx: ctx}, wsID)
}

func (s *brandService) Get(ctx context.Context, id uuid.UUID) (*types.Brand, error) {
	wsID, err := workspaceFrom(ctx)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.GetByID(dbctx.Context{Ctx: ctx}, wsID, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: brand", ErrNotFound)
	}
	return b, nil
}

func (s *brandService) CreateCompetitor(ctx context.Context, in CreateBrandInput) (*types.Brand, error) {
	wsID, err := workspaceFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.BrandName = strings.Join(strings.Fields(in.BrandName), " ")
	if err := validateInput(in); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	existing, err := s.repo.GetByNameKey(dbc, wsID, types.NameKey(in.BrandName))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: brand %q already exists", ErrConflict, in.BrandName)
	}
	color := in.Color
	if color == "" {
		color = s.palette(in.BrandName)
	}
	b, err := s.repo.Create(dbc, &types.Brand{
		WorkspaceID:      wsID,
		BrandName:        in.BrandName,
		AverageSentiment: types.SentimentNeutral,
		Context:          strings.TrimSpace(in.Context),
		AssociatedLinks:  types.AssociatedLinksOrEmpty(nil),
		Color:            color,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: brand %q already exists", ErrConflict, in.BrandName)
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("competitor brand created", "workspace_id", wsID, "brand_id", b.ID)
	return b, nil
}

func fallbackColor(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(types.NameKey(name)))
	return fmt.Sprintf("#%06X", h.Sum32()&0xFFFFFF)
}
