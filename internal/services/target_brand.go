package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/brandlens-backend/internal/data/repos"
	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type CreateTargetBrandInput struct {
	BrandName       string `json:"brand_name" validate:"required,max=200"`
	OfficialURL     string `json:"official_url" validate:"required,max=2048"`
	ActualBrandName string `json:"actual_brand_name" validate:"max=200"`
	BrandType       string `json:"brand_type" validate:"max=80"`
	IsScheduled     bool   `json:"is_scheduled"`
}

// UpdateTargetBrandInput only toggles flags; names and urls are immutable.
type UpdateTargetBrandInput struct {
	IsActive    *bool `json:"is_active"`
	IsScheduled *bool `json:"is_scheduled"`
}

type TargetBrandService interface {
	Create(ctx context.Context, in CreateTargetBrandInput) (*types.TargetBrand, error)
	List(ctx context.Context, activeOnly bool) ([]*types.TargetBrand, error)
	Get(ctx context.Context, id uuid.UUID) (*types.TargetBrand, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateTargetBrandInput) (*types.TargetBrand, error)
	SetScheduled(ctx context.Context, id uuid.UUID, scheduled bool) (*types.TargetBrand, error)
}

type targetBrandService struct {
	log        *logger.Logger
	repo       repos.TargetBrandRepo
	reconciler ScheduleReconciler
}

func NewTargetBrandService(baseLog *logger.Logger, repo repos.TargetBrandRepo, reconciler ScheduleReconciler) TargetBrandService {
	return &targetBrandService{
		log:        baseLog.With("service", "TargetBrandService"),
		repo:       repo,
		reconciler: reconciler,
	}
}

func (s *targetBrandService) Create(ctx context.Context, in CreateTargetBrandInput) (*types.TargetBrand, error) {
	wsID, err := workspaceFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.BrandName = strings.Join(strings.Fields(in.BrandName), " ")
	in.OfficialURL = strings.TrimSpace(in.OfficialURL)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	existing, err := s.repo.GetByNameKey(dbc, wsID, types.NameKey(in.BrandName))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: target brand %q already exists", ErrConflict, in.BrandName)
	}
	tb, err := s.repo.Create(dbc, &types.TargetBrand{
		WorkspaceID:     wsID,
		BrandName:       in.BrandName,
		OfficialURL:     in.OfficialURL,
		ActualBrandName: strings.TrimSpace(in.ActualBrandName),
		BrandType:       strings.TrimSpace(in.BrandType),
		IsActive:        true,
		IsScheduled:     in.IsScheduled,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: target brand %q already exists", ErrConflict, in.BrandName)
	}
	if err != nil {
		return nil, err
	}
	if tb.IsScheduled {
		if err := s.reconcile(ctx); err != nil {
			return nil, err
		}
	}
	return tb, nil
}

func (s *targetBrandService) List(ctx context.Context, activeOnly bool) ([]*types.TargetBrand, error) {
	wsID, err := workspaceFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.List(dbctx.Context{Ctx: ctx}, wsID, activeOnly)
}

func (s *targetBrandService) Get(ctx context.Context, id uuid.UUID) (*types.TargetBrand, error) {
	wsID, err := workspaceFrom(ctx)
	if err != nil {
		return nil, err
	}
	tb, err := s.repo.GetByID(dbctx.Context{Ctx: ctx}, wsID, id)
	if err != nil {
		return nil, err
	}
	if tb == nil {
		return nil, fmt.Errorf("%w: target brand", ErrNotFound)
	}
	return tb, nil
}

func (s *targetBrandService) Update(ctx context.Context, id uuid.UUID, in UpdateTargetBrandInput) (*types.TargetBrand, error) {
	wsID, err := workspaceFrom(ctx)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.IsScheduled != nil {
		updates["is_scheduled"] = *in.IsScheduled
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	ok, err := s.repo.UpdateFields(dbctx.Context{Ctx: ctx}, wsID, id, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: target brand", ErrNotFound)
	}
	if err := s.reconcile(ctx); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *targetBrandService) SetScheduled(ctx context.Context, id uuid.UUID, scheduled bool) (*types.TargetBrand, error) {
	return s.Update(ctx, id, UpdateTargetBrandInput{IsScheduled: &scheduled})
}

func (s *targetBrandService) reconcile(ctx context.Context) error {
	if s.reconciler == nil {
		return nil
	}
	if err := s.reconciler.Reconcile(ctx); err != nil {
		s.log.Error("scheduler reconcile failed", "error", err)
		return fmt.Errorf("%w: %v", ErrScheduleNotApplied, err)
	}
	return nil
}
