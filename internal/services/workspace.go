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

type CreateWorkspaceInput struct {
	Name string `json:"name" validate:"required,max=120"`
}

type WorkspaceService interface {
	Create(ctx context.Context, in CreateWorkspaceInput) (*types.Workspace, error)
	List(ctx context.Context) ([]*types.Workspace, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Workspace, error)
	// Resolve returns the workspace only if it exists and is active.
	Resolve(ctx context.Context, id uuid.UUID) (*types.Workspace, error)
}

type workspaceService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.WorkspaceRepo
}

func NewWorkspaceService(db *gorm.DB, baseLog *logger.Logger, repo repos.WorkspaceRepo) WorkspaceService {
	return &workspaceService{
		db:   db,
		log:  baseLog.With("service", "WorkspaceService"),
		repo: repo,
	}
}

// Create makes the first workspace the default one.
func (s *workspaceService) Create(ctx context.Context, in CreateWorkspaceInput) (*types.Workspace, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	var created *types.Workspace
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := s.repo.GetByName(dbc, in.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: workspace %q already exists", ErrConflict, in.Name)
		}
		n, err := s.repo.Count(dbc)
		if err != nil {
			return err
		}
		created, err = s.repo.Create(dbc, &types.Workspace{
			Name:      in.Name,
			IsActive:  true,
			IsDefault: n == 0,
		})
		return err
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("%w: workspace %q already exists", ErrConflict, in.Name)
	}
	if err != nil {
		return nil, err
	}
	s.log.Info("workspace created", "workspace_id", created.ID, "default", created.IsDefault)
	return created, nil
}

func (s *workspaceService) List(ctx context.Context) ([]*types.Workspace, error) {
	return s.repo.List(dbctx.Context{Ctx: ctx})
}

func (s *workspaceService) Get(ctx context.Context, id uuid.UUID) (*types.Workspace, error) {
	ws, err := s.repo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, fmt.Errorf("%w: workspace", ErrNotFound)
	}
	return ws, nil
}

func (s *workspaceService) Resolve(ctx context.Context, id uuid.UUID) (*types.Workspace, error) {
	ws, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ws.IsActive {
		return nil, fmt.Errorf("%w: workspace is inactive", ErrNotFound)
	}
	return ws, nil
}
