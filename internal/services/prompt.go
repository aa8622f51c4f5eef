package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/brandlens-backend/internal/data/repos"
	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

const (
	defaultRunListLimit = 20
	maxRunListLimit     = 200
)

type CreatePromptInput struct {
	PromptText  string   `json:"prompt_text" validate:"required,max=4000"`
	Topic       string   `json:"topic" validate:"max=200"`
	Tags        []string `json:"tags" validate:"max=50,dive,required,max=60"`
	IsScheduled bool     `json:"is_scheduled"`
}

type UpdatePromptInput struct {
	PromptText  *string   `json:"prompt_text" validate:"omitnil,min=1,max=4000"`
	Topic       *string   `json:"topic" validate:"omitnil,max=200"`
	Tags        *[]string `json:"tags" validate:"omitnil,max=50,dive,required,max=60"`
	IsActive    *bool     `json:"is_active"`
	IsScheduled *bool     `json:"is_scheduled"`
}

type PromptService interface {
	Create(ctx context.Context, in CreatePromptInput) (*types.Prompt, error)
	List(ctx context.Context, activeOnly bool) ([]*types.Prompt, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Prompt, error)
	Update(ctx context.Context, id uuid.UUID, in UpdatePromptInput) (*types.Prompt, error)
	SetScheduled(ctx context.Context, id uuid.UUID, scheduled bool) (*types.Prompt, error)

	ListRuns(ctx context.Context, promptID uuid.UUID, limit int) ([]*types.PromptRun, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*types.PromptRun, error)
	ListRunResponses(ctx context.Context, runID uuid.UUID) ([]*types.ModelResponse, error)
}

type promptService struct {
	log        *logger.Logger
	prompts    repos.PromptRepo
	runs       repos.PromptRunRepo
	responses  repos.ModelResponseRepo
	reconciler ScheduleReconciler
}

func NewPromptService(baseLog *logger.Logger, prompts repos.PromptRepo, runs repos.PromptRunRepo, responses repos.ModelResponseRepo, reconciler ScheduleReconciler) PromptService {
	return &promptService{
		log:        baseLog.With("service", "PromptService"),
		prompts:    prompts,
		runs:       runs,
		responses:  responses,
		reconciler: reconciler,
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}

func (s *promptService) Create(ctx context.Context, in CreatePromptInput) (*types.Prompt, error) {
	wsID, err := workspaceFrom(ctx)
	if err != nil {
		return nil, err
	}
	in.PromptText = strings.TrimSpace(in.PromptText)
	in.Topic = strings.TrimSpace(in.Topic)
	in.Tags = cleanTags(in.Tags)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	p, err := s.prompts.Create(dbctx.Context{Ctx: ctx}, &types.Prompt{
		WorkspaceID: wsID,
		PromptText:  in.PromptText,
		Topic:       in.Topic,
		Tags:        in.Tags,
		IsActive:    true,
		IsScheduled: in.IsScheduled,
	})
	if err != nil {
		return nil, err
	}
	if p.IsScheduled {
		if err := s.reconcile(ctx); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *promptService) List(ctx context.Context, activeOnly bool) ([]*types.Prompt, error) {
	wsID, err := workspaceFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.prompts.List(dbctx.Context{Ctx: ctx}, wsID, activeOnly)
}

func (s *promptService) Get(ctx context.Context, id uuid.UUID) (*types.Prompt, error) {
	wsID, err := workspaceFrom(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.prompts.GetByID(dbctx.Context{Ctx: ctx}, wsID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: prompt", ErrNotFound)
	}
	return p, nil
}

func (s *promptService) Update(ctx context.Context, id uuid.UUID, in UpdatePromptInput) (*types.Prompt, error) {
	wsID, err := workspaceFrom(ctx)
	if err != nil {
		return nil, err
	}
	if in.PromptText != nil {
		v := strings.TrimSpace(*in.PromptText)
		in.PromptText = &v
	}
	if in.Tags != nil {
		v := cleanTags(*in.Tags)
		in.Tags = &v
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.PromptText != nil {
		updates["prompt_text"] = *in.PromptText
	}
	if in.Topic != nil {
		updates["topic"] = strings.TrimSpace(*in.Topic)
	}
	if in.Tags != nil {
		updates["tags"] = types.StringsOrEmpty(*in.Tags)
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.IsScheduled != nil {
		updates["is_scheduled"] = *in.IsScheduled
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	ok, err := s.prompts.UpdateFields(dbctx.Context{Ctx: ctx}, wsID, id, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: prompt", ErrNotFound)
	}
	if in.IsActive != nil || in.IsScheduled != nil {
		if err := s.reconcile(ctx); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

func (s *promptService) SetScheduled(ctx context.Context, id uuid.UUID, scheduled bool) (*types.Prompt, error) {
	return s.Update(ctx, id, UpdatePromptInput{IsScheduled: &scheduled})
}

func (s *promptService) ListRuns(ctx context.Context, promptID uuid.UUID, limit int) ([]*types.PromptRun, error) {
	if _, err := s.Get(ctx, promptID); err != nil {
		return nil, err
	}
	wsID, _ := workspaceFrom(ctx)
	switch {
	case limit <= 0:
		limit = defaultRunListLimit
	case limit > maxRunListLimit:
		limit = maxRunListLimit
	}
	return s.runs.ListByPrompt(dbctx.Context{Ctx: ctx}, wsID, promptID, limit)
}

func (s *promptService) GetRun(ctx context.Context, runID uuid.UUID) (*types.PromptRun, error) {
	wsID, err := workspaceFrom(ctx)
	if err != nil {
		return nil, err
	}
	run, err := s.runs.GetByID(dbctx.Context{Ctx: ctx}, wsID, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("%w: prompt run", ErrNotFound)
	}
	return run, nil
}

func (s *promptService) ListRunResponses(ctx context.Context, runID uuid.UUID) ([]*types.ModelResponse, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return s.responses.ListByRun(dbctx.Context{Ctx: ctx}, run.WorkspaceID, run.ID)
}

func (s *promptService) reconcile(ctx context.Context) error {
	if s.reconciler == nil {
		return nil
	}
	if err := s.reconciler.Reconcile(ctx); err != nil {
		s.log.Error("scheduler reconcile failed", "error", err)
		return fmt.Errorf("%w: %v", ErrScheduleNotApplied, err)
	}
	return nil
}
