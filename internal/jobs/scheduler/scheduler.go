// Package scheduler owns the periodic audit jobs. Reconcile rebuilds the set of
// scheduled prompts and target brands from the database; one cron entry fires
// the daily tick that audits them, one run per prompt.
package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/brandlens-backend/internal/data/repos"
	"github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/modules/audit"
	"github.com/yungbote/brandlens-backend/internal/observability"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

const (
	DefaultSpec            = "0 6 * * *"
	DefaultBulkConcurrency = 3

	kindPrompt      = "prompt"
	kindTargetBrand = "target_brand"
)

// Runner executes one audit cycle. *audit.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, req audit.RunRequest) (*domain.PromptRun, error)
}

type Deps struct {
	Log     *logger.Logger
	Metrics *observability.Metrics
	Runner  Runner

	Prompts      repos.PromptRepo
	TargetBrands repos.TargetBrandRepo

	// Spec is a standard 5-field cron expression.
	Spec            string
	Location        *time.Location
	BulkConcurrency int
}

type entryKey struct {
	kind string
	id   uuid.UUID
}

type Scheduler struct {
	log     *logger.Logger
	metrics *observability.Metrics
	runner  Runner

	prompts      repos.PromptRepo
	targetBrands repos.TargetBrandRepo

	spec            string
	bulkConcurrency int

	cron   *cron.Cron
	tickID cron.EntryID

	mu sync.Mutex
	// entries maps each scheduled entity to its workspace.
	entries map[entryKey]uuid.UUID
	baseCtx context.Context
}

func New(deps Deps) (*Scheduler, error) {
	if deps.Runner == nil || deps.Prompts == nil || deps.TargetBrands == nil {
		return nil, errors.New("scheduler: runner and repos are required")
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "Scheduler")

	spec := deps.Spec
	if spec == "" {
		spec = DefaultSpec
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("scheduler: invalid cron spec %q: %w", spec, err)
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	bulk := deps.BulkConcurrency
	if bulk <= 0 {
		bulk = DefaultBulkConcurrency
	}

	cl := cronLogger{log: log}
	s := &Scheduler{
		log:             log,
		metrics:         deps.Metrics,
		runner:          deps.Runner,
		prompts:         deps.Prompts,
		targetBrands:    deps.TargetBrands,
		spec:            spec,
		bulkConcurrency: bulk,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		entries: map[entryKey]uuid.UUID{},
		baseCtx: context.Background(),
	}
	id, err := s.cron.AddFunc(spec, func() { s.Tick(s.jobContext()) })
	if err != nil {
		return nil, fmt.Errorf("scheduler: register tick: %w", err)
	}
	s.tickID = id
	return s, nil
}

// Start runs the cron loop and loads the entities currently marked scheduled.
// Jobs run under ctx, so cancelling it aborts in-flight cycles.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()
	s.cron.Start()
	s.log.Info("scheduler started", "spec", s.spec)
	return s.Reconcile(ctx)
}

// Stop halts the cron loop. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Reconcile re-reads every active scheduled prompt and target brand and
// replaces the scheduled set. Entities no longer scheduled drop out of the next
// tick.
func (s *Scheduler) Reconcile(ctx context.Context) error {
	dbc := dbctx.Context{Ctx: ctx}
	prompts, err := s.prompts.ListScheduled(dbc, nil)
	if err != nil {
		return fmt.Errorf("list scheduled prompts: %w", err)
	}
	targets, err := s.targetBrands.ListScheduled(dbc)
	if err != nil {
		return fmt.Errorf("list scheduled target brands: %w", err)
	}

	want := make(map[entryKey]uuid.UUID, len(prompts)+len(targets))
	for _, p := range prompts {
		want[entryKey{kindPrompt, p.ID}] = p.WorkspaceID
	}
	for _, t := range targets {
		want[entryKey{kindTargetBrand, t.ID}] = t.WorkspaceID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var added, removed int
	for key := range s.entries {
		if _, ok := want[key]; !ok {
			removed++
		}
	}
	for key := range want {
		if _, ok := s.entries[key]; !ok {
			added++
		}
	}
	s.entries = want

	counts := map[string]int{kindPrompt: 0, kindTargetBrand: 0}
	for key := range s.entries {
		counts[key.kind]++
	}
	for kind, n := range counts {
		s.metrics.SetScheduledJobs(kind, n)
	}
	s.log.Info("scheduler reconciled", "added", added, "removed", removed,
		"prompts", counts[kindPrompt], "target_brands", counts[kindTargetBrand])
	return nil
}

// Scheduled reports whether an entity is part of the scheduled set.
func (s *Scheduler) Scheduled(kind string, id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[entryKey{kind, id}]
	return ok
}

func (s *Scheduler) ScheduledPrompt(id uuid.UUID) bool { return s.Scheduled(kindPrompt, id) }

func (s *Scheduler) ScheduledTargetBrand(id uuid.UUID) bool { return s.Scheduled(kindTargetBrand, id) }

func (s *Scheduler) jobContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseCtx
}

type plannedRun struct {
	workspaceID uuid.UUID
	promptID    uuid.UUID
	// targetIDs is nil when the prompt itself is scheduled: every active
	// target brand of the workspace is audited.
	targetIDs []uuid.UUID
}

// plan collapses the scheduled set into one run per prompt. A scheduled prompt
// audits all target brands; a scheduled target brand joins every active prompt
// of its workspace. Several target brands on one prompt share a single run so
// they never contend for the prompt's run lock.
func (s *Scheduler) plan(ctx context.Context) []plannedRun {
	var (
		out     []plannedRun
		targets = map[uuid.UUID][]uuid.UUID{}
	)
	s.mu.Lock()
	for key, ws := range s.entries {
		switch key.kind {
		case kindPrompt:
			out = append(out, plannedRun{workspaceID: ws, promptID: key.id})
		case kindTargetBrand:
			targets[ws] = append(targets[ws], key.id)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].promptID[:], out[j].promptID[:]) < 0 })

	covered := make(map[uuid.UUID]bool, len(out))
	for _, r := range out {
		covered[r.promptID] = true
	}

	workspaces := make([]uuid.UUID, 0, len(targets))
	for ws := range targets {
		workspaces = append(workspaces, ws)
	}
	sortIDs(workspaces)
	for _, ws := range workspaces {
		ids := targets[ws]
		sortIDs(ids)
		active, err := s.prompts.List(dbctx.Context{Ctx: ctx}, ws, true)
		if err != nil {
			s.log.Error("list prompts for scheduled target brands failed", "workspace_id", ws, "error", err)
			continue
		}
		for _, p := range active {
			if covered[p.ID] {
				continue
			}
			out = append(out, plannedRun{workspaceID: ws, promptID: p.ID, targetIDs: append([]uuid.UUID(nil), ids...)})
		}
	}
	return out
}

// Tick runs one scheduled cycle: every planned prompt once, a few at a time.
func (s *Scheduler) Tick(ctx context.Context) {
	runs := s.plan(ctx)
	if len(runs) == 0 {
		return
	}
	s.log.Info("scheduled tick started", "runs", len(runs))

	var (
		g      errgroup.Group
		failed int
		mu     sync.Mutex
	)
	g.SetLimit(s.bulkConcurrency)
	for _, r := range runs {
		r := r
		g.Go(func() error {
			_, err := s.runner.Run(ctx, audit.RunRequest{
				WorkspaceID:    r.workspaceID,
				PromptID:       r.promptID,
				Trigger:        domain.TriggerScheduled,
				TargetBrandIDs: r.targetIDs,
			})
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				s.logRunError(err, "prompt_id", r.promptID, "target_brand_ids", r.targetIDs)
			}
			return nil
		})
	}
	_ = g.Wait()
	s.log.Info("scheduled tick finished", "runs", len(runs), "failed", failed)
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
}

func (s *Scheduler) logRunError(err error, kv ...interface{}) {
	kv = append(kv, "error", err)
	if errors.Is(err, audit.ErrRunInProgress) {
		s.log.Info("scheduled run skipped, cycle already in progress", kv...)
		return
	}
	s.log.Error("scheduled run failed", kv...)
	observability.CaptureError(err, map[string]string{"component": "scheduler"})
}

// RunPrompt triggers one immediate cycle for a prompt, bypassing the schedule.
func (s *Scheduler) RunPrompt(ctx context.Context, workspaceID, promptID uuid.UUID, trigger domain.RunTrigger) (*domain.PromptRun, error) {
	return s.runner.Run(ctx, audit.RunRequest{
		WorkspaceID: workspaceID,
		PromptID:    promptID,
		Trigger:     trigger,
	})
}

type BulkResult struct {
	PromptID uuid.UUID         `json:"prompt_id"`
	Run      *domain.PromptRun `json:"run,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// RunAllScheduled runs every scheduled prompt of a workspace now, a few at a
// time, and reports each prompt's outcome in listing order.
func (s *Scheduler) RunAllScheduled(ctx context.Context, workspaceID uuid.UUID) ([]BulkResult, error) {
	prompts, err := s.prompts.ListScheduled(dbctx.Context{Ctx: ctx}, &workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list scheduled prompts: %w", err)
	}
	results := make([]BulkResult, len(prompts))
	var g errgroup.Group
	g.SetLimit(s.bulkConcurrency)
	for i, p := range prompts {
		i, promptID := i, p.ID
		g.Go(func() error {
			res := BulkResult{PromptID: promptID}
			run, err := s.RunPrompt(ctx, workspaceID, promptID, domain.TriggerBulk)
			if err != nil {
				res.Error = err.Error()
			}
			res.Run = run
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
	observability.CaptureError(err, map[string]string{"component": "cron"})
}
