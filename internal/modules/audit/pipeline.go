package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/brandlens-backend/internal/clients/llm"
	"github.com/yungbote/brandlens-backend/internal/data/repos"
	"github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/observability"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/pkg/httpx"
	"github.com/yungbote/brandlens-backend/internal/platform/lock"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
	"github.com/yungbote/brandlens-backend/internal/prompts"
)

var (
	ErrRunInProgress  = errors.New("an audit run for this prompt is already in progress")
	ErrPromptNotFound = errors.New("prompt not found")
	ErrPromptInactive = errors.New("prompt is inactive")
)

const (
	DefaultCallTimeout = 45 * time.Second
	DefaultLockTTL     = 10 * time.Minute

	maxRunErrorLen = 2000
)

type RunRequest struct {
	WorkspaceID uuid.UUID
	PromptID    uuid.UUID
	Trigger     domain.RunTrigger
	// TargetBrandIDs narrows the target list; empty means every active target brand.
	TargetBrandIDs []uuid.UUID
}

type PipelineDeps struct {
	Log     *logger.Logger
	Metrics *observability.Metrics
	Locker  lock.Locker
	LLM     *llm.Set

	Prompts      repos.PromptRepo
	TargetBrands repos.TargetBrandRepo
	Brands       repos.BrandRepo
	Runs         repos.PromptRunRepo
	Responses    repos.ModelResponseRepo

	CallTimeout time.Duration
	LockTTL     time.Duration
	Now         func() time.Time
}

type Pipeline struct {
	log     *logger.Logger
	metrics *observability.Metrics
	locker  lock.Locker
	llm     *llm.Set
	merger  *Merger

	prompts      repos.PromptRepo
	targetBrands repos.TargetBrandRepo
	runs         repos.PromptRunRepo
	responses    repos.ModelResponseRepo

	callTimeout time.Duration
	lockTTL     time.Duration
	now         func() time.Time
}

func NewPipeline(deps PipelineDeps) *Pipeline {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	set := deps.LLM
	if set == nil {
		set = &llm.Set{}
	}
	locker := deps.Locker
	if locker == nil {
		locker = lock.NewMemoryLocker()
	}
	p := &Pipeline{
		log:          log.With("module", "AuditPipeline"),
		metrics:      deps.Metrics,
		locker:       locker,
		llm:          set,
		merger:       NewMerger(deps.Brands, log, deps.Metrics),
		prompts:      deps.Prompts,
		targetBrands: deps.TargetBrands,
		runs:         deps.Runs,
		responses:    deps.Responses,
		callTimeout:  deps.CallTimeout,
		lockTTL:      deps.LockTTL,
		now:          deps.Now,
	}
	if p.callTimeout <= 0 {
		p.callTimeout = DefaultCallTimeout
	}
	if p.lockTTL <= 0 {
		p.lockTTL = DefaultLockTTL
	}
	if p.now == nil {
		p.now = func() time.Time { return time.Now().UTC() }
	}
	return p
}

func LockKey(promptID uuid.UUID) string { return "audit:prompt:" + promptID.String() }

type backendOutcome struct {
	ok     bool
	report MergeReport
	err    error
}

// Run executes one audit cycle for a prompt: ask every chat backend, extract
// and validate each transcript, merge the results into Brand records, and
// record every LLM call. The returned PromptRun carries the final status.
func (p *Pipeline) Run(ctx context.Context, req RunRequest) (*domain.PromptRun, error) {
	if req.Trigger == "" {
		req.Trigger = domain.TriggerManual
	}
	ctx, span := observability.Tracer().Start(ctx, "audit.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("workspace_id", req.WorkspaceID.String()),
		attribute.String("prompt_id", req.PromptID.String()),
		attribute.String("trigger", string(req.Trigger)),
	)

	release, err := p.locker.Acquire(ctx, LockKey(req.PromptID), p.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrHeld) {
			p.metrics.IncRunRejected()
			return nil, ErrRunInProgress
		}
		span.RecordError(err)
		return nil, err
	}
	defer release()

	dbc := dbctx.Context{Ctx: ctx}
	prompt, err := p.prompts.GetByID(dbc, req.WorkspaceID, req.PromptID)
	if err != nil {
		return nil, err
	}
	if prompt == nil {
		return nil, ErrPromptNotFound
	}
	if !prompt.IsActive {
		return nil, ErrPromptInactive
	}
	targets, err := p.targetBrands.ListActiveNames(dbc, req.WorkspaceID, req.TargetBrandIDs)
	if err != nil {
		return nil, fmt.Errorf("load target brands: %w", err)
	}

	run, err := p.runs.Create(dbc, &domain.PromptRun{
		WorkspaceID: req.WorkspaceID,
		PromptID:    prompt.ID,
		Trigger:     req.Trigger,
		Status:      domain.RunRunning,
		StartedAt:   p.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("create prompt run: %w", err)
	}
	log := p.log.With("workspace_id", req.WorkspaceID, "prompt_id", prompt.ID, "run_id", run.ID)
	log.Info("audit run started", "backends", p.llm.Names(), "targets", len(targets), "trigger", req.Trigger)

	outcomes := make([]backendOutcome, len(p.llm.Chat))
	var g errgroup.Group
	for i, b := range p.llm.Chat {
		i, b := i, b
		g.Go(func() error {
			defer func() {
				if rec := recover(); rec != nil {
					observability.CaptureRecovered(rec, map[string]string{
						"backend":   b.Name(),
						"prompt_id": prompt.ID.String(),
					})
					log.Error("audit backend panicked", "backend", b.Name(), "panic", rec)
					outcomes[i] = backendOutcome{err: observability.PanicError(rec)}
				}
			}()
			outcomes[i] = p.runBackend(ctx, log, run, prompt, targets, b)
			return nil
		})
	}
	_ = g.Wait()

	return p.finish(ctx, log, run, prompt, outcomes)
}

func (p *Pipeline) runBackend(ctx context.Context, log *logger.Logger, run *domain.PromptRun, prompt *domain.Prompt, targets []string, b llm.Backend) backendOutcome {
	ctx, span := observability.Tracer().Start(ctx, "audit.backend")
	defer span.End()
	span.SetAttributes(attribute.String("backend", b.Name()), attribute.String("model", b.Model()))

	chat, err := prompts.Build(prompts.PromptVisibilityChat, prompts.Input{
		PromptText: prompt.PromptText,
		Topic:      prompt.Topic,
	})
	if err != nil {
		return backendOutcome{err: err}
	}

	comp, err := p.call(ctx, b, llm.Request{System: chat.System, User: chat.User})
	if err == nil && strings.TrimSpace(comp.Text) == "" {
		err = llm.ErrEmptyResponse
	}
	p.record(ctx, log, run, b, domain.StageChat, comp, err, kindForCall(err), nil)
	switch {
	case errors.Is(err, llm.ErrTruncated) && strings.TrimSpace(comp.Text) != "":
		// A cut-off transcript still carries mentions; extract from what arrived.
		log.Warn("chat response truncated", "backend", b.Name(), "completion_tokens", comp.CompletionTokens)
	case err != nil:
		span.SetStatus(codes.Error, err.Error())
		log.Warn("chat call failed", "backend", b.Name(), "error", err)
		return backendOutcome{err: fmt.Errorf("%s chat: %w", b.Name(), err)}
	}

	schemaName, schema, _ := prompts.Schema(prompts.PromptBrandExtraction)
	extractor := p.llm.ExtractorFor(b)
	ecomp, err := p.call(ctx, extractor, llm.Request{
		User:       prompts.BuildExtractionPrompt(prompt.PromptText, comp.Text, targets),
		JSON:       true,
		SchemaName: schemaName,
		Schema:     schema,
	})
	if err != nil {
		p.record(ctx, log, run, extractor, domain.StageExtraction, ecomp, err, kindForCall(err), nil)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("extraction call failed", "backend", b.Name(), "extractor", extractor.Name(), "error", err)
		return backendOutcome{err: fmt.Errorf("%s extraction: %w", b.Name(), err)}
	}

	ex, err := ParseExtraction(ecomp.Text)
	if err != nil {
		kind := domain.ErrorKindValidation
		if errors.Is(err, ErrMalformedOutput) {
			kind = domain.ErrorKindMalformedOutput
		}
		p.record(ctx, log, run, extractor, domain.StageExtraction, ecomp, err, kind, nil)
		span.SetStatus(codes.Error, err.Error())
		log.Warn("extraction rejected", "backend", b.Name(), "kind", kind, "error", err)
		return backendOutcome{err: fmt.Errorf("%s extraction: %w", b.Name(), err)}
	}
	p.record(ctx, log, run, extractor, domain.StageExtraction, ecomp, nil, "", ex.Insights())

	report := p.merger.Apply(ctx, run.WorkspaceID, prompt.ID, targets, ex, p.now())
	span.SetAttributes(
		attribute.Int("brands_created", report.Created),
		attribute.Int("brands_updated", report.Updated),
		attribute.Int("brands_failed", report.Failed),
	)
	return backendOutcome{ok: true, report: report}
}

func (p *Pipeline) call(ctx context.Context, b llm.Backend, req llm.Request) (llm.Completion, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return b.Complete(callCtx, req)
}

func kindForCall(err error) domain.ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, llm.ErrTruncated):
		return domain.ErrorKindTruncated
	case httpx.IsRetryableError(err):
		return domain.ErrorKindTransient
	default:
		return domain.ErrorKindBackend
	}
}

// record persists one ModelResponse. It runs on a non-cancelable context so a
// cancelled cycle still leaves its audit trail.
func (p *Pipeline) record(ctx context.Context, log *logger.Logger, run *domain.PromptRun, b llm.Backend, stage domain.ResponseStage, comp llm.Completion, callErr error, kind domain.ErrorKind, insights []byte) {
	status := "ok"
	if callErr != nil {
		status = string(kind)
	}
	p.metrics.ObserveLLM(b.Name(), string(stage), status, comp.Latency, comp.PromptTokens, comp.CompletionTokens)

	model := comp.Model
	if model == "" {
		model = b.Model()
	}
	row := &domain.ModelResponse{
		WorkspaceID:      run.WorkspaceID,
		PromptRunID:      run.ID,
		PromptID:         run.PromptID,
		BackendName:      b.Name(),
		ModelName:        model,
		Stage:            stage,
		ResponseText:     comp.Text,
		LatencyMS:        comp.Latency.Milliseconds(),
		PromptTokens:     comp.PromptTokens,
		CompletionTokens: comp.CompletionTokens,
		TotalTokens:      comp.TotalTokens,
		ErrorKind:        kind,
		Insights:         insights,
	}
	if callErr != nil {
		row.Error = callErr.Error()
	}
	if _, err := p.responses.Create(dbctx.Context{Ctx: context.WithoutCancel(ctx)}, []*domain.ModelResponse{row}); err != nil {
		log.Error("persist model response failed", "backend", b.Name(), "stage", stage, "error", err)
	}
}

func (p *Pipeline) finish(ctx context.Context, log *logger.Logger, run *domain.PromptRun, prompt *domain.Prompt, outcomes []backendOutcome) (*domain.PromptRun, error) {
	var (
		ok, failed, touched int
		errs                []string
	)
	for _, o := range outcomes {
		if o.ok {
			ok++
			touched += o.report.Touched()
			for _, e := range o.report.Errors {
				errs = append(errs, e.Error())
			}
			continue
		}
		failed++
		if o.err != nil {
			errs = append(errs, o.err.Error())
		}
	}
	if len(outcomes) == 0 {
		errs = append(errs, llm.ErrNoBackends.Error())
	}

	status := domain.RunCompleted
	switch {
	case ok == 0:
		status = domain.RunFailed
	case failed > 0:
		status = domain.RunPartial
	}

	errText := strings.Join(errs, "; ")
	if len(errText) > maxRunErrorLen {
		errText = errText[:maxRunErrorLen]
	}
	finishedAt := p.now()
	dbc := dbctx.Context{Ctx: context.WithoutCancel(ctx)}
	if err := p.runs.UpdateFields(dbc, run.ID, map[string]interface{}{
		"status":          status,
		"backends_ok":     ok,
		"backends_failed": failed,
		"brands_updated":  touched,
		"error":           errText,
		"finished_at":     finishedAt,
	}); err != nil {
		return nil, fmt.Errorf("finish prompt run: %w", err)
	}
	if err := p.prompts.TouchLastRun(dbc, run.WorkspaceID, prompt.ID, finishedAt); err != nil {
		log.Warn("touch prompt last_run_at failed", "error", err)
	}

	run.Status = status
	run.BackendsOK = ok
	run.BackendsFailed = failed
	run.BrandsUpdated = touched
	run.Error = errText
	run.FinishedAt = &finishedAt

	p.metrics.IncAuditRun(string(run.Trigger), string(status))
	log.Info("audit run finished", "status", status, "backends_ok", ok, "backends_failed", failed, "brands_touched", touched)
	return run, nil
}
