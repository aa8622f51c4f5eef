package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/brandlens-backend/internal/data/repos"
	"github.com/yungbote/brandlens-backend/internal/data/repos/testutil"
	"github.com/yungbote/brandlens-backend/internal/platform/ctxutil"
)

type countingReconciler struct {
	calls int
	err   error
}

func (c *countingReconciler) Reconcile(ctx context.Context) error {
	c.calls++
	return c.err
}

type svcFixture struct {
	workspaces WorkspaceService
	targets    TargetBrandService
	brands     BrandService
	prompts    PromptService
	reconciler *countingReconciler
}

func newSvcFixture(t *testing.T) *svcFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	rec := &countingReconciler{}
	return &svcFixture{
		workspaces: NewWorkspaceService(db, log, repos.NewWorkspaceRepo(db, log)),
		targets:    NewTargetBrandService(log, repos.NewTargetBrandRepo(db, log), rec),
		brands:     NewBrandService(log, repos.NewBrandRepo(db, log), nil),
		prompts: NewPromptService(log, repos.NewPromptRepo(db, log), repos.NewPromptRunRepo(db, log),
			repos.NewModelResponseRepo(db, log), rec),
		reconciler: rec,
	}
}

func TestWorkspaceService_FirstIsDefault(t *testing.T) {
	f := newSvcFixture(t)
	ctx := context.Background()

	w1, err := f.workspaces.Create(ctx, CreateWorkspaceInput{Name: " Acme Corp "})
	require.NoError(t, err)
	assert.True(t, w1.IsDefault)
	assert.Equal(t, "Acme Corp", w1.Name)

	w2, err := f.workspaces.Create(ctx, CreateWorkspaceInput{Name: "Second"})
	require.NoError(t, err)
	assert.False(t, w2.IsDefault)

	_, err = f.workspaces.Create(ctx, CreateWorkspaceInput{Name: "Second"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.workspaces.Create(ctx, CreateWorkspaceInput{Name: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.workspaces.Resolve(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTargetBrandService_ScopedAndUnique(t *testing.T) {
	f := newSvcFixture(t)
	w1, err := f.workspaces.Create(context.Background(), CreateWorkspaceInput{Name: "W1"})
	require.NoError(t, err)
	w2, err := f.workspaces.Create(context.Background(), CreateWorkspaceInput{Name: "W2"})
	require.NoError(t, err)
	ctx1 := ctxutil.WithWorkspaceID(context.Background(), w1.ID)
	ctx2 := ctxutil.WithWorkspaceID(context.Background(), w2.ID)

	_, err = f.targets.Create(context.Background(), CreateTargetBrandInput{BrandName: "Acme", OfficialURL: "acme.com"})
	assert.ErrorIs(t, err, ErrNoWorkspace)

	tb, err := f.targets.Create(ctx1, CreateTargetBrandInput{BrandName: "Acme", OfficialURL: "acme.com"})
	require.NoError(t, err)
	assert.True(t, tb.IsActive)
	assert.False(t, tb.IsScheduled)

	_, err = f.targets.Create(ctx1, CreateTargetBrandInput{BrandName: "ACME", OfficialURL: "acme.com"})
	assert.ErrorIs(t, err, ErrConflict)

	// same name in another workspace is fine
	_, err = f.targets.Create(ctx2, CreateTargetBrandInput{BrandName: "Acme", OfficialURL: "acme.com"})
	require.NoError(t, err)

	_, err = f.targets.Get(ctx2, tb.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.targets.Create(ctx1, CreateTargetBrandInput{BrandName: "NoURL"})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := f.targets.SetScheduled(ctx1, tb.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsScheduled)
	assert.Equal(t, 1, f.reconciler.calls)

	_, err = f.targets.SetScheduled(ctx2, tb.ID, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPromptService_CreateUpdateAndRuns(t *testing.T) {
	f := newSvcFixture(t)
	ws, err := f.workspaces.Create(context.Background(), CreateWorkspaceInput{Name: "W1"})
	require.NoError(t, err)
	ctx := ctxutil.WithWorkspaceID(context.Background(), ws.ID)

	_, err = f.prompts.Create(ctx, CreatePromptInput{PromptText: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	p, err := f.prompts.Create(ctx, CreatePromptInput{
		PromptText:  "best widget providers?",
		Tags:        []string{"widgets", " Widgets ", ""},
		IsScheduled: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"widgets"}, []string(p.Tags))
	assert.Equal(t, 1, f.reconciler.calls)

	empty := ""
	_, err = f.prompts.Update(ctx, p.ID, UpdatePromptInput{PromptText: &empty})
	assert.ErrorIs(t, err, ErrValidation)

	topic := "hardware"
	updated, err := f.prompts.Update(ctx, p.ID, UpdatePromptInput{Topic: &topic})
	require.NoError(t, err)
	assert.Equal(t, "hardware", updated.Topic)
	assert.Equal(t, 1, f.reconciler.calls, "topic change should not reconcile")

	stopped, err := f.prompts.SetScheduled(ctx, p.ID, false)
	require.NoError(t, err)
	assert.False(t, stopped.IsScheduled)
	assert.Equal(t, 2, f.reconciler.calls)

	runs, err := f.prompts.ListRuns(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = f.prompts.GetRun(ctx, uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestScheduleChange_SurfacesReconcileFailure(t *testing.T) {
	f := newSvcFixture(t)
	ws, err := f.workspaces.Create(context.Background(), CreateWorkspaceInput{Name: "W1"})
	require.NoError(t, err)
	ctx := ctxutil.WithWorkspaceID(context.Background(), ws.ID)

	p, err := f.prompts.Create(ctx, CreatePromptInput{PromptText: "best widget providers?"})
	require.NoError(t, err)
	tb, err := f.targets.Create(ctx, CreateTargetBrandInput{BrandName: "Acme", OfficialURL: "acme.com"})
	require.NoError(t, err)

	f.reconciler.err = errors.New("redis down")

	_, err = f.prompts.SetScheduled(ctx, p.ID, true)
	require.ErrorIs(t, err, ErrScheduleNotApplied)
	assert.Contains(t, err.Error(), "redis down")
	_, err = f.targets.SetScheduled(ctx, tb.ID, true)
	require.ErrorIs(t, err, ErrScheduleNotApplied)

	// the write itself committed
	got, err := f.prompts.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsScheduled)
	gotTB, err := f.targets.Get(ctx, tb.ID)
	require.NoError(t, err)
	assert.True(t, gotTB.IsScheduled)

	f.reconciler.err = nil
	_, err = f.prompts.SetScheduled(ctx, p.ID, true)
	assert.NoError(t, err)
}

func TestBrandService_CreateCompetitor(t *testing.T) {
	f := newSvcFixture(t)
	ws, err := f.workspaces.Create(context.Background(), CreateWorkspaceInput{Name: "W1"})
	require.NoError(t, err)
	ctx := ctxutil.WithWorkspaceID(context.Background(), ws.ID)

	b, err := f.brands.CreateCompetitor(ctx, CreateBrandInput{BrandName: "Globex"})
	require.NoError(t, err)
	assert.Equal(t, 0, b.Mentions)
	assert.Nil(t, b.LastRank)
	assert.Regexp(t, `^#[0-9A-F]{6}$`, b.Color)

	_, err = f.brands.CreateCompetitor(ctx, CreateBrandInput{BrandName: "globex"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.brands.CreateCompetitor(ctx, CreateBrandInput{BrandName: "Initech", Color: "blue"})
	assert.ErrorIs(t, err, ErrValidation)

	list, err := f.brands.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
