package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/brandlens-backend/internal/data/repos/testutil"
	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
)

func TestPromptRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewPromptRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}
	w1 := testutil.SeedWorkspace(t, ctx, db, "w1")
	w2 := testutil.SeedWorkspace(t, ctx, db, "w2")

	p, err := repo.Create(dbc, &types.Prompt{WorkspaceID: w1.ID, PromptText: "best CRM?", IsActive: true, IsScheduled: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	testutil.SeedPrompt(t, ctx, db, w2.ID, "other tenant")

	if got, _ := repo.GetByID(dbc, w2.ID, p.ID); got != nil {
		t.Fatalf("prompt leaked across workspaces")
	}
	got, err := repo.GetByID(dbc, w1.ID, p.ID)
	if err != nil || got == nil || got.PromptText != "best CRM?" {
		t.Fatalf("GetByID = %v, %v", got, err)
	}

	all, _ := repo.ListScheduled(dbc, nil)
	if len(all) != 1 {
		t.Fatalf("ListScheduled(all) = %d, want 1", len(all))
	}
	scoped, _ := repo.ListScheduled(dbc, &w2.ID)
	if len(scoped) != 0 {
		t.Fatalf("ListScheduled(w2) = %d, want 0", len(scoped))
	}

	if err := db.Model(&types.Workspace{}).Where("id = ?", w1.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate workspace: %v", err)
	}
	if all, _ := repo.ListScheduled(dbc, nil); len(all) != 0 {
		t.Fatalf("ListScheduled after workspace deactivation = %d, want 0", len(all))
	}
	if err := db.Model(&types.Workspace{}).Where("id = ?", w1.ID).Update("is_active", true).Error; err != nil {
		t.Fatalf("reactivate workspace: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Second)
	if err := repo.TouchLastRun(dbc, w1.ID, p.ID, at); err != nil {
		t.Fatalf("TouchLastRun: %v", err)
	}
	got, _ = repo.GetByID(dbc, w1.ID, p.ID)
	if got.LastRunAt == nil || !got.LastRunAt.Equal(at) {
		t.Fatalf("last_run_at = %v, want %v", got.LastRunAt, at)
	}
}

func TestPromptRunAndModelResponseRepos(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	runs := NewPromptRunRepo(db, testutil.Logger(t))
	responses := NewModelResponseRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}
	ws := testutil.SeedWorkspace(t, ctx, db, "w1")
	p := testutil.SeedPrompt(t, ctx, db, ws.ID, "q")

	run, err := runs.Create(dbc, &types.PromptRun{
		WorkspaceID: ws.ID,
		PromptID:    p.ID,
		Trigger:     types.TriggerManual,
		Status:      types.RunRunning,
		StartedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Create run: %v", err)
	}
	if err := runs.UpdateFields(dbc, run.ID, map[string]interface{}{"status": types.RunPartial, "backends_ok": 1}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, _ := runs.GetByID(dbc, ws.ID, run.ID)
	if got == nil || got.Status != types.RunPartial || got.BackendsOK != 1 {
		t.Fatalf("run = %+v", got)
	}

	_, err = responses.Create(dbc, []*types.ModelResponse{
		{WorkspaceID: ws.ID, PromptRunID: run.ID, PromptID: p.ID, BackendName: "openai", Stage: types.StageChat, ResponseText: "hi"},
		{WorkspaceID: ws.ID, PromptRunID: run.ID, PromptID: p.ID, BackendName: "openai", Stage: types.StageExtraction, Error: "bad json", ErrorKind: types.ErrorKindMalformedOutput},
	})
	if err != nil {
		t.Fatalf("Create responses: %v", err)
	}
	list, err := responses.ListByRun(dbc, ws.ID, run.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByRun = %d, %v", len(list), err)
	}
	if n, _ := responses.CountByPrompt(dbc, ws.ID, p.ID); n != 2 {
		t.Fatalf("CountByPrompt = %d, want 2", n)
	}
	if other, _ := responses.ListByRun(dbc, uuid.New(), run.ID); len(other) != 0 {
		t.Fatalf("responses visible from another workspace")
	}
	byPrompt, _ := runs.ListByPrompt(dbc, ws.ID, p.ID, 0)
	if len(byPrompt) != 1 {
		t.Fatalf("ListByPrompt = %d", len(byPrompt))
	}
}
