package brand

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/brandlens-backend/internal/data/repos/testutil"
	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
)

func TestBrandRepo_UpsertAccumulatesMentions(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewBrandRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}
	ws := testutil.SeedWorkspace(t, ctx, db, "w1")

	now := time.Now().UTC()
	b, created, err := repo.Upsert(dbc, ws.ID, Observation{
		BrandName:       "Acme",
		MentionCount:    2,
		Sentiment:       types.SentimentPositive,
		Rank:            testutil.PtrInt(1),
		ProminenceScore: 7,
		Context:         "first",
		Color:           "#111111",
		SeenAt:          now,
	})
	if err != nil || !created {
		t.Fatalf("first upsert: created=%v err=%v", created, err)
	}
	if b.Mentions != 2 || b.LastRank == nil || *b.LastRank != 1 || b.ProminenceScore != 7 {
		t.Fatalf("unexpected brand after create: %+v", b)
	}

	b, created, err = repo.Upsert(dbc, ws.ID, Observation{
		BrandName:       "  ACME ",
		MentionCount:    3,
		Sentiment:       types.SentimentNegative,
		ProminenceScore: 4,
		Context:         "second",
		Links:           []types.AssociatedLink{{URL: "https://acme.example", IsDirectBrandLink: true}},
		SeenAt:          now.Add(time.Minute),
	})
	if err != nil || created {
		t.Fatalf("second upsert: created=%v err=%v", created, err)
	}
	if b.Mentions != 5 {
		t.Fatalf("mentions = %d, want 5", b.Mentions)
	}
	if b.LastRank != nil {
		t.Fatalf("rank should be overwritten with null, got %d", *b.LastRank)
	}
	if b.AverageSentiment != types.SentimentNegative || b.Context != "second" || b.ProminenceScore != 4 {
		t.Fatalf("latest observation not applied: %+v", b)
	}
	if len(b.AssociatedLinks) != 1 || b.AssociatedLinks[0].URL != "https://acme.example" {
		t.Fatalf("links = %+v", b.AssociatedLinks)
	}
	if b.Color != "#111111" || b.BrandName != "Acme" {
		t.Fatalf("create-only fields changed: %+v", b)
	}

	all, err := repo.List(dbc, ws.ID)
	if err != nil || len(all) != 1 {
		t.Fatalf("List = %d, %v; want exactly one brand", len(all), err)
	}
}

func TestBrandRepo_RanksAreSparseAndUnique(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewBrandRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}
	ws := testutil.SeedWorkspace(t, ctx, db, "w1")
	now := time.Now().UTC()

	for _, name := range []string{"Unranked One", "Unranked Two"} {
		if _, _, err := repo.Upsert(dbc, ws.ID, Observation{BrandName: name, MentionCount: 1, SeenAt: now}); err != nil {
			t.Fatalf("upsert %s: %v", name, err)
		}
	}

	if _, _, err := repo.Upsert(dbc, ws.ID, Observation{BrandName: "Acme", MentionCount: 1, Rank: testutil.PtrInt(1), SeenAt: now}); err != nil {
		t.Fatalf("upsert Acme: %v", err)
	}
	if _, _, err := repo.Upsert(dbc, ws.ID, Observation{BrandName: "Globex", MentionCount: 1, Rank: testutil.PtrInt(1), SeenAt: now}); err != nil {
		t.Fatalf("upsert Globex: %v", err)
	}

	acme, _ := repo.GetByNameKey(dbc, ws.ID, "acme")
	globex, _ := repo.GetByNameKey(dbc, ws.ID, "globex")
	if acme == nil || globex == nil {
		t.Fatalf("expected both brands to exist")
	}
	if acme.LastRank != nil {
		t.Fatalf("Acme should have lost rank 1, has %d", *acme.LastRank)
	}
	if globex.LastRank == nil || *globex.LastRank != 1 {
		t.Fatalf("Globex should hold rank 1")
	}

	// the sparse index still rejects a direct duplicate rank
	_, err := repo.Create(dbc, &types.Brand{WorkspaceID: ws.ID, BrandName: "Initech", LastRank: testutil.PtrInt(1)})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicate rank to violate index, got %v", err)
	}
}

func TestBrandRepo_WorkspaceIsolation(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewBrandRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}
	w1 := testutil.SeedWorkspace(t, ctx, db, "w1")
	w2 := testutil.SeedWorkspace(t, ctx, db, "w2")
	theirs := testutil.SeedBrand(t, ctx, db, w2.ID, "Acme", 10, testutil.PtrInt(1))

	if _, _, err := repo.Upsert(dbc, w1.ID, Observation{BrandName: "Acme", MentionCount: 2, Rank: testutil.PtrInt(1), SeenAt: time.Now()}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.GetByID(dbc, w2.ID, theirs.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v %v", got, err)
	}
	if got.Mentions != 10 || got.LastRank == nil || *got.LastRank != 1 {
		t.Fatalf("W2 brand mutated by W1 upsert: %+v", got)
	}
	if leaked, _ := repo.GetByID(dbc, w1.ID, theirs.ID); leaked != nil {
		t.Fatalf("W2 brand visible through W1 scope")
	}
	list, _ := repo.List(dbc, w1.ID)
	if len(list) != 1 || list[0].Mentions != 2 {
		t.Fatalf("W1 list = %+v", list)
	}
}
