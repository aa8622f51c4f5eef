package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/brandlens-backend/internal/data/repos"
	"github.com/yungbote/brandlens-backend/internal/data/repos/testutil"
	"github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
)

func TestMerger_SkipsNotFoundAndCollapsesDuplicates(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	log := testutil.Logger(t)
	brands := repos.NewBrandRepo(db, log)
	ws := testutil.SeedWorkspace(t, ctx, db, "w1")

	ex, err := ParseExtraction(`{
	  "predefined_brand_analysis": [
	    {"brand_name":"acme","found":true,"mention_count":2,"sentiment":"Positive","rank_position":1,"prominence_score":7,"context":"first"},
	    {"brand_name":"Initech","found":false,"mention_count":0,"sentiment":"Neutral","prominence_score":0}
	  ],
	  "discovered_competitor_analysis": [
	    {"brand_name":"Globex","mention_count":1,"sentiment":"Neutral","rank_position":2,"prominence_score":4},
	    {"brand_name":"globex ","mention_count":3,"sentiment":"Negative","prominence_score":2}
	  ]
	}`)
	if err != nil {
		t.Fatalf("ParseExtraction: %v", err)
	}

	m := NewMerger(brands, log, nil)
	report := m.Apply(ctx, ws.ID, uuid.New(), []string{"Acme", "Initech"}, ex, time.Now().UTC())
	if report.Failed != 0 || report.Created != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}

	list, err := brands.List(dbctx.Context{Ctx: ctx}, ws.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 brands (Initech not found), got %d", len(list))
	}
	byName := map[string]int{}
	for _, b := range list {
		byName[b.BrandName] = b.Mentions
		if b.BrandName == "Globex" {
			// first entry's fields are kept; only mentions accumulate
			if b.LastRank == nil || *b.LastRank != 2 || b.ProminenceScore != 4 || b.AverageSentiment != domain.SentimentNeutral {
				t.Fatalf("Globex should keep the first entry's fields: %+v", b)
			}
		}
		if b.BrandName == "Acme" && !b.IsTarget {
			t.Fatalf("Acme should be flagged as target")
		}
		if b.Color == "" {
			t.Fatalf("brand %s has no color", b.BrandName)
		}
	}
	if byName["Acme"] != 2 {
		t.Fatalf("Acme should take the target's canonical name with 2 mentions, got %v", byName)
	}
	if byName["Globex"] != 4 {
		t.Fatalf("duplicate Globex entries should sum to 4, got %v", byName)
	}
}

func TestBrandColor_Stable(t *testing.T) {
	if BrandColor("Acme") != BrandColor("  ACME ") {
		t.Fatalf("color should depend only on the normalised name")
	}
}
