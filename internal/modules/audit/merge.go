package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/brandlens-backend/internal/data/repos"
	"github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/observability"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
	"github.com/yungbote/brandlens-backend/internal/platform/logger"
)

type MergeReport struct {
	Created int
	Updated int
	Failed  int
	Errors  []error
}

func (r MergeReport) Touched() int { return r.Created + r.Updated }

// Merger folds one validated extraction into the workspace's Brand records.
type Merger struct {
	brands  repos.BrandRepo
	log     *logger.Logger
	metrics *observability.Metrics
}

func NewMerger(brands repos.BrandRepo, baseLog *logger.Logger, metrics *observability.Metrics) *Merger {
	return &Merger{
		brands:  brands,
		log:     baseLog.With("component", "BrandMerger"),
		metrics: metrics,
	}
}

// Apply upserts every predefined brand with found=true and every discovered
// competitor. Entries naming the same brand are collapsed first (mention
// counts summed, first entry's other fields kept). Each brand is its own
// transaction; a failure is recorded and the rest continue.
func (m *Merger) Apply(ctx context.Context, workspaceID uuid.UUID, promptID uuid.UUID, targets []string, ex *Extraction, seenAt time.Time) MergeReport {
	var report MergeReport
	if ex == nil {
		return report
	}
	targetNames := make(map[string]string, len(targets))
	for _, t := range targets {
		targetNames[domain.NameKey(t)] = t
	}

	obs := m.observations(ex, targetNames, promptID, seenAt)
	for _, o := range obs {
		if err := ctx.Err(); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Errorf("%s: %w", o.BrandName, err))
			continue
		}
		_, created, err := m.brands.Upsert(dbctx.Context{Ctx: ctx}, workspaceID, o)
		switch {
		case err != nil:
			report.Failed++
			report.Errors = append(report.Errors, err)
			m.metrics.IncBrandUpsert("failed")
			m.log.Error("brand upsert failed", "workspace_id", workspaceID, "brand", o.BrandName, "error", err)
		case created:
			report.Created++
			m.metrics.IncBrandUpsert("created")
		default:
			report.Updated++
			m.metrics.IncBrandUpsert("updated")
		}
	}
	return report
}

func (m *Merger) observations(ex *Extraction, targetNames map[string]string, promptID uuid.UUID, seenAt time.Time) []repos.BrandObservation {
	var (
		out   []repos.BrandObservation
		index = map[string]int{}
	)
	add := func(a BrandAnalysis) {
		key := domain.NameKey(a.BrandName)
		if key == "" {
			return
		}
		count := 0
		if a.MentionCount != nil {
			count = *a.MentionCount
		}
		if i, ok := index[key]; ok {
			out[i].MentionCount += count
			return
		}
		name := a.BrandName
		canonical, isTarget := targetNames[key]
		if isTarget {
			name = canonical
		}
		sentiment, _ := domain.ParseSentiment(a.Sentiment)
		prominence := 0
		if a.ProminenceScore != nil {
			prominence = *a.ProminenceScore
		}
		links := make([]domain.AssociatedLink, 0, len(a.AssociatedLinks))
		for _, l := range a.AssociatedLinks {
			links = append(links, domain.AssociatedLink{
				URL:               l.URL,
				IsDirectBrandLink: l.IsDirectBrandLink,
				CitationType:      domain.CitationType(l.CitationType),
			})
		}
		pid := promptID
		index[key] = len(out)
		out = append(out, repos.BrandObservation{
			BrandName:       name,
			MentionCount:    count,
			Sentiment:       sentiment,
			Rank:            a.RankPosition,
			ProminenceScore: prominence,
			Context:         a.Context,
			Links:           links,
			IsTarget:        isTarget,
			PromptID:        &pid,
			SeenAt:          seenAt,
			Color:           BrandColor(name),
		})
	}

	for _, p := range ex.Predefined {
		if p.Found == nil || !*p.Found {
			continue
		}
		add(p.BrandAnalysis)
	}
	for _, d := range ex.Discovered {
		add(d)
	}
	return out
}
