package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/brandlens-backend/internal/domain"
)

func SeedWorkspace(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *domain.Workspace {
	tb.Helper()
	ws := &domain.Workspace{
		ID:       uuid.New(),
		Name:     name,
		IsActive: true,
	}
	if err := tx.WithContext(ctx).Create(ws).Error; err != nil {
		tb.Fatalf("seed workspace: %v", err)
	}
	return ws
}

func SeedTargetBrand(tb testing.TB, ctx context.Context, tx *gorm.DB, workspaceID uuid.UUID, name string) *domain.TargetBrand {
	tb.Helper()
	t := &domain.TargetBrand{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		BrandName:   name,
		NameKey:     domain.NameKey(name),
		OfficialURL: "https://" + domain.NameKey(name) + ".example",
		IsActive:    true,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed target brand: %v", err)
	}
	return t
}

func SeedPrompt(tb testing.TB, ctx context.Context, tx *gorm.DB, workspaceID uuid.UUID, text string) *domain.Prompt {
	tb.Helper()
	p := &domain.Prompt{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		PromptText:  text,
		IsActive:    true,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed prompt: %v", err)
	}
	return p
}

func SeedBrand(tb testing.TB, ctx context.Context, tx *gorm.DB, workspaceID uuid.UUID, name string, mentions int, rank *int) *domain.Brand {
	tb.Helper()
	b := &domain.Brand{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		BrandName:   name,
		NameKey:     domain.NameKey(name),
		Mentions:    mentions,
		LastRank:    rank,
		Color:       "#000000",
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed brand: %v", err)
	}
	return b
}

func PtrInt(v int) *int { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
