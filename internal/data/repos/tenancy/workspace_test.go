package tenancy

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/brandlens-backend/internal/data/repos/testutil"
	types "github.com/yungbote/brandlens-backend/internal/domain"
	"github.com/yungbote/brandlens-backend/internal/pkg/dbctx"
)

func TestWorkspaceRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewWorkspaceRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}

	if ws, err := repo.GetDefault(dbc); err != nil || ws != nil {
		t.Fatalf("GetDefault on empty db: ws=%v err=%v", ws, err)
	}

	first, err := repo.Create(dbc, &types.Workspace{Name: "Primary", IsDefault: true, IsActive: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(dbc, &types.Workspace{Name: "Secondary", IsActive: true}); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	if _, err := repo.Create(dbc, &types.Workspace{Name: "Primary", IsActive: true}); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicate name to be rejected, got %v", err)
	}

	def, err := repo.GetDefault(dbc)
	if err != nil || def == nil || def.ID != first.ID {
		t.Fatalf("GetDefault = %v, %v; want %s", def, err, first.ID)
	}

	got, err := repo.GetByName(dbc, "Secondary")
	if err != nil || got == nil {
		t.Fatalf("GetByName: %v %v", got, err)
	}
	byID, err := repo.GetByID(dbc, got.ID)
	if err != nil || byID == nil || byID.Name != "Secondary" {
		t.Fatalf("GetByID: %v %v", byID, err)
	}

	n, err := repo.Count(dbc)
	if err != nil || n != 2 {
		t.Fatalf("Count = %d, %v; want 2", n, err)
	}
	list, err := repo.List(dbc)
	if err != nil || len(list) != 2 {
		t.Fatalf("List = %d, %v; want 2", len(list), err)
	}
}
