package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/brandlens-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.AllModels()...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return EnsureIndexes(db)
}

// EnsureIndexes creates indexes gorm tags cannot express. Both postgres and
// sqlite accept partial indexes with this syntax.
func EnsureIndexes(db *gorm.DB) error {
	// last_rank is unique among ranked brands only; unranked rows (NULL) coexist.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_brand_ws_last_rank
		ON brand(workspace_id, last_rank)
		WHERE last_rank IS NOT NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_brand_ws_last_rank: %w", err)
	}
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_workspace_single_default
		ON workspace(is_default)
		WHERE is_default;
	`).Error; err != nil {
		return fmt.Errorf("create idx_workspace_single_default: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_model_response_run_created ON model_response(prompt_run_id, created_at);`).Error; err != nil {
		return fmt.Errorf("create idx_model_response_run_created: %w", err)
	}
	return nil
}
