package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/electionwatch/atlas-backend/internal/models"
	"github.com/electionwatch/atlas-backend/pkg/logger"
)

// ImportUnits upserts the administrative hierarchy derived from the
// boundary bundle. Parents are resolved by (parentName, level-1) within
// the bundle itself; units whose parent cannot be resolved are imported
// with a NULL parent and logged.
func ImportUnits(ctx context.Context, db *sqlx.DB, boundaries []models.BoundaryGeometry) (int, error) {
	log := logger.FromContext(ctx)

	type key struct {
		name  string
		level int
	}
	ids := make(map[key]int64, len(boundaries))
	for _, b := range boundaries {
		ids[key{name: strings.ToLower(b.Name), level: b.Level}] = b.UnitID
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
		INSERT INTO admin_units (id, name, level, parent_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, level = EXCLUDED.level, parent_id = EXCLUDED.parent_id`

	unresolved := 0
	count := 0
	// Broad levels first so parent rows exist before their children.
	for level := models.LevelSubregion; level <= models.LevelParish; level++ {
		for _, b := range boundaries {
			if b.Level != level {
				continue
			}
			var parentID *int64
			if b.ParentName != "" {
				if pid, ok := ids[key{name: strings.ToLower(b.ParentName), level: b.Level - 1}]; ok {
					parentID = &pid
				} else {
					unresolved++
				}
			}
			if _, err := tx.ExecContext(ctx, upsert, b.UnitID, b.Name, b.Level, parentID); err != nil {
				return 0, fmt.Errorf("upsert unit %d: %w", b.UnitID, err)
			}
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	if unresolved > 0 {
		log.Warn("units imported without a resolvable parent", "count", unresolved)
	}
	return count, nil
}
