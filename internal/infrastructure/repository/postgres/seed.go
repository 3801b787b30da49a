package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/nextinning/recruiting-api/internal/infrastructure/repository/memory"
	"github.com/nextinning/recruiting-api/internal/platform/id"
)

// BootstrapSeed loads the demo teams and players into an empty database.
// A non-empty teams table means a real deployment; nothing is touched.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, idGen id.Generator) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM teams WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count teams for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, t := range memory.SeedTeams() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO teams (public_id, name, location, division, region, is_active)
VALUES (:public_id, :name, :location, :division, :region, :is_active)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id": t.ID,
			"name":      t.Name,
			"location":  t.Location,
			"division":  t.Division,
			"region":    t.Region,
			"is_active": t.IsActive,
		})
		if err != nil {
			return fmt.Errorf("bind seed team %s query: %w", t.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed team %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	userRepo := NewUserRepository(db, idGen)
	for _, p := range memory.SeedPlayers() {
		if _, err := userRepo.Create(ctx, p); err != nil {
			return fmt.Errorf("seed player %s: %w", p.ID, err)
		}
	}

	return nil
}
