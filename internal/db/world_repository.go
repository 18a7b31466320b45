package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/robotworld/internal/model"
	"github.com/udisondev/robotworld/internal/world"
)

// ErrWorldNotFound is returned by LoadWorld for unknown names.
var ErrWorldNotFound = errors.New("world not found")

// WorldRepository stores world layouts: name, dimensions and obstacles.
type WorldRepository struct {
	pool *pgxpool.Pool
}

// NewWorldRepository creates a new world layout repository.
func NewWorldRepository(pool *pgxpool.Pool) *WorldRepository {
	return &WorldRepository{pool: pool}
}

// SaveWorld inserts or replaces the layout in a single transaction.
func (r *WorldRepository) SaveWorld(ctx context.Context, layout world.Layout) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for world %q: %w", layout.Name, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "world", layout.Name, "error", err)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO worlds (name, width, height, saved_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (name) DO UPDATE
		 SET width = EXCLUDED.width, height = EXCLUDED.height, saved_at = EXCLUDED.saved_at`,
		layout.Name, layout.Width, layout.Height,
	)
	if err != nil {
		return fmt.Errorf("upserting world %q: %w", layout.Name, err)
	}

	if err := r.saveObstaclesTx(ctx, tx, layout); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction for world %q: %w", layout.Name, err)
	}

	slog.Info("world saved",
		"world", layout.Name,
		"obstacles", len(layout.Obstacles))
	return nil
}

// saveObstaclesTx replaces every obstacle row of the layout (full replace).
func (r *WorldRepository) saveObstaclesTx(ctx context.Context, tx pgx.Tx, layout world.Layout) error {
	if _, err := tx.Exec(ctx, `DELETE FROM world_obstacles WHERE world_name = $1`, layout.Name); err != nil {
		return fmt.Errorf("deleting old obstacles for world %q: %w", layout.Name, err)
	}

	if len(layout.Obstacles) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(layout.Obstacles))
	for i, o := range layout.Obstacles {
		rows = append(rows, []any{layout.Name, i, o.Type.String(), o.X, o.Y, o.Width, o.Height})
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"world_obstacles"},
		[]string{"world_name", "seq", "type", "x", "y", "width", "height"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting obstacles for world %q: %w", layout.Name, err)
	}
	return nil
}

// LoadWorld reads a saved layout. Obstacles come back in saved order.
func (r *WorldRepository) LoadWorld(ctx context.Context, name string) (world.Layout, error) {
	layout := world.Layout{Name: name}

	err := r.pool.QueryRow(ctx,
		`SELECT width, height FROM worlds WHERE name = $1`, name,
	).Scan(&layout.Width, &layout.Height)
	if errors.Is(err, pgx.ErrNoRows) {
		return world.Layout{}, fmt.Errorf("%w: %q", ErrWorldNotFound, name)
	}
	if err != nil {
		return world.Layout{}, fmt.Errorf("querying world %q: %w", name, err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT type, x, y, width, height
		 FROM world_obstacles WHERE world_name = $1 ORDER BY seq`, name)
	if err != nil {
		return world.Layout{}, fmt.Errorf("querying obstacles for world %q: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			typeName string
			x, y     int
			w, h     int
		)
		if err := rows.Scan(&typeName, &x, &y, &w, &h); err != nil {
			return world.Layout{}, fmt.Errorf("scanning obstacle row: %w", err)
		}
		t, err := model.ParseObstacleType(typeName)
		if err != nil {
			return world.Layout{}, fmt.Errorf("world %q: %w", name, err)
		}
		layout.Obstacles = append(layout.Obstacles, model.NewObstacle(t, x, y, w, h))
	}
	if err := rows.Err(); err != nil {
		return world.Layout{}, fmt.Errorf("iterating obstacle rows: %w", err)
	}

	return layout, nil
}

// ListWorlds returns the names of all saved layouts, ordered by name.
func (r *WorldRepository) ListWorlds(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM worlds ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying worlds: %w", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collecting world names: %w", err)
	}
	return names, nil
}
