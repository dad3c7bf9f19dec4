package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/talania/internal/profile"
)

const (
	opAdd  = "add"
	opMult = "mult"
)

// ProfileRepository stores player profiles in player_base_stats and
// player_debug_overrides. It implements profile.Repository.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// LoadProfile reads a player's base stats and overrides.
// found is false when the player has no rows in either table.
func (r *ProfileRepository) LoadProfile(ctx context.Context, id uuid.UUID) (profile.Profile, bool, error) {
	p := profile.Profile{
		BaseStats: make(map[string]float32),
		DebugAdd:  make(map[string]float32),
		DebugMult: make(map[string]float32),
	}

	rows, err := r.pool.Query(ctx,
		`SELECT stat_id, value FROM player_base_stats WHERE player_id = $1`, id)
	if err != nil {
		return p, false, fmt.Errorf("querying base stats for %s: %w", id, err)
	}
	for rows.Next() {
		var statID string
		var value float32
		if err := rows.Scan(&statID, &value); err != nil {
			rows.Close()
			return p, false, fmt.Errorf("scanning base stat row: %w", err)
		}
		p.BaseStats[statID] = value
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return p, false, fmt.Errorf("iterating base stat rows: %w", err)
	}

	rows, err = r.pool.Query(ctx,
		`SELECT stat_id, op, value FROM player_debug_overrides WHERE player_id = $1`, id)
	if err != nil {
		return p, false, fmt.Errorf("querying debug overrides for %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var statID, op string
		var value float32
		if err := rows.Scan(&statID, &op, &value); err != nil {
			return p, false, fmt.Errorf("scanning debug override row: %w", err)
		}
		switch op {
		case opAdd:
			p.DebugAdd[statID] = value
		case opMult:
			p.DebugMult[statID] = value
		default:
			slog.Warn("unknown debug override op", "player", id, "stat", statID, "op", op)
		}
	}
	if err := rows.Err(); err != nil {
		return p, false, fmt.Errorf("iterating debug override rows: %w", err)
	}

	return p, !p.Empty(), nil
}

// SaveProfile replaces the player's stored profile in one transaction.
func (r *ProfileRepository) SaveProfile(ctx context.Context, id uuid.UUID, p profile.Profile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			slog.Error("rollback failed", "player", id, "error", err)
		}
	}()

	if err := deleteProfileTx(ctx, tx, id); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for statID, v := range p.BaseStats {
		batch.Queue(`INSERT INTO player_base_stats (player_id, stat_id, value) VALUES ($1, $2, $3)`,
			id, statID, v)
	}
	for statID, v := range p.DebugAdd {
		batch.Queue(`INSERT INTO player_debug_overrides (player_id, stat_id, op, value) VALUES ($1, $2, $3, $4)`,
			id, statID, opAdd, v)
	}
	for statID, v := range p.DebugMult {
		batch.Queue(`INSERT INTO player_debug_overrides (player_id, stat_id, op, value) VALUES ($1, $2, $3, $4)`,
			id, statID, opMult, v)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting profile rows for %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing profile save: %w", err)
	}
	return nil
}

// DeleteProfile removes every stored row for the player.
func (r *ProfileRepository) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			slog.Error("rollback failed", "player", id, "error", err)
		}
	}()

	if err := deleteProfileTx(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing profile delete: %w", err)
	}
	return nil
}

func deleteProfileTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM player_base_stats WHERE player_id = $1`, id); err != nil {
		return fmt.Errorf("deleting base stats for %s: %w", id, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM player_debug_overrides WHERE player_id = $1`, id); err != nil {
		return fmt.Errorf("deleting debug overrides for %s: %w", id, err)
	}
	return nil
}
