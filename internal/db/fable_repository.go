package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/violetbot/rpgengine/internal/model"
)

const fableColumns = `id, name, lore, min_level, condition_type, condition_value,
	reward_coins, reward_gems, buff_type, buff_value, created_at`

// FableRepository manages milestone definitions and per-player
// trigger/claim state.
type FableRepository struct {
	pool *pgxpool.Pool
}

// NewFableRepository creates a FableRepository.
func NewFableRepository(pool *pgxpool.Pool) *FableRepository {
	return &FableRepository{pool: pool}
}

func scanFable(row pgx.Row) (*model.Fable, error) {
	var f model.Fable
	err := row.Scan(&f.ID, &f.Name, &f.Lore, &f.MinLevel, &f.ConditionType, &f.ConditionValue,
		&f.RewardCoins, &f.RewardGems, &f.BuffType, &f.BuffValue, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// All returns every fable definition in ascending min-level order,
// which is also the trigger evaluation order.
func (r *FableRepository) All(ctx context.Context) ([]model.Fable, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+fableColumns+` FROM fables ORDER BY min_level ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying fables: %w", err)
	}
	defer rows.Close()

	var fables []model.Fable
	for rows.Next() {
		f, err := scanFable(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning fable row: %w", err)
		}
		fables = append(fables, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fable rows: %w", err)
	}
	return fables, nil
}

// PlayerFables returns the player's trigger/claim records.
func (r *FableRepository) PlayerFables(ctx context.Context, playerID string) ([]model.PlayerFable, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT player_id, fable_id, triggered_at, claimed_at, active
		 FROM player_fables WHERE player_id = $1`, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying player fables for %q: %w", playerID, err)
	}
	defer rows.Close()

	var pfs []model.PlayerFable
	for rows.Next() {
		var pf model.PlayerFable
		if err := rows.Scan(&pf.PlayerID, &pf.FableID, &pf.TriggeredAt, &pf.ClaimedAt, &pf.Active); err != nil {
			return nil, fmt.Errorf("scanning player fable row: %w", err)
		}
		pfs = append(pfs, pf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating player fable rows: %w", err)
	}
	return pfs, nil
}

// CheckAndTrigger marks at most one fable as triggered: the first, in
// ascending min-level order, whose condition type matches and whose
// threshold the value meets, skipping fables already triggered for
// this player. The insert is conflict-guarded, so a racing duplicate
// call cannot trigger the same fable twice.
func (r *FableRepository) CheckAndTrigger(ctx context.Context, playerID string, cond model.ConditionType, value int64) (*model.Fable, error) {
	fables, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	playerFables, err := r.PlayerFables(ctx, playerID)
	if err != nil {
		return nil, err
	}
	triggered := make(map[int]bool, len(playerFables))
	for _, pf := range playerFables {
		triggered[pf.FableID] = true
	}

	for i := range fables {
		f := &fables[i]
		if triggered[f.ID] || f.ConditionType != cond || value < f.ConditionValue {
			continue
		}

		tag, err := r.pool.Exec(ctx,
			`INSERT INTO player_fables (player_id, fable_id, triggered_at)
			 VALUES ($1, $2, now())
			 ON CONFLICT (player_id, fable_id) DO NOTHING`,
			playerID, f.ID)
		if err != nil {
			return nil, fmt.Errorf("triggering fable %d for %q: %w", f.ID, playerID, err)
		}
		if tag.RowsAffected() == 0 {
			// Lost a race with a concurrent trigger of the same fable.
			continue
		}
		return f, nil
	}
	return nil, nil
}

// Claim finalizes a triggered fable: one transaction locks the player
// row, flips the claim and activates the buff, and credits the
// one-time coin/gem reward. Returns nil, nil when the fable id is
// unknown or the player has nothing claimable for it.
func (r *FableRepository) Claim(ctx context.Context, playerID string, fableID int) (*model.Fable, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "playerID", playerID, "fableID", fableID, "error", err)
		}
	}()

	fable, err := scanFable(tx.QueryRow(ctx,
		`SELECT `+fableColumns+` FROM fables WHERE id = $1`, fableID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying fable %d: %w", fableID, err)
	}

	if _, err := lockPlayer(ctx, tx, playerID); err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE player_fables SET claimed_at = now(), active = true
		 WHERE player_id = $1 AND fable_id = $2 AND triggered_at IS NOT NULL AND claimed_at IS NULL`,
		playerID, fableID)
	if err != nil {
		return nil, fmt.Errorf("claiming fable %d for %q: %w", fableID, playerID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE players SET coins = coins + $1, gems = gems + $2, updated_at = now() WHERE player_id = $3`,
		fable.RewardCoins, fable.RewardGems, playerID); err != nil {
		return nil, fmt.Errorf("crediting fable reward for %q: %w", playerID, err)
	}

	if err := logEvent(ctx, tx, playerID, "fable_claim", 0, fable.RewardCoins, map[string]any{"fableID": fableID, "gems": fable.RewardGems}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return fable, nil
}

// ActiveBuffs sums buff percentages across the player's active fables
// grouped by buff type. Same-type buffs stack additively; the result
// is sparse.
func (r *FableRepository) ActiveBuffs(ctx context.Context, playerID string) (model.BuffSet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT f.buff_type, f.buff_value
		 FROM player_fables pf
		 JOIN fables f ON f.id = pf.fable_id
		 WHERE pf.player_id = $1 AND pf.active = true`, playerID)
	if err != nil {
		return nil, fmt.Errorf("querying active buffs for %q: %w", playerID, err)
	}
	defer rows.Close()

	buffs := make(model.BuffSet)
	for rows.Next() {
		var t model.BuffType
		var v int
		if err := rows.Scan(&t, &v); err != nil {
			return nil, fmt.Errorf("scanning buff row: %w", err)
		}
		buffs[t] += v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating buff rows: %w", err)
	}
	return buffs, nil
}

// Grant force-assigns a fable to a player as triggered and active,
// skipping the claim flow. Operator tool.
func (r *FableRepository) Grant(ctx context.Context, playerID string, fableID int) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO player_fables (player_id, fable_id, triggered_at, active)
		 VALUES ($1, $2, now(), true)
		 ON CONFLICT (player_id, fable_id) DO UPDATE SET triggered_at = now(), active = true`,
		playerID, fableID)
	if err != nil {
		return fmt.Errorf("granting fable %d to %q: %w", fableID, playerID, err)
	}
	return nil
}
