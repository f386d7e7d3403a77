package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/violetbot/rpgengine/internal/data"
	"github.com/violetbot/rpgengine/internal/model"
)

const playerColumns = `player_id, is_registered, name, gender, exp, level, rank_key, rank_display,
	rank_level_cap, streak, coins, gems, battle_wins, class_type, element,
	last_seen, registered_at, updated_at`

// PlayerRepository manages player progression rows.
type PlayerRepository struct {
	pool *pgxpool.Pool
}

// NewPlayerRepository creates a PlayerRepository.
func NewPlayerRepository(pool *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{pool: pool}
}

func scanPlayer(row pgx.Row) (*model.Player, error) {
	var p model.Player
	err := row.Scan(
		&p.ID, &p.Registered, &p.Name, &p.Gender, &p.Exp, &p.Level, &p.RankKey, &p.RankDisplay,
		&p.RankLevelCap, &p.Streak, &p.Coins, &p.Gems, &p.BattleWins, &p.ClassType, &p.Element,
		&p.LastSeen, &p.RegisteredAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get loads a player by id. Returns nil, nil when the row is absent.
func (r *PlayerRepository) Get(ctx context.Context, playerID string) (*model.Player, error) {
	p, err := scanPlayer(r.pool.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE player_id = $1`, playerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying player %q: %w", playerID, err)
	}
	return p, nil
}

// Register upserts a player. First registration starts at the lowest
// bracket with zeroed progress; re-registration only refreshes name
// and gender, never resets rank, level or currency.
func (r *PlayerRepository) Register(ctx context.Context, playerID, name string, gender model.Gender) (*model.Player, error) {
	base := data.LowestBracket()
	display := data.RankTitle(base.Key, gender)

	p, err := scanPlayer(r.pool.QueryRow(ctx,
		`INSERT INTO players (player_id, is_registered, name, gender, rank_key, rank_display, rank_level_cap, last_seen)
		 VALUES ($1, true, $2, $3, $4, $5, $6, now())
		 ON CONFLICT (player_id) DO UPDATE SET
		   is_registered = true,
		   name = EXCLUDED.name,
		   gender = EXCLUDED.gender,
		   rank_display = (SELECT CASE WHEN EXCLUDED.gender = 'female' THEN b.female_title ELSE b.male_title END
		                   FROM rank_brackets b WHERE b.rank_key = players.rank_key),
		   updated_at = now()
		 RETURNING `+playerColumns,
		playerID, name, gender, base.Key, display, base.MaxLevel))
	if err != nil {
		return nil, fmt.Errorf("registering player %q: %w", playerID, err)
	}
	return p, nil
}

func logEvent(ctx context.Context, tx pgx.Tx, playerID, eventType string, expDelta, coinDelta int64, meta any) error {
	var metaJSON []byte
	if meta != nil {
		b, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encoding event meta: %w", err)
		}
		metaJSON = b
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO player_events (player_id, type, exp_delta, coin_delta, meta) VALUES ($1, $2, $3, $4, $5)`,
		playerID, eventType, expDelta, coinDelta, metaJSON,
	); err != nil {
		return fmt.Errorf("logging %s event: %w", eventType, err)
	}
	return nil
}

// inTx runs fn inside a transaction with commit/rollback handling.
func (r *PlayerRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) (*model.Player, error)) (*model.Player, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "error", err)
		}
	}()

	p, err := fn(tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return p, nil
}

// lockPlayer reads a player row FOR UPDATE inside tx.
func lockPlayer(ctx context.Context, tx pgx.Tx, playerID string) (*model.Player, error) {
	p, err := scanPlayer(tx.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE player_id = $1 FOR UPDATE`, playerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("locking player %q: %w", playerID, err)
	}
	return p, nil
}

// AddExperience applies exp/streak/coin deltas under a row lock.
// Exp, streak and coins floor at zero; the persisted level is the
// theoretical level clamped into the current rank bracket, so a
// player who out-earns their cap stalls until promotion. A call with
// all-zero deltas is a plain read.
func (r *PlayerRepository) AddExperience(ctx context.Context, playerID string, expDelta, streakDelta, coinDelta int64) (*model.Player, error) {
	if expDelta == 0 && streakDelta == 0 && coinDelta == 0 {
		return r.Get(ctx, playerID)
	}

	return r.inTx(ctx, func(tx pgx.Tx) (*model.Player, error) {
		player, err := lockPlayer(ctx, tx, playerID)
		if err != nil {
			return nil, err
		}

		newExp := max(int64(0), player.Exp+expDelta)
		level := data.ClampLevel(data.ComputeLevel(newExp), player.RankKey)

		updated, err := scanPlayer(tx.QueryRow(ctx,
			`UPDATE players
			 SET exp = $1,
			     level = $2,
			     streak = GREATEST(0, streak + $3),
			     coins = GREATEST(0, coins + $4),
			     last_seen = now(),
			     updated_at = now()
			 WHERE player_id = $5
			 RETURNING `+playerColumns,
			newExp, level, streakDelta, coinDelta, playerID))
		if err != nil {
			return nil, fmt.Errorf("updating player %q: %w", playerID, err)
		}

		if err := logEvent(ctx, tx, playerID, "exp_award", expDelta, coinDelta, map[string]any{"streakDelta": streakDelta}); err != nil {
			return nil, err
		}
		return updated, nil
	})
}

// ApplyHuntReward credits a battle victory in one locked transaction:
// exp, coins, gems and the battle-win counter move together, so a
// concurrent passive tick can never shear the update.
func (r *PlayerRepository) ApplyHuntReward(ctx context.Context, playerID string, exp, coins, gems int64) (*model.Player, error) {
	return r.inTx(ctx, func(tx pgx.Tx) (*model.Player, error) {
		player, err := lockPlayer(ctx, tx, playerID)
		if err != nil {
			return nil, err
		}

		newExp := max(int64(0), player.Exp+exp)
		level := data.ClampLevel(data.ComputeLevel(newExp), player.RankKey)

		updated, err := scanPlayer(tx.QueryRow(ctx,
			`UPDATE players
			 SET exp = $1,
			     level = $2,
			     coins = GREATEST(0, coins + $3),
			     gems = GREATEST(0, gems + $4),
			     battle_wins = battle_wins + 1,
			     last_seen = now(),
			     updated_at = now()
			 WHERE player_id = $5
			 RETURNING `+playerColumns,
			newExp, level, coins, gems, playerID))
		if err != nil {
			return nil, fmt.Errorf("applying hunt reward for %q: %w", playerID, err)
		}

		if err := logEvent(ctx, tx, playerID, "hunt_reward", exp, coins, map[string]any{"gems": gems}); err != nil {
			return nil, err
		}
		return updated, nil
	})
}

// Promote moves the player one bracket up the ladder. All three gates
// (theoretical level, streak, coins) must pass; failures carry the
// specific unmet condition and wrap ErrPromotionBlocked.
func (r *PlayerRepository) Promote(ctx context.Context, playerID string) (*model.Player, error) {
	return r.inTx(ctx, func(tx pgx.Tx) (*model.Player, error) {
		player, err := lockPlayer(ctx, tx, playerID)
		if err != nil {
			return nil, err
		}

		nextKey, ok := data.NextRankKey(player.RankKey)
		if !ok {
			return nil, ErrHighestRank
		}
		next, ok := data.BracketByKey(nextKey)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRank, nextKey)
		}

		theoretical := data.ComputeLevel(player.Exp)
		if theoretical < next.MinLevel {
			return nil, fmt.Errorf("%w: theoretical level %d, need >= %d", ErrPromotionBlocked, theoretical, next.MinLevel)
		}
		if player.Streak < next.StreakReq {
			return nil, fmt.Errorf("%w: streak %d, need >= %d", ErrPromotionBlocked, player.Streak, next.StreakReq)
		}
		if player.Coins < next.CoinCost {
			return nil, fmt.Errorf("%w: coins %d, need %d", ErrPromotionBlocked, player.Coins, next.CoinCost)
		}

		level := data.ClampLevel(theoretical, next.Key)
		display := data.RankTitle(next.Key, player.Gender)

		updated, err := scanPlayer(tx.QueryRow(ctx,
			`UPDATE players
			 SET rank_key = $1,
			     rank_display = $2,
			     rank_level_cap = $3,
			     level = $4,
			     coins = coins - $5,
			     updated_at = now()
			 WHERE player_id = $6
			 RETURNING `+playerColumns,
			next.Key, display, next.MaxLevel, level, next.CoinCost, playerID))
		if err != nil {
			return nil, fmt.Errorf("promoting player %q: %w", playerID, err)
		}

		if err := logEvent(ctx, tx, playerID, "promotion", 0, -next.CoinCost, map[string]any{"from": player.RankKey, "to": next.Key}); err != nil {
			return nil, err
		}
		return updated, nil
	})
}

// AdjustPatch is the operator escape hatch payload for AdminAdjust.
// Nil fields keep the current value.
type AdjustPatch struct {
	Level      *int
	Exp        *int64
	Coins      *int64
	Gems       *int64
	BattleWins *int
	Streak     *int
	RankKey    *string
	ClassType  *string
	Element    *string
}

// AdminAdjust directly sets player fields, bypassing promotion gating
// entirely. The target rank key must exist; when only a level is
// given, exp is derived from the cumulative curve for that level; the
// level is always clamped into the resulting bracket and the display
// title re-derived.
func (r *PlayerRepository) AdminAdjust(ctx context.Context, playerID string, patch AdjustPatch) (*model.Player, error) {
	return r.inTx(ctx, func(tx pgx.Tx) (*model.Player, error) {
		player, err := lockPlayer(ctx, tx, playerID)
		if err != nil {
			return nil, err
		}

		rankKey := player.RankKey
		if patch.RankKey != nil {
			rankKey = *patch.RankKey
		}
		bracket, ok := data.BracketByKey(rankKey)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRank, rankKey)
		}

		levelInput := player.Level
		if patch.Level != nil {
			levelInput = *patch.Level
		}
		levelInput = min(max(levelInput, 1), data.MaxCurveLevel)
		level := data.ClampLevel(levelInput, rankKey)

		exp := data.CumulativeExp(level)
		if patch.Exp != nil {
			exp = max(int64(0), *patch.Exp)
		} else if patch.Level == nil {
			exp = player.Exp
		}

		coins := pick(patch.Coins, player.Coins)
		gems := pick(patch.Gems, player.Gems)
		battleWins := pick(patch.BattleWins, player.BattleWins)
		streak := pick(patch.Streak, player.Streak)
		classType := player.ClassType
		if patch.ClassType != nil {
			classType = *patch.ClassType
		}
		element := string(player.Element)
		if patch.Element != nil {
			element = *patch.Element
		}
		display := data.RankTitle(rankKey, player.Gender)

		updated, err := scanPlayer(tx.QueryRow(ctx,
			`UPDATE players
			 SET level = $1, exp = $2, coins = GREATEST(0, $3::bigint), gems = GREATEST(0, $4::bigint),
			     battle_wins = GREATEST(0, $5::int), streak = GREATEST(0, $6::int),
			     rank_key = $7, rank_display = $8, rank_level_cap = $9,
			     class_type = $10, element = $11, updated_at = now()
			 WHERE player_id = $12
			 RETURNING `+playerColumns,
			level, exp, coins, gems, battleWins, streak, rankKey, display, bracket.MaxLevel,
			classType, element, playerID))
		if err != nil {
			return nil, fmt.Errorf("adjusting player %q: %w", playerID, err)
		}

		if err := logEvent(ctx, tx, playerID, "admin_adjust", 0, 0, patch); err != nil {
			return nil, err
		}
		return updated, nil
	})
}

// SetClass changes the player's class preset.
func (r *PlayerRepository) SetClass(ctx context.Context, playerID string, class string) (*model.Player, error) {
	return r.inTx(ctx, func(tx pgx.Tx) (*model.Player, error) {
		if _, err := lockPlayer(ctx, tx, playerID); err != nil {
			return nil, err
		}

		updated, err := scanPlayer(tx.QueryRow(ctx,
			`UPDATE players SET class_type = $1, updated_at = now() WHERE player_id = $2
			 RETURNING `+playerColumns,
			class, playerID))
		if err != nil {
			return nil, fmt.Errorf("setting class for %q: %w", playerID, err)
		}

		if err := logEvent(ctx, tx, playerID, "class_change", 0, 0, map[string]any{"class": class}); err != nil {
			return nil, err
		}
		return updated, nil
	})
}

func pick[T any](p *T, fallback T) T {
	if p != nil {
		return *p
	}
	return fallback
}
