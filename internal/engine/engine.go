// Package engine ties progression storage, fable buffs and hunt
// sessions into the player-facing operations. Every method takes the
// caller's player id; the transport layer only parses verbs and
// relays reply strings.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/violetbot/rpgengine/internal/config"
	"github.com/violetbot/rpgengine/internal/db"
	"github.com/violetbot/rpgengine/internal/game/hunt"
	"github.com/violetbot/rpgengine/internal/model"
)

// Business-rule sentinels. Their messages are shown to players
// verbatim; storage failures are logged and replaced with a generic
// reply instead.
var (
	ErrNotRegistered   = errors.New("you are not registered yet")
	ErrHuntInProgress  = errors.New("you already have an active hunt")
	ErrNoActiveHunt    = errors.New("you have no active hunt")
	ErrMonsterNotFound = errors.New("no such monster at your level")
	ErrUnknownClass    = errors.New("unknown class")
	ErrClassLocked     = errors.New("class not unlocked yet")
	ErrUnknownGender   = errors.New("gender must be male or female")
)

// Engine is the progression and combat orchestrator. Safe for
// concurrent use; per-player write ordering is enforced by row locks
// in storage and by each session's own lock in memory.
type Engine struct {
	players  *db.PlayerRepository
	fables   *db.FableRepository
	sessions *hunt.Registry
	game     config.GameConfig

	mu       sync.Mutex
	lastTick map[string]time.Time

	now func() time.Time
}

// New creates an Engine.
func New(players *db.PlayerRepository, fables *db.FableRepository, game config.GameConfig) *Engine {
	return &Engine{
		players:  players,
		fables:   fables,
		sessions: hunt.NewRegistry(),
		game:     game,
		lastTick: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Register creates or refreshes the player record. Re-registration
// keeps all progress and only updates name and gender.
func (e *Engine) Register(ctx context.Context, playerID, name, gender string) (*model.Player, error) {
	g, err := model.ParseGender(gender)
	if err != nil {
		return nil, ErrUnknownGender
	}
	player, err := e.players.Register(ctx, playerID, name, g)
	if err != nil {
		return nil, fmt.Errorf("registering %q: %w", playerID, err)
	}
	return player, nil
}

// Profile returns the player together with their active buff totals.
func (e *Engine) Profile(ctx context.Context, playerID string) (*model.Player, model.BuffSet, error) {
	player, err := e.players.Get(ctx, playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading player %q: %w", playerID, err)
	}
	if player == nil || !player.Registered {
		return nil, nil, ErrNotRegistered
	}
	buffs, err := e.fables.ActiveBuffs(ctx, playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading buffs for %q: %w", playerID, err)
	}
	return player, buffs, nil
}

// requireRegistered loads the player or fails with ErrNotRegistered.
func (e *Engine) requireRegistered(ctx context.Context, playerID string) (*model.Player, error) {
	player, err := e.players.Get(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("loading player %q: %w", playerID, err)
	}
	if player == nil || !player.Registered {
		return nil, ErrNotRegistered
	}
	return player, nil
}

// checkMilestones runs the fable trigger conditions derived from the
// player's current state. Trigger failures never fail the calling
// operation; a missed trigger re-fires on the next check.
func (e *Engine) checkMilestones(ctx context.Context, player *model.Player) *model.Fable {
	checks := []struct {
		cond  model.ConditionType
		value int64
	}{
		{model.ConditionLevel, int64(player.Level)},
		{model.ConditionBattleWins, int64(player.BattleWins)},
		{model.ConditionGemsEarned, player.Gems},
		{model.ConditionStreak, int64(player.Streak)},
	}
	for _, c := range checks {
		fable, err := e.fables.CheckAndTrigger(ctx, player.ID, c.cond, c.value)
		if err != nil {
			slog.Error("fable trigger check failed", "playerID", player.ID, "condition", c.cond, "error", err)
			continue
		}
		if fable != nil {
			return fable
		}
	}
	return nil
}
