package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/violetbot/rpgengine/internal/data"
	"github.com/violetbot/rpgengine/internal/db"
	"github.com/violetbot/rpgengine/internal/model"
)

// TickResult reports a passive experience award. Player is nil when
// the tick was skipped (cooldown, or the sender is not registered).
type TickResult struct {
	Player    *model.Player
	Exp       int64
	Coins     int64
	Triggered *model.Fable
}

// Promote attempts to move the player one rank up. Gate failures come
// back as db.ErrPromotionBlocked with the unmet condition attached.
func (e *Engine) Promote(ctx context.Context, playerID string) (*model.Player, error) {
	if _, err := e.requireRegistered(ctx, playerID); err != nil {
		return nil, err
	}
	player, err := e.players.Promote(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return player, nil
}

// ExpTick awards passive experience for activity. At most one award
// per player per cooldown window; skipped ticks return a nil-player
// result. The base award is scaled by the rank multiplier and any
// exp/coin buffs, and the activity streak grows by one.
func (e *Engine) ExpTick(ctx context.Context, playerID string) (*TickResult, error) {
	player, err := e.players.Get(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("loading player %q: %w", playerID, err)
	}
	if player == nil || !player.Registered {
		return &TickResult{}, nil
	}

	cooldown := time.Duration(e.game.ExpTickCooldownSeconds) * time.Second
	now := e.now()

	e.mu.Lock()
	if last, ok := e.lastTick[playerID]; ok && now.Sub(last) < cooldown {
		e.mu.Unlock()
		return &TickResult{}, nil
	}
	e.lastTick[playerID] = now
	e.mu.Unlock()

	// The window is reserved up front so rapid duplicates skip, but a
	// failed award hands it back; the player keeps the tick.
	release := func() {
		e.mu.Lock()
		if t, ok := e.lastTick[playerID]; ok && t.Equal(now) {
			delete(e.lastTick, playerID)
		}
		e.mu.Unlock()
	}

	buffs, err := e.fables.ActiveBuffs(ctx, playerID)
	if err != nil {
		release()
		return nil, fmt.Errorf("loading buffs for %q: %w", playerID, err)
	}

	exp := int64(math.Round(float64(e.game.ExpTickExp) * data.ExpMultiplier(player.RankKey)))
	exp = buffs.Apply(model.BuffExpEarn, exp)
	coins := buffs.Apply(model.BuffCoinEarn, e.game.ExpTickCoins)

	updated, err := e.players.AddExperience(ctx, playerID, exp, 1, coins)
	if err != nil {
		release()
		return nil, fmt.Errorf("awarding passive exp for %q: %w", playerID, err)
	}

	return &TickResult{
		Player:    updated,
		Exp:       exp,
		Coins:     coins,
		Triggered: e.checkMilestones(ctx, updated),
	}, nil
}

// ChooseClass switches the player to a class preset, gated by the
// preset's unlock level.
func (e *Engine) ChooseClass(ctx context.Context, playerID, className string) (*model.Player, error) {
	player, err := e.requireRegistered(ctx, playerID)
	if err != nil {
		return nil, err
	}

	class, ok := data.ParseClass(className)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, className)
	}
	if required := data.ClassRequiredLevel(class); player.Level < required {
		return nil, fmt.Errorf("%w: %s needs level %d", ErrClassLocked, class, required)
	}

	return e.players.SetClass(ctx, playerID, string(class))
}

// AdminAdjust is the operator escape hatch: it sets fields directly
// and bypasses promotion gating.
func (e *Engine) AdminAdjust(ctx context.Context, playerID string, patch db.AdjustPatch) (*model.Player, error) {
	if patch.Element != nil {
		if _, ok := model.ParseElement(*patch.Element); !ok {
			return nil, fmt.Errorf("unknown element %q", *patch.Element)
		}
	}
	if patch.ClassType != nil {
		if _, ok := data.ParseClass(*patch.ClassType); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownClass, *patch.ClassType)
		}
	}
	return e.players.AdminAdjust(ctx, playerID, patch)
}
