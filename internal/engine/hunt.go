package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/violetbot/rpgengine/internal/data"
	"github.com/violetbot/rpgengine/internal/game/hunt"
	"github.com/violetbot/rpgengine/internal/model"
)

// HuntOutcome is the result of one attack round, bundling the turn
// logs with a session view and, when the hunt ended in a win, the
// updated player and any newly triggered fable.
type HuntOutcome struct {
	Logs      []hunt.TurnLog
	Session   hunt.View
	Player    *model.Player
	Triggered *model.Fable
}

// StartHunt opens a battle session against a monster. An empty name
// picks a random monster from the player's level tier; otherwise the
// name is matched case-insensitively as a substring. Only one session
// per player may exist at a time.
func (e *Engine) StartHunt(ctx context.Context, playerID, monsterName string) (hunt.View, error) {
	player, err := e.requireRegistered(ctx, playerID)
	if err != nil {
		return hunt.View{}, err
	}

	var monster model.Monster
	if monsterName == "" {
		pool := data.AvailableMonsters(player.Level)
		if len(pool) == 0 {
			return hunt.View{}, ErrMonsterNotFound
		}
		monster = pool[rand.IntN(len(pool))]
	} else {
		m, ok := data.FindMonster(player.Level, monsterName)
		if !ok {
			return hunt.View{}, ErrMonsterNotFound
		}
		monster = m
	}

	stats := e.characterStats(player)
	session := hunt.NewSession(playerID, stats, monster)
	if !e.sessions.PutIfAbsent(session) {
		return hunt.View{}, ErrHuntInProgress
	}
	return session.View(), nil
}

// Attack executes one battle round. On a win the monster rewards are
// scaled by the player's active buffs and persisted in a single
// transaction, the session is removed, and milestone triggers run; on
// a loss the session is gone too. Only the call that transitioned the
// session to won credits rewards, so a racing duplicate attack cannot
// pay out twice.
func (e *Engine) Attack(ctx context.Context, playerID string) (*HuntOutcome, error) {
	session, ok := e.sessions.Get(playerID)
	if !ok {
		return nil, ErrNoActiveHunt
	}
	player, err := e.requireRegistered(ctx, playerID)
	if err != nil {
		return nil, err
	}

	stats := e.characterStats(player)
	advantage := data.AdvantageMultiplier(player.Element, session.View().Monster.Element)
	logs, view := session.ExecuteTurn(stats, advantage)
	if logs == nil {
		// A concurrent command already finished this battle.
		return nil, ErrNoActiveHunt
	}

	outcome := &HuntOutcome{Logs: logs, Session: view}

	switch view.Status {
	case hunt.StatusWon:
		e.sessions.Delete(playerID)

		buffs, err := e.fables.ActiveBuffs(ctx, playerID)
		if err != nil {
			slog.Error("loading buffs failed, rewards unbuffed", "playerID", playerID, "error", err)
			buffs = model.BuffSet{}
		}

		exp := buffs.Apply(model.BuffExpEarn, view.Rewards.Exp)
		coins := buffs.Apply(model.BuffCoinEarn, view.Rewards.Coins)
		gems := buffs.Apply(model.BuffGemDrop, view.Rewards.Gems)

		updated, err := e.players.ApplyHuntReward(ctx, playerID, exp, coins, gems)
		if err != nil {
			return nil, fmt.Errorf("applying hunt reward for %q: %w", playerID, err)
		}
		outcome.Session.Rewards.Exp = exp
		outcome.Session.Rewards.Coins = coins
		outcome.Session.Rewards.Gems = gems
		outcome.Player = updated
		outcome.Triggered = e.checkMilestones(ctx, updated)

	case hunt.StatusLost:
		e.sessions.Delete(playerID)
	}

	return outcome, nil
}

// Flee tries to escape the active hunt. On success the session is
// removed; on failure it stays ongoing and the player may try again.
func (e *Engine) Flee(ctx context.Context, playerID string) (bool, error) {
	session, ok := e.sessions.Get(playerID)
	if !ok {
		return false, ErrNoActiveHunt
	}
	fled, view := session.Flee()
	if fled {
		e.sessions.Delete(playerID)
		return true, nil
	}
	if view.Status != hunt.StatusOngoing {
		return false, ErrNoActiveHunt
	}
	return false, nil
}

// HuntStatus returns a view of the player's active session.
func (e *Engine) HuntStatus(playerID string) (hunt.View, error) {
	session, ok := e.sessions.Get(playerID)
	if !ok {
		return hunt.View{}, ErrNoActiveHunt
	}
	return session.View(), nil
}

func (e *Engine) characterStats(player *model.Player) model.CombatStats {
	return data.CharacterStats(player.Level, data.ClassType(player.ClassType), player.Element)
}
