package engine

import (
	"context"
	"fmt"

	"github.com/violetbot/rpgengine/internal/model"
)

// FableView pairs a fable definition with the caller's progress on it.
type FableView struct {
	Fable     model.Fable
	Triggered bool
	Claimed   bool
}

// Fables lists every fable with the player's trigger/claim state.
func (e *Engine) Fables(ctx context.Context, playerID string) ([]FableView, error) {
	if _, err := e.requireRegistered(ctx, playerID); err != nil {
		return nil, err
	}

	fables, err := e.fables.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing fables: %w", err)
	}
	playerFables, err := e.fables.PlayerFables(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("listing player fables for %q: %w", playerID, err)
	}

	progress := make(map[int]model.PlayerFable, len(playerFables))
	for _, pf := range playerFables {
		progress[pf.FableID] = pf
	}

	views := make([]FableView, 0, len(fables))
	for _, f := range fables {
		pf, ok := progress[f.ID]
		views = append(views, FableView{
			Fable:     f,
			Triggered: ok && pf.TriggeredAt != nil,
			Claimed:   ok && pf.ClaimedAt != nil,
		})
	}
	return views, nil
}

// ClaimFable claims a triggered fable: the one-time reward is credited
// and the buff becomes active. Returns nil when there was nothing
// claimable.
func (e *Engine) ClaimFable(ctx context.Context, playerID string, fableID int) (*model.Fable, error) {
	if _, err := e.requireRegistered(ctx, playerID); err != nil {
		return nil, err
	}
	fable, err := e.fables.Claim(ctx, playerID, fableID)
	if err != nil {
		return nil, fmt.Errorf("claiming fable %d for %q: %w", fableID, playerID, err)
	}
	return fable, nil
}

// GrantFable force-assigns a fable, operator only.
func (e *Engine) GrantFable(ctx context.Context, playerID string, fableID int) error {
	return e.fables.Grant(ctx, playerID, fableID)
}
