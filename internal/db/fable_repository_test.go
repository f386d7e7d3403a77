package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/violetbot/rpgengine/internal/model"
	"github.com/violetbot/rpgengine/internal/testutil"
)

func fableByName(t *testing.T, repo *FableRepository, name string) model.Fable {
	t.Helper()
	fables, err := repo.All(context.Background())
	require.NoError(t, err)
	for _, f := range fables {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("fable %q not seeded", name)
	return model.Fable{}
}

func setupFableTest(t *testing.T) (*PlayerRepository, *FableRepository) {
	t.Helper()
	pool := testutil.SetupTestDB(t)
	players := NewPlayerRepository(pool)
	fables := NewFableRepository(pool)
	_, err := players.Register(context.Background(), "u1", "Hero", model.GenderMale)
	require.NoError(t, err)
	return players, fables
}

func TestFableRepository_All(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	repo := NewFableRepository(pool)

	fables, err := repo.All(context.Background())
	require.NoError(t, err)
	require.Len(t, fables, 5)
	for i := 1; i < len(fables); i++ {
		require.GreaterOrEqual(t, fables[i].MinLevel, fables[i-1].MinLevel,
			"fables must come back in min-level order")
	}
}

func TestFableRepository_CheckAndTrigger(t *testing.T) {
	_, fables := setupFableTest(t)
	ctx := context.Background()

	// Below the threshold nothing fires.
	f, err := fables.CheckAndTrigger(ctx, "u1", model.ConditionBattleWins, 4)
	require.NoError(t, err)
	require.Nil(t, f)

	// 20 wins satisfies two battle-win fables, but only the lowest
	// min-level one fires per call.
	f, err = fables.CheckAndTrigger(ctx, "u1", model.ConditionBattleWins, 20)
	require.NoError(t, err)
	require.NotNil(t, f)
	require.Equal(t, "The Lost Coin", f.Name)

	f, err = fables.CheckAndTrigger(ctx, "u1", model.ConditionBattleWins, 20)
	require.NoError(t, err)
	require.NotNil(t, f)
	require.Equal(t, "Champion's Path", f.Name)

	// Both are now triggered; nothing left to fire.
	f, err = fables.CheckAndTrigger(ctx, "u1", model.ConditionBattleWins, 20)
	require.NoError(t, err)
	require.Nil(t, f, "a fable must trigger exactly once")
}

func TestFableRepository_Claim(t *testing.T) {
	players, fables := setupFableTest(t)
	ctx := context.Background()
	lostCoin := fableByName(t, fables, "The Lost Coin")

	// Claiming before the trigger yields nothing.
	f, err := fables.Claim(ctx, "u1", lostCoin.ID)
	require.NoError(t, err)
	require.Nil(t, f)

	_, err = fables.CheckAndTrigger(ctx, "u1", model.ConditionBattleWins, 5)
	require.NoError(t, err)

	f, err = fables.Claim(ctx, "u1", lostCoin.ID)
	require.NoError(t, err)
	require.NotNil(t, f)
	require.Equal(t, "The Lost Coin", f.Name)

	// Reward credited once, buff now active.
	p, err := players.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, lostCoin.RewardCoins, p.Coins)
	require.Equal(t, lostCoin.RewardGems, p.Gems)

	buffs, err := fables.ActiveBuffs(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, lostCoin.BuffValue, buffs[model.BuffCoinEarn])

	// Second claim is a no-op and credits nothing.
	f, err = fables.Claim(ctx, "u1", lostCoin.ID)
	require.NoError(t, err)
	require.Nil(t, f)
	p, err = players.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, lostCoin.RewardCoins, p.Coins, "double claim must not credit twice")

	// Unknown fable ids are a quiet no-op too.
	f, err = fables.Claim(ctx, "u1", 99999)
	require.NoError(t, err)
	require.Nil(t, f)
}

func TestFableRepository_BuffStacking(t *testing.T) {
	_, fables := setupFableTest(t)
	ctx := context.Background()

	// Warrior's Trial and The Eternal Streak both carry exp_earn.
	trial := fableByName(t, fables, "Warrior's Trial")
	streak := fableByName(t, fables, "The Eternal Streak")

	require.NoError(t, fables.Grant(ctx, "u1", trial.ID))
	require.NoError(t, fables.Grant(ctx, "u1", streak.ID))

	buffs, err := fables.ActiveBuffs(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, trial.BuffValue+streak.BuffValue, buffs[model.BuffExpEarn])
}

func TestFableRepository_PlayerFables(t *testing.T) {
	_, fables := setupFableTest(t)
	ctx := context.Background()

	_, err := fables.CheckAndTrigger(ctx, "u1", model.ConditionBattleWins, 5)
	require.NoError(t, err)

	pfs, err := fables.PlayerFables(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pfs, 1)
	require.NotNil(t, pfs[0].TriggeredAt)
	require.Nil(t, pfs[0].ClaimedAt)
	require.False(t, pfs[0].Active)
}
