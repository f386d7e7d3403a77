package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/violetbot/rpgengine/internal/config"
	"github.com/violetbot/rpgengine/internal/data"
	"github.com/violetbot/rpgengine/internal/db"
	"github.com/violetbot/rpgengine/internal/game/hunt"
	"github.com/violetbot/rpgengine/internal/testutil"
)

func setupEngine(t *testing.T) *Engine {
	t.Helper()
	pool := testutil.SetupTestDB(t)
	players := db.NewPlayerRepository(pool)
	fables := db.NewFableRepository(pool)
	return New(players, fables, config.Default().Game)
}

func TestEngine_RegisterAndProfile(t *testing.T) {
	eng := setupEngine(t)
	ctx := context.Background()

	if _, _, err := eng.Profile(ctx, "u1"); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("Profile before register: %v, want ErrNotRegistered", err)
	}

	p, err := eng.Register(ctx, "u1", "Alice", "female")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if p.Name != "Alice" || p.RankKey != "serf" {
		t.Errorf("registered player = %+v", p)
	}

	p, buffs, err := eng.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.Name != "Alice" || len(buffs) != 0 {
		t.Errorf("profile = %+v, buffs = %v", p, buffs)
	}

	if _, err := eng.Register(ctx, "u2", "Pat", "robot"); !errors.Is(err, ErrUnknownGender) {
		t.Errorf("Register with bad gender: %v, want ErrUnknownGender", err)
	}
}

func TestEngine_ExpTickCooldown(t *testing.T) {
	eng := setupEngine(t)
	ctx := context.Background()

	now := time.Unix(1_000_000, 0)
	eng.now = func() time.Time { return now }

	// Ticks for strangers are silently skipped.
	res, err := eng.ExpTick(ctx, "stranger")
	if err != nil {
		t.Fatalf("ExpTick: %v", err)
	}
	if res.Player != nil {
		t.Error("tick awarded to an unregistered sender")
	}

	if _, err := eng.Register(ctx, "u1", "Bob", "m"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	res, err = eng.ExpTick(ctx, "u1")
	if err != nil {
		t.Fatalf("ExpTick: %v", err)
	}
	if res.Player == nil {
		t.Fatal("first tick skipped")
	}
	if res.Exp != 12 || res.Coins != 1 {
		t.Errorf("award = %d exp / %d coins, want 12 / 1 at serf rank", res.Exp, res.Coins)
	}
	if res.Player.Exp != 12 || res.Player.Streak != 1 || res.Player.Coins != 1 {
		t.Errorf("player after tick = %+v", res.Player)
	}

	// Within the cooldown window nothing happens.
	now = now.Add(29 * time.Second)
	res, err = eng.ExpTick(ctx, "u1")
	if err != nil {
		t.Fatalf("ExpTick: %v", err)
	}
	if res.Player != nil {
		t.Error("tick awarded inside the cooldown window")
	}

	now = now.Add(2 * time.Second)
	res, err = eng.ExpTick(ctx, "u1")
	if err != nil {
		t.Fatalf("ExpTick: %v", err)
	}
	if res.Player == nil {
		t.Fatal("tick skipped after the cooldown expired")
	}
	if res.Player.Exp != 24 || res.Player.Streak != 2 {
		t.Errorf("player after second tick = %+v", res.Player)
	}
}

func TestEngine_ExpTickFailureReleasesCooldown(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	players := db.NewPlayerRepository(pool)
	fables := db.NewFableRepository(pool)
	eng := New(players, fables, config.Default().Game)
	ctx := context.Background()

	if _, err := eng.Register(ctx, "u1", "Hal", "m"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	now := time.Unix(1_000_000, 0)
	eng.now = func() time.Time { return now }

	// Break the award mid-transaction: the audit insert fails, the tx
	// rolls back and the tick must not consume the cooldown window.
	if _, err := pool.Exec(ctx, `DROP TABLE player_events`); err != nil {
		t.Fatalf("dropping player_events: %v", err)
	}
	if _, err := eng.ExpTick(ctx, "u1"); err == nil {
		t.Fatal("ExpTick succeeded without the audit table")
	}
	eng.mu.Lock()
	_, reserved := eng.lastTick["u1"]
	eng.mu.Unlock()
	if reserved {
		t.Fatal("failed tick still consumed the cooldown window")
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE player_events (
		    id         BIGSERIAL PRIMARY KEY,
		    player_id  TEXT NOT NULL,
		    type       TEXT NOT NULL,
		    exp_delta  BIGINT NOT NULL DEFAULT 0,
		    coin_delta BIGINT NOT NULL DEFAULT 0,
		    meta       JSONB,
		    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		t.Fatalf("recreating player_events: %v", err)
	}

	res, err := eng.ExpTick(ctx, "u1")
	if err != nil {
		t.Fatalf("ExpTick after recovery: %v", err)
	}
	if res.Player == nil {
		t.Fatal("tick still skipped after the failed attempt")
	}
	if res.Player.Exp != 12 {
		t.Errorf("Exp = %d, want 12 from the retried tick", res.Player.Exp)
	}
}

func TestEngine_StartHunt(t *testing.T) {
	eng := setupEngine(t)
	ctx := context.Background()

	if _, err := eng.StartHunt(ctx, "ghost", ""); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("StartHunt unregistered: %v, want ErrNotRegistered", err)
	}

	if _, err := eng.Register(ctx, "u1", "Carol", "f"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := eng.StartHunt(ctx, "u1", "dragon"); !errors.Is(err, ErrMonsterNotFound) {
		t.Fatalf("StartHunt above tier: %v, want ErrMonsterNotFound", err)
	}

	session, err := eng.StartHunt(ctx, "u1", "slime")
	if err != nil {
		t.Fatalf("StartHunt: %v", err)
	}
	if session.Monster.ID != "slime_green" {
		t.Errorf("Monster = %q, want slime_green", session.Monster.ID)
	}

	if _, err := eng.StartHunt(ctx, "u1", "bat"); !errors.Is(err, ErrHuntInProgress) {
		t.Errorf("second StartHunt: %v, want ErrHuntInProgress", err)
	}

	got, err := eng.HuntStatus("u1")
	if err != nil {
		t.Fatalf("HuntStatus: %v", err)
	}
	if got.PlayerID != "u1" || got.Monster.ID != session.Monster.ID {
		t.Errorf("HuntStatus = %+v, want the active slime_green session", got)
	}
}

func TestEngine_AttackWinFlow(t *testing.T) {
	eng := setupEngine(t)
	ctx := context.Background()

	if _, err := eng.Register(ctx, "u1", "Dana", "f"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	// A duke at level 55 with a neutral element steamrolls a tier-1
	// slime; the flow, not the odds, is under test.
	rank := "duke"
	level := 55
	element := "Geo"
	if _, err := eng.AdminAdjust(ctx, "u1", db.AdjustPatch{RankKey: &rank, Level: &level, Element: &element}); err != nil {
		t.Fatalf("AdminAdjust: %v", err)
	}

	session, err := eng.StartHunt(ctx, "u1", "blue slime")
	if err != nil {
		t.Fatalf("StartHunt: %v", err)
	}
	if session.MonsterHP != 220 {
		t.Fatalf("MonsterHP = %d, want 220 for level 2", session.MonsterHP)
	}

	var outcome *HuntOutcome
	for range 100 {
		outcome, err = eng.Attack(ctx, "u1")
		if err != nil {
			t.Fatalf("Attack: %v", err)
		}
		if outcome.Session.Status != hunt.StatusOngoing {
			break
		}
	}
	if outcome.Session.Status != hunt.StatusWon {
		t.Fatalf("Status = %q, want won", outcome.Session.Status)
	}
	if outcome.Player == nil {
		t.Fatal("win outcome missing the updated player")
	}
	if outcome.Player.BattleWins != 1 {
		t.Errorf("BattleWins = %d, want 1", outcome.Player.BattleWins)
	}

	// Blue slime pays its defined 65 exp; rank scaling only applies
	// to passive ticks.
	wantExp := data.CumulativeExp(55) + 65
	if outcome.Player.Exp != wantExp {
		t.Errorf("Exp = %d, want %d", outcome.Player.Exp, wantExp)
	}
	if outcome.Player.Coins != 40 || outcome.Player.Gems != 1 {
		t.Errorf("coins %d gems %d, want 40/1", outcome.Player.Coins, outcome.Player.Gems)
	}

	// The session is gone once the battle ends.
	if _, err := eng.HuntStatus("u1"); !errors.Is(err, ErrNoActiveHunt) {
		t.Errorf("HuntStatus after win: %v, want ErrNoActiveHunt", err)
	}
	if _, err := eng.Attack(ctx, "u1"); !errors.Is(err, ErrNoActiveHunt) {
		t.Errorf("Attack after win: %v, want ErrNoActiveHunt", err)
	}
}

func TestEngine_Flee(t *testing.T) {
	eng := setupEngine(t)
	ctx := context.Background()

	if _, err := eng.Register(ctx, "u1", "Ed", "m"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := eng.Flee(ctx, "u1"); !errors.Is(err, ErrNoActiveHunt) {
		t.Fatalf("Flee without hunt: %v, want ErrNoActiveHunt", err)
	}

	if _, err := eng.StartHunt(ctx, "u1", "slime"); err != nil {
		t.Fatalf("StartHunt: %v", err)
	}

	fled := false
	for range 200 {
		ok, err := eng.Flee(ctx, "u1")
		if err != nil {
			t.Fatalf("Flee: %v", err)
		}
		if ok {
			fled = true
			break
		}
		// A failed flee keeps the session alive.
		if _, err := eng.HuntStatus("u1"); err != nil {
			t.Fatalf("session gone after failed flee: %v", err)
		}
	}
	if !fled {
		t.Fatal("never escaped in 200 attempts")
	}
	if _, err := eng.HuntStatus("u1"); !errors.Is(err, ErrNoActiveHunt) {
		t.Errorf("HuntStatus after flee: %v, want ErrNoActiveHunt", err)
	}
}

func TestEngine_ChooseClass(t *testing.T) {
	eng := setupEngine(t)
	ctx := context.Background()

	if _, err := eng.Register(ctx, "u1", "Fay", "f"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := eng.ChooseClass(ctx, "u1", "necromancer"); !errors.Is(err, ErrUnknownClass) {
		t.Errorf("unknown class: %v, want ErrUnknownClass", err)
	}
	if _, err := eng.ChooseClass(ctx, "u1", "archer"); !errors.Is(err, ErrClassLocked) {
		t.Errorf("locked class: %v, want ErrClassLocked", err)
	}

	rank := "lord"
	level := 15
	if _, err := eng.AdminAdjust(ctx, "u1", db.AdjustPatch{RankKey: &rank, Level: &level}); err != nil {
		t.Fatalf("AdminAdjust: %v", err)
	}
	p, err := eng.ChooseClass(ctx, "u1", "archer")
	if err != nil {
		t.Fatalf("ChooseClass: %v", err)
	}
	if p.ClassType != "Archer" {
		t.Errorf("ClassType = %q, want Archer", p.ClassType)
	}
}

func TestEngine_FablesAndMilestones(t *testing.T) {
	eng := setupEngine(t)
	ctx := context.Background()

	if _, err := eng.Register(ctx, "u1", "Gil", "m"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	views, err := eng.Fables(ctx, "u1")
	if err != nil {
		t.Fatalf("Fables: %v", err)
	}
	if len(views) != 5 {
		t.Fatalf("got %d fables, want 5", len(views))
	}
	for _, v := range views {
		if v.Triggered || v.Claimed {
			t.Errorf("fresh player already has progress on %q", v.Fable.Name)
		}
	}

	// Five battle wins trip The Lost Coin.
	wins := 5
	p, err := eng.AdminAdjust(ctx, "u1", db.AdjustPatch{BattleWins: &wins})
	if err != nil {
		t.Fatalf("AdminAdjust: %v", err)
	}
	if fable := eng.checkMilestones(ctx, p); fable == nil || fable.Name != "The Lost Coin" {
		t.Fatalf("milestone = %v, want The Lost Coin", fable)
	}

	views, err = eng.Fables(ctx, "u1")
	if err != nil {
		t.Fatalf("Fables: %v", err)
	}
	var triggered int
	var lostCoinID int
	for _, v := range views {
		if v.Triggered {
			triggered++
			lostCoinID = v.Fable.ID
		}
	}
	if triggered != 1 {
		t.Fatalf("%d fables triggered, want 1", triggered)
	}

	fable, err := eng.ClaimFable(ctx, "u1", lostCoinID)
	if err != nil {
		t.Fatalf("ClaimFable: %v", err)
	}
	if fable == nil {
		t.Fatal("ClaimFable returned nothing")
	}

	_, buffs, err := eng.Profile(ctx, "u1")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if buffs[fable.BuffType] != fable.BuffValue {
		t.Errorf("buff %s = %d, want %d", fable.BuffType, buffs[fable.BuffType], fable.BuffValue)
	}
}
