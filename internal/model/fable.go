package model

import (
	"math"
	"time"
)

// ConditionType is the player statistic a fable trigger watches.
type ConditionType string

const (
	ConditionLevel      ConditionType = "level"
	ConditionBattleWins ConditionType = "battle_wins"
	ConditionGemsEarned ConditionType = "gems_earned"
	ConditionStreak     ConditionType = "streak"
	ConditionDaysPlayed ConditionType = "days_played"
)

// BuffType is the gain category a claimed fable boosts.
type BuffType string

const (
	BuffCoinEarn BuffType = "coin_earn"
	BuffExpEarn  BuffType = "exp_earn"
	BuffGemDrop  BuffType = "gem_drop"
	BuffWinRate  BuffType = "win_rate"
)

// Fable is a one-time narrative milestone. Triggering it grants the
// one-shot coin/gem reward on claim; claiming also activates the
// standing percentage buff.
type Fable struct {
	ID             int
	Name           string
	Lore           string
	MinLevel       int
	ConditionType  ConditionType
	ConditionValue int64
	RewardCoins    int64
	RewardGems     int64
	BuffType       BuffType
	BuffValue      int
	CreatedAt      time.Time
}

// PlayerFable joins a player to a fable. The buff is inert until
// Active is set, which happens on claim.
type PlayerFable struct {
	PlayerID    string
	FableID     int
	TriggeredAt *time.Time
	ClaimedAt   *time.Time
	Active      bool
}

// BuffSet is the sparse sum of active buff percentages per type.
// Same-type buffs stack additively.
type BuffSet map[BuffType]int

// Apply scales base by the buff percentage for the given type:
// floor(base * (1 + pct/100)). Unknown types leave base untouched.
func (b BuffSet) Apply(t BuffType, base int64) int64 {
	pct, ok := b[t]
	if !ok || pct == 0 {
		return base
	}
	return int64(math.Floor(float64(base) * (1 + float64(pct)/100)))
}
