// Package hunt implements the turn-based battle state machine. A
// session lives in memory only and is lost on process restart; that
// is a documented limitation, not a bug.
package hunt

import (
	"math/rand/v2"
	"sync"

	"github.com/violetbot/rpgengine/internal/game/combat"
	"github.com/violetbot/rpgengine/internal/model"
)

// Status is the session lifecycle state. Only StatusOngoing accepts
// further actions; the other three are terminal.
type Status string

const (
	StatusOngoing Status = "ongoing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
	StatusFled    Status = "fled"
)

// Actor identifies who acted in a turn log entry.
type Actor string

const (
	ActorCharacter Actor = "character"
	ActorMonster   Actor = "monster"
)

const (
	characterCritChance = 0.20
	monsterCritChance   = 0.15
	monsterTalentPct    = 80.0
	fleeChance          = 0.40
)

// TurnLog records one attack for UI rendering and audit replay.
type TurnLog struct {
	Turn     int
	Actor    Actor
	Action   string
	Damage   combat.Result
	HPBefore int
	HPAfter  int
	IsCrit   bool
}

// Rewards is what a finished session yields. Zero-valued for losses
// and flights.
type Rewards struct {
	Exp         int64
	Coins       int64
	Gems        int64
	ItemDropped bool
	Duration    int // turns fought
}

// View is a point-in-time copy of a session's state, detached from
// the live session and safe to read and render at leisure.
type View struct {
	PlayerID    string
	Monster     model.Monster
	CharacterHP int
	MonsterHP   int
	Turn        int
	Status      Status
	TurnLog     []TurnLog
	Rewards     *Rewards
}

// Session is one battle between a player and a monster snapshot. All
// state sits behind a mutex, so duplicate commands for the same
// player (two connections, rapid resends) interleave safely; callers
// only ever observe View copies.
type Session struct {
	mu          sync.Mutex
	playerID    string
	monster     model.Monster
	characterHP int
	monsterHP   int
	turn        int
	status      Status
	turnLog     []TurnLog
	rewards     *Rewards
}

// NewSession opens a battle. Monster HP scales with its level;
// character HP comes from the caller-supplied stat snapshot.
func NewSession(playerID string, characterStats model.CombatStats, monster model.Monster) *Session {
	return &Session{
		playerID:    playerID,
		monster:     monster,
		characterHP: characterStats.HP,
		monsterHP:   200 + 10*monster.Level,
		status:      StatusOngoing,
	}
}

// PlayerID returns the owning player's id.
func (s *Session) PlayerID() string {
	return s.playerID
}

// View returns a copy of the current session state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// view builds the state copy. Callers must hold s.mu.
func (s *Session) view() View {
	v := View{
		PlayerID:    s.playerID,
		Monster:     s.monster,
		CharacterHP: s.characterHP,
		MonsterHP:   s.monsterHP,
		Turn:        s.turn,
		Status:      s.status,
		TurnLog:     append([]TurnLog(nil), s.turnLog...),
	}
	if s.rewards != nil {
		rw := *s.rewards
		v.Rewards = &rw
	}
	return v
}

// characterAttack resolves one player attack against the monster.
// On a kill the session transitions to won and rewards are fixed from
// the monster definition. Callers must hold s.mu.
func (s *Session) characterAttack(characterStats model.CombatStats, talentMultiplier, elementAdvantage float64) TurnLog {
	critRoll := 0
	if rand.Float64() < characterCritChance {
		critRoll = 1
	}

	dmg := combat.CalculateDamage(characterStats, s.monster.Stats, talentMultiplier, critRoll, elementAdvantage)

	before := s.monsterHP
	s.monsterHP = max(0, s.monsterHP-int(dmg.FinalDamage))

	log := TurnLog{
		Turn:     s.turn,
		Actor:    ActorCharacter,
		Action:   "attack",
		Damage:   dmg,
		HPBefore: before,
		HPAfter:  s.monsterHP,
		IsCrit:   dmg.IsCrit,
	}
	s.turnLog = append(s.turnLog, log)

	if s.monsterHP <= 0 {
		s.status = StatusWon
		s.rewards = &Rewards{
			Exp:         s.monster.ExpReward,
			Coins:       s.monster.CoinReward,
			Gems:        s.monster.GemReward,
			ItemDropped: rand.Float64()*100 < float64(s.monster.DropRate),
			Duration:    s.turn,
		}
	}
	return log
}

// monsterAttack resolves the monster's counter-attack using a stat
// snapshot derived from its level and element. The character resists
// 10% to every element. Callers must hold s.mu.
func (s *Session) monsterAttack(characterStats model.CombatStats) TurnLog {
	attacker := model.CombatStats{
		Level:                s.monster.Level,
		BaseAtk:              float64(10 + s.monster.Level),
		AtkPercent:           5,
		FlatAtkBonus:         5,
		CritDamage:           30,
		Element:              s.monster.Element,
		ElementalDamageBonus: 10,
		PhysicalDamageBonus:  10,
		Defense:              5,
		HP:                   s.monsterHP,
	}
	target := model.ResistProfile{
		Level:          characterStats.Level,
		PyroResistance: 10,
		AquaResistance: 10,
		GeoResistance:  10,
		AeroResistance: 10,
		VoltResistance: 10,
	}

	critRoll := 0
	if rand.Float64() < monsterCritChance {
		critRoll = 1
	}

	dmg := combat.CalculateDamage(attacker, target, monsterTalentPct, critRoll, 1.0)

	before := s.characterHP
	s.characterHP = max(0, s.characterHP-int(dmg.FinalDamage))

	log := TurnLog{
		Turn:     s.turn,
		Actor:    ActorMonster,
		Action:   "attack",
		Damage:   dmg,
		HPBefore: before,
		HPAfter:  s.characterHP,
		IsCrit:   dmg.IsCrit,
	}
	s.turnLog = append(s.turnLog, log)

	if s.characterHP <= 0 {
		s.status = StatusLost
		s.rewards = &Rewards{Duration: s.turn}
	}
	return log
}

// ExecuteTurn advances the battle one full round: the character
// strikes first; if that does not end the battle the monster
// retaliates. When the session is no longer ongoing the logs come
// back nil, so a racing duplicate command cannot re-run a finished
// battle; the returned view always reflects the state after the call.
func (s *Session) ExecuteTurn(characterStats model.CombatStats, elementAdvantage float64) ([]TurnLog, View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusOngoing {
		return nil, s.view()
	}

	s.turn++
	logs := make([]TurnLog, 0, 2)
	logs = append(logs, s.characterAttack(characterStats, 100, elementAdvantage))

	if s.status == StatusOngoing && s.monsterHP > 0 {
		logs = append(logs, s.monsterAttack(characterStats))
	}
	return logs, s.view()
}

// Flee attempts to escape. On failure the session stays ongoing and
// the caller may retry; no combat turn is consumed either way. A
// session that already ended cannot be fled.
func (s *Session) Flee() (bool, View) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusOngoing {
		return false, s.view()
	}
	if rand.Float64() < fleeChance {
		s.status = StatusFled
		s.rewards = &Rewards{Duration: s.turn}
		return true, s.view()
	}
	return false, s.view()
}
