package model

import (
	"fmt"
	"strings"
	"time"
)

// Gender selects which rank title a player carries.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender resolves user input into a Gender.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(s) {
	case "male", "m":
		return GenderMale, nil
	case "female", "f":
		return GenderFemale, nil
	default:
		return "", fmt.Errorf("gender must be male or female, got %q", s)
	}
}

// Player is one persisted progression row, keyed by the opaque
// identifier the messaging layer assigns to a user.
type Player struct {
	ID          string
	Registered  bool
	Name        string
	Gender      Gender
	Exp         int64
	Level       int
	RankKey     string
	RankDisplay string
	// RankLevelCap is the denormalized max_level of the current bracket.
	RankLevelCap int
	Streak       int
	Coins        int64
	Gems         int64
	BattleWins   int
	ClassType    string
	Element      Element
	LastSeen     *time.Time
	RegisteredAt time.Time
	UpdatedAt    time.Time
}
