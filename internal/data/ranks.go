package data

import "github.com/violetbot/rpgengine/internal/model"

// RankBracket is one tier of the promotion ladder. The slice order in
// RankBrackets defines the promotion path; next/previous lookups are
// positional, not value-based.
type RankBracket struct {
	Key         string
	MaleTitle   string
	FemaleTitle string
	MinLevel    int
	MaxLevel    int
	CoinCost    int64
	StreakReq   int
}

// RankBrackets is the full promotion ladder, lowest first.
var RankBrackets = []RankBracket{
	{Key: "serf", MaleTitle: "Serf", FemaleTitle: "Serf", MinLevel: 1, MaxLevel: 4, CoinCost: 0, StreakReq: 0},
	{Key: "freeman", MaleTitle: "Freeman", FemaleTitle: "Freeman", MinLevel: 5, MaxLevel: 9, CoinCost: 0, StreakReq: 1},
	{Key: "townspeople", MaleTitle: "Merchant", FemaleTitle: "Artisan", MinLevel: 10, MaxLevel: 14, CoinCost: 50, StreakReq: 2},
	{Key: "lord", MaleTitle: "Lord", FemaleTitle: "Lady", MinLevel: 15, MaxLevel: 19, CoinCost: 75, StreakReq: 3},
	{Key: "knight", MaleTitle: "Knight", FemaleTitle: "Dame", MinLevel: 20, MaxLevel: 24, CoinCost: 100, StreakReq: 4},
	{Key: "baronet", MaleTitle: "Baronet", FemaleTitle: "Baronetess", MinLevel: 25, MaxLevel: 29, CoinCost: 150, StreakReq: 5},
	{Key: "baron", MaleTitle: "Baron", FemaleTitle: "Baroness", MinLevel: 30, MaxLevel: 34, CoinCost: 200, StreakReq: 6},
	{Key: "viscount", MaleTitle: "Viscount", FemaleTitle: "Viscountess", MinLevel: 35, MaxLevel: 39, CoinCost: 250, StreakReq: 7},
	{Key: "earl", MaleTitle: "Earl/Count", FemaleTitle: "Countess", MinLevel: 40, MaxLevel: 44, CoinCost: 300, StreakReq: 8},
	{Key: "marquess", MaleTitle: "Marquess", FemaleTitle: "Marchioness", MinLevel: 45, MaxLevel: 49, CoinCost: 400, StreakReq: 9},
	{Key: "duke", MaleTitle: "Duke", FemaleTitle: "Duchess", MinLevel: 50, MaxLevel: 59, CoinCost: 500, StreakReq: 10},
	{Key: "archduke", MaleTitle: "Archduke", FemaleTitle: "Grand Duchess", MinLevel: 60, MaxLevel: 69, CoinCost: 700, StreakReq: 12},
	{Key: "prince", MaleTitle: "Prince", FemaleTitle: "Princess", MinLevel: 70, MaxLevel: 79, CoinCost: 900, StreakReq: 14},
	{Key: "king", MaleTitle: "King", FemaleTitle: "Queen", MinLevel: 80, MaxLevel: 94, CoinCost: 1200, StreakReq: 16},
	{Key: "emperor", MaleTitle: "Emperor", FemaleTitle: "Empress", MinLevel: 95, MaxLevel: 999, CoinCost: 1500, StreakReq: 18},
}

// LowestBracket returns the entry tier new players start in.
func LowestBracket() RankBracket {
	return RankBrackets[0]
}

// BracketByKey looks up a bracket by rank key.
func BracketByKey(key string) (RankBracket, bool) {
	for _, b := range RankBrackets {
		if b.Key == key {
			return b, true
		}
	}
	return RankBracket{}, false
}

// NextRankKey returns the key of the bracket after the given one in
// ladder order, or false when the key is unknown or already highest.
func NextRankKey(key string) (string, bool) {
	for i, b := range RankBrackets {
		if b.Key == key {
			if i == len(RankBrackets)-1 {
				return "", false
			}
			return RankBrackets[i+1].Key, true
		}
	}
	return "", false
}

// ClampLevel forces level into the [MinLevel, MaxLevel] range of the
// given bracket. Unknown keys leave the level unchanged.
func ClampLevel(level int, rankKey string) int {
	b, ok := BracketByKey(rankKey)
	if !ok {
		return level
	}
	if level < b.MinLevel {
		return b.MinLevel
	}
	if level > b.MaxLevel {
		return b.MaxLevel
	}
	return level
}

// RankTitle returns the gendered display title for a rank key.
// Unknown keys fall back to the key itself.
func RankTitle(rankKey string, gender model.Gender) string {
	b, ok := BracketByKey(rankKey)
	if !ok {
		return rankKey
	}
	if gender == model.GenderFemale {
		return b.FemaleTitle
	}
	return b.MaleTitle
}

// ExpMultiplier scales passive experience gain by ladder position:
// serf 1.0x, freeman 1.2x, ... emperor 3.8x.
func ExpMultiplier(rankKey string) float64 {
	for i, b := range RankBrackets {
		if b.Key == rankKey {
			return 1.0 + float64(i)*0.2
		}
	}
	return 1.0
}
