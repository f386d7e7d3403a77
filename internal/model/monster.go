package model

// Rarity grades a monster definition.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityUncommon  Rarity = "Uncommon"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
)

// Monster is an immutable opponent definition. Hunt sessions copy it
// by value, so a running battle never observes pool mutations.
type Monster struct {
	ID      string
	Name    string
	Level   int
	Element Element
	Rarity  Rarity
	Stats   ResistProfile
	// Reward yields on victory.
	ExpReward  int64
	CoinReward int64
	GemReward  int64
	DropRate   int // item drop chance, percent
}
