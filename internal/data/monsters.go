package data

import (
	"sort"
	"strings"

	"github.com/violetbot/rpgengine/internal/model"
)

// monsterPool groups monster definitions by the minimum player level
// at which they become eligible.
var monsterPool = map[int][]model.Monster{
	1: {
		{
			ID: "slime_green", Name: "Green Slime", Level: 1, Element: model.ElementAqua, Rarity: model.RarityCommon,
			Stats:     model.ResistProfile{Level: 1, PyroResistance: -50, AquaResistance: 50},
			ExpReward: 50, CoinReward: 30, GemReward: 1, DropRate: 10,
		},
		{
			ID: "slime_blue", Name: "Blue Slime", Level: 2, Element: model.ElementAqua, Rarity: model.RarityCommon,
			Stats:     model.ResistProfile{Level: 2, PyroResistance: -40, AquaResistance: 55},
			ExpReward: 65, CoinReward: 40, GemReward: 1, DropRate: 12,
		},
		{
			ID: "goblin_scout", Name: "Goblin Scout", Level: 3, Element: model.ElementAero, Rarity: model.RarityCommon,
			Stats:     model.ResistProfile{Level: 3, GeoResistance: -20, AeroResistance: 30},
			ExpReward: 75, CoinReward: 50, GemReward: 2, DropRate: 15,
		},
		{
			ID: "bat_common", Name: "Bat", Level: 2, Element: model.ElementAero, Rarity: model.RarityCommon,
			Stats:     model.ResistProfile{Level: 2, GeoResistance: -30, AeroResistance: 25},
			ExpReward: 60, CoinReward: 35, GemReward: 1, DropRate: 8,
		},
	},
	5: {
		{
			ID: "goblin_warrior", Name: "Goblin Warrior", Level: 5, Element: model.ElementAero, Rarity: model.RarityUncommon,
			Stats:     model.ResistProfile{Level: 5, PyroResistance: 5, GeoResistance: -15, AeroResistance: 35},
			ExpReward: 120, CoinReward: 80, GemReward: 2, DropRate: 18,
		},
		{
			ID: "spider_forest", Name: "Forest Spider", Level: 6, Element: model.ElementGeo, Rarity: model.RarityUncommon,
			Stats:     model.ResistProfile{Level: 6, PyroResistance: 10, AquaResistance: 10, GeoResistance: 40, VoltResistance: -20},
			ExpReward: 135, CoinReward: 90, GemReward: 3, DropRate: 20,
		},
		{
			ID: "stone_golem", Name: "Stone Golem", Level: 7, Element: model.ElementGeo, Rarity: model.RarityUncommon,
			Stats:     model.ResistProfile{Level: 7, PyroResistance: 15, AquaResistance: -25, GeoResistance: 50, VoltResistance: 10},
			ExpReward: 150, CoinReward: 100, GemReward: 3, DropRate: 22,
		},
	},
	10: {
		{
			ID: "wolf_forest", Name: "Forest Wolf", Level: 10, Element: model.ElementAero, Rarity: model.RarityUncommon,
			Stats:     model.ResistProfile{Level: 10, PyroResistance: 10, GeoResistance: 5, AeroResistance: 20},
			ExpReward: 200, CoinReward: 150, GemReward: 4, DropRate: 25,
		},
		{
			ID: "imp_fire", Name: "Fire Imp", Level: 11, Element: model.ElementPyro, Rarity: model.RarityUncommon,
			Stats:     model.ResistProfile{Level: 11, PyroResistance: 45, AquaResistance: -35, GeoResistance: 10, VoltResistance: 5},
			ExpReward: 220, CoinReward: 160, GemReward: 4, DropRate: 26,
		},
		{
			ID: "orc_scout", Name: "Orc Scout", Level: 12, Element: model.ElementAero, Rarity: model.RarityRare,
			Stats:     model.ResistProfile{Level: 12, PyroResistance: 15, AquaResistance: 5, GeoResistance: 20, AeroResistance: 15},
			ExpReward: 250, CoinReward: 180, GemReward: 5, DropRate: 28,
		},
	},
	15: {
		{
			ID: "minotaur", Name: "Minotaur", Level: 15, Element: model.ElementGeo, Rarity: model.RarityRare,
			Stats:     model.ResistProfile{Level: 15, PyroResistance: 20, AquaResistance: -20, GeoResistance: 45, AeroResistance: 5, VoltResistance: 10},
			ExpReward: 350, CoinReward: 250, GemReward: 6, DropRate: 30,
		},
		{
			ID: "harpy", Name: "Harpy", Level: 14, Element: model.ElementAero, Rarity: model.RarityRare,
			Stats:     model.ResistProfile{Level: 14, PyroResistance: 10, AquaResistance: 5, GeoResistance: -20, AeroResistance: 40, VoltResistance: 5},
			ExpReward: 330, CoinReward: 230, GemReward: 5, DropRate: 29,
		},
	},
	20: {
		{
			ID: "dragon_young", Name: "Young Drake", Level: 20, Element: model.ElementPyro, Rarity: model.RarityRare,
			Stats:     model.ResistProfile{Level: 20, PyroResistance: 50, AquaResistance: -30, GeoResistance: 20, AeroResistance: 10},
			ExpReward: 500, CoinReward: 400, GemReward: 8, DropRate: 35,
		},
		{
			ID: "dark_knight", Name: "Dark Knight", Level: 21, Element: model.ElementVolt, Rarity: model.RarityEpic,
			Stats:     model.ResistProfile{Level: 21, PyroResistance: 25, AquaResistance: 20, GeoResistance: 30, AeroResistance: 15, VoltResistance: 50},
			ExpReward: 550, CoinReward: 450, GemReward: 10, DropRate: 40,
		},
		{
			ID: "frost_elemental", Name: "Frost Elemental", Level: 19, Element: model.ElementAqua, Rarity: model.RarityRare,
			Stats:     model.ResistProfile{Level: 19, PyroResistance: -40, AquaResistance: 55, GeoResistance: 10, AeroResistance: 5, VoltResistance: 20},
			ExpReward: 480, CoinReward: 380, GemReward: 7, DropRate: 33,
		},
	},
	30: {
		{
			ID: "demon_lord", Name: "Demon Lord", Level: 30, Element: model.ElementPyro, Rarity: model.RarityEpic,
			Stats:     model.ResistProfile{Level: 30, PyroResistance: 60, AquaResistance: -40, GeoResistance: 25, AeroResistance: 20, VoltResistance: 10, ResistanceBuffs: 5},
			ExpReward: 800, CoinReward: 700, GemReward: 15, DropRate: 45,
		},
		{
			ID: "lich", Name: "Lich", Level: 31, Element: model.ElementVolt, Rarity: model.RarityEpic,
			Stats:     model.ResistProfile{Level: 31, PyroResistance: 30, AquaResistance: 30, GeoResistance: 35, AeroResistance: 25, VoltResistance: 55},
			ExpReward: 850, CoinReward: 750, GemReward: 16, DropRate: 47,
		},
		{
			ID: "phoenix", Name: "Phoenix", Level: 29, Element: model.ElementPyro, Rarity: model.RarityLegendary,
			Stats:     model.ResistProfile{Level: 29, PyroResistance: 70, AquaResistance: -50, GeoResistance: 30, AeroResistance: 35, VoltResistance: 5, ResistanceBuffs: 5},
			ExpReward: 1200, CoinReward: 1000, GemReward: 25, DropRate: 60,
		},
	},
}

// AvailableMonsters returns all monsters eligible at the given player
// level, in a stable order (by tier, then pool order).
func AvailableMonsters(playerLevel int) []model.Monster {
	tiers := make([]int, 0, len(monsterPool))
	for minLevel := range monsterPool {
		if playerLevel >= minLevel {
			tiers = append(tiers, minLevel)
		}
	}
	sort.Ints(tiers)

	var monsters []model.Monster
	for _, t := range tiers {
		monsters = append(monsters, monsterPool[t]...)
	}
	return monsters
}

// FindMonster matches a monster by case-insensitive name substring
// among those eligible at the given level.
func FindMonster(playerLevel int, name string) (model.Monster, bool) {
	needle := strings.ToLower(name)
	for _, m := range AvailableMonsters(playerLevel) {
		if strings.Contains(strings.ToLower(m.Name), needle) {
			return m, true
		}
	}
	return model.Monster{}, false
}
