package data

import "github.com/violetbot/rpgengine/internal/model"

// Element advantage multipliers.
const (
	AdvantageStrong  = 1.5
	AdvantageWeak    = 0.75
	AdvantageNeutral = 1.0
)

// elementAdvantage is the fixed directed advantage graph.
// Row = attacker, column = defender. Positive = strong, negative =
// weak, zero = neutral. The graph is deliberately asymmetric.
var elementAdvantage = map[model.Element]map[model.Element]int{
	model.ElementPyro: {model.ElementPyro: 0, model.ElementAqua: -1, model.ElementGeo: 0, model.ElementAero: 1, model.ElementVolt: 0},
	model.ElementAqua: {model.ElementPyro: 1, model.ElementAqua: 0, model.ElementGeo: 0, model.ElementAero: -1, model.ElementVolt: 1},
	model.ElementGeo:  {model.ElementPyro: 0, model.ElementAqua: 0, model.ElementGeo: 0, model.ElementAero: -1, model.ElementVolt: 1},
	model.ElementAero: {model.ElementPyro: -1, model.ElementAqua: 1, model.ElementGeo: 1, model.ElementAero: 0, model.ElementVolt: 0},
	model.ElementVolt: {model.ElementPyro: 0, model.ElementAqua: 1, model.ElementGeo: -1, model.ElementAero: 0, model.ElementVolt: 0},
}

// AdvantageMultiplier returns the damage multiplier for an attack of
// element attacker against a defender of element target. An attacker
// with no element gets neither bonus nor penalty.
func AdvantageMultiplier(attacker, target model.Element) float64 {
	if attacker == model.ElementNone {
		return AdvantageNeutral
	}
	adv := elementAdvantage[attacker][target]
	switch {
	case adv > 0:
		return AdvantageStrong
	case adv < 0:
		return AdvantageWeak
	default:
		return AdvantageNeutral
	}
}

// ElementDescription returns the human-readable summary shown in
// class/element pickers.
func ElementDescription(e model.Element) string {
	switch e {
	case model.ElementPyro:
		return "Fire - Strong vs Aero, Weak vs Aqua"
	case model.ElementAqua:
		return "Water - Strong vs Pyro, Weak vs Aero"
	case model.ElementGeo:
		return "Earth - Strong vs Volt, Weak vs Aero"
	case model.ElementAero:
		return "Wind - Strong vs Aqua & Geo, Weak vs Pyro"
	case model.ElementVolt:
		return "Lightning - Strong vs Aqua, Weak vs Geo"
	default:
		return "None (Normal)"
	}
}
