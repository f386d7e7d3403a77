package model

// CombatStats is the attacker-side stat snapshot fed to the damage
// formula. BaseAtk is the exponent applied to (1 + AtkPercent/100);
// this scaling law is intentional and must not be "fixed" into a
// multiplication.
type CombatStats struct {
	Level                int
	BaseAtk              float64
	AtkPercent           float64
	FlatAtkBonus         float64
	CritDamage           float64 // percent added on a critical hit
	Element              Element
	ElementalDamageBonus float64
	PhysicalDamageBonus  float64
	Defense              float64
	HP                   int
}

// ResistProfile is the defender-side snapshot: per-element resistance
// percentages plus flat resistance buff/debuff deltas applied on top.
type ResistProfile struct {
	Level          int
	DefenseDebuff  float64
	PyroResistance float64
	AquaResistance float64
	GeoResistance  float64
	AeroResistance float64
	VoltResistance float64
	// Flat deltas added to whichever base resistance applies.
	ResistanceBuffs   float64
	ResistanceDebuffs float64
}

// Resistance returns the base resistance against the given element.
// An elementless attack meets no resistance.
func (r ResistProfile) Resistance(e Element) float64 {
	switch e {
	case ElementPyro:
		return r.PyroResistance
	case ElementAqua:
		return r.AquaResistance
	case ElementGeo:
		return r.GeoResistance
	case ElementAero:
		return r.AeroResistance
	case ElementVolt:
		return r.VoltResistance
	default:
		return 0
	}
}
