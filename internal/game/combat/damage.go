// Package combat implements the damage formula shared by every battle
// path. The formula, factor by factor:
//
//	d/100 × [ (1 + a/100)^b + A ] × (1 + C/100)^x
//	× [ 1 − (R/100)(1/2)^(1 − iₐ) ]^(1 − iₐ)
//	× ( 100 / (4R + 100) )^iₐ
//	× ( 100 + Lₐ ) / ( 100 + L_d )
//	× elementAdvantage
//
// where a = ATK%, b = base ATK, A = flat ATK bonus, d = talent
// multiplier, C = crit damage %, x = crit roll, R = total elemental
// resistance and iₐ = 1 iff R < 0. Note that b is the *exponent* on
// (1 + a/100); that scaling law is intentional and must be preserved.
package combat

import (
	"fmt"
	"math"

	"github.com/violetbot/rpgengine/internal/model"
)

// Result carries the final damage integer plus every intermediate
// factor. Breakdown is for observability and audit replay only; no
// gameplay logic may depend on it.
type Result struct {
	BaseDamage          int64
	FinalDamage         int64
	CritDamage          int64
	ResistanceReduction float64 // total resistance after buffs/debuffs
	Multiplier          float64 // product of all post-base factors
	IsCrit              bool
	Breakdown           []string
}

// CalculateDamage computes one attack. critRoll is 1 for a critical
// hit, 0 otherwise; elementAdvantage comes from data.AdvantageMultiplier.
//
// Invalid numeric input never panics or errors: the result is all
// zeros with the failure recorded in the breakdown.
func CalculateDamage(attacker model.CombatStats, target model.ResistProfile, talentMultiplier float64, critRoll int, elementAdvantage float64) Result {
	breakdown := make([]string, 0, 8)
	breakdown = append(breakdown, fmt.Sprintf("Element: %s", elementName(attacker.Element)))

	// Effective ATK: (1 + a/100)^b + A. The base stat is the exponent
	// base and the attack rating the exponent.
	atk := math.Pow(1+attacker.AtkPercent/100, attacker.BaseAtk) + attacker.FlatAtkBonus
	breakdown = append(breakdown, fmt.Sprintf("Base ATK: (1 + %.0f/100)^%.0f + %.0f = %.2f",
		attacker.AtkPercent, attacker.BaseAtk, attacker.FlatAtkBonus, atk))

	talentFactor := talentMultiplier / 100
	baseDamage := atk * talentFactor
	breakdown = append(breakdown, fmt.Sprintf("Talent multiplier: %.0f/100 = %.2f", talentMultiplier, talentFactor))

	isCrit := critRoll == 1
	if isCrit {
		critFactor := 1 + attacker.CritDamage/100
		baseDamage *= critFactor
		breakdown = append(breakdown, fmt.Sprintf("Crit applied: %.0f%% -> %.2fx", attacker.CritDamage, critFactor))
	}

	// Total resistance to the attacker's element, including the flat
	// buff/debuff deltas on the target.
	resistance := target.Resistance(attacker.Element) + target.ResistanceBuffs + target.ResistanceDebuffs

	// iA selects the formula branch: soft-cap curve for R >= 0, the
	// 100/(4R+100) penalty branch for R < 0.
	iA := 0.0
	if resistance < 0 {
		iA = 1.0
	}
	resistFactor := math.Pow(1-(resistance/100)*math.Pow(0.5, 1-iA), 1-iA)
	penaltyFactor := math.Pow(100/(4*resistance+100), iA)
	breakdown = append(breakdown,
		fmt.Sprintf("Resistance: %.2f%% (negative branch: %v)", resistance, iA == 1),
		fmt.Sprintf("Resistance factor: %.4f, penalty factor: %.4f", resistFactor, penaltyFactor))

	levelScaling := float64(100+attacker.Level) / float64(100+target.Level)
	breakdown = append(breakdown, fmt.Sprintf("Level scaling: (100 + %d) / (100 + %d) = %.4f",
		attacker.Level, target.Level, levelScaling))
	breakdown = append(breakdown, fmt.Sprintf("Element advantage: %.2fx", elementAdvantage))

	multiplier := resistFactor * penaltyFactor * levelScaling * elementAdvantage
	final := baseDamage * multiplier
	if badFloat(atk, baseDamage, resistFactor, penaltyFactor, levelScaling, elementAdvantage, final) {
		breakdown = append(breakdown, "invalid numeric input, damage zeroed")
		return Result{IsCrit: isCrit, Breakdown: breakdown}
	}

	finalDamage := int64(math.Floor(final))
	if finalDamage < 0 {
		finalDamage = 0
	}
	breakdown = append(breakdown, fmt.Sprintf("Final damage: %.2f x %.4f = %d", baseDamage, multiplier, finalDamage))

	res := Result{
		BaseDamage:          int64(math.Floor(baseDamage)),
		FinalDamage:         finalDamage,
		ResistanceReduction: resistance,
		Multiplier:          multiplier,
		IsCrit:              isCrit,
		Breakdown:           breakdown,
	}
	if isCrit {
		res.CritDamage = res.BaseDamage
	}
	return res
}

func badFloat(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

func elementName(e model.Element) string {
	if e == model.ElementNone {
		return "None"
	}
	return string(e)
}
