package data

import (
	"strings"

	"github.com/violetbot/rpgengine/internal/model"
)

// ClassType is a playable combat class.
type ClassType string

const (
	ClassSwordsman ClassType = "Swordsman"
	ClassArcher    ClassType = "Archer"
	ClassSpear     ClassType = "Spear"
	ClassMage      ClassType = "Mage"
	ClassRanger    ClassType = "Ranger"
)

// classPreset holds a class's base combat stats and unlock level.
type classPreset struct {
	class         ClassType
	requiredLevel int
	baseAtk       float64
	atkPercent    float64
	flatAtkBonus  float64
	critDamage    float64
	defense       float64
	hp            int
}

// classPresets is ordered by unlock level.
var classPresets = []classPreset{
	{class: ClassSwordsman, requiredLevel: 1, baseAtk: 25, atkPercent: 10, flatAtkBonus: 8, critDamage: 50, defense: 15, hp: 100},
	{class: ClassArcher, requiredLevel: 15, baseAtk: 20, atkPercent: 15, flatAtkBonus: 9, critDamage: 75, defense: 10, hp: 85},
	{class: ClassSpear, requiredLevel: 20, baseAtk: 22, atkPercent: 12, flatAtkBonus: 10, critDamage: 55, defense: 18, hp: 110},
	{class: ClassMage, requiredLevel: 25, baseAtk: 18, atkPercent: 20, flatAtkBonus: 12, critDamage: 60, defense: 8, hp: 80},
	{class: ClassRanger, requiredLevel: 30, baseAtk: 21, atkPercent: 14, flatAtkBonus: 9, critDamage: 70, defense: 12, hp: 95},
}

// AvailableClasses lists the classes unlocked at the given level.
func AvailableClasses(level int) []ClassType {
	var out []ClassType
	for _, p := range classPresets {
		if p.requiredLevel <= level {
			out = append(out, p.class)
		}
	}
	return out
}

// ClassRequiredLevel returns the unlock level for a class, or 1 for
// unknown classes.
func ClassRequiredLevel(class ClassType) int {
	for _, p := range classPresets {
		if p.class == class {
			return p.requiredLevel
		}
	}
	return 1
}

// ParseClass resolves a case-insensitive class name.
func ParseClass(s string) (ClassType, bool) {
	for _, p := range classPresets {
		if strings.EqualFold(string(p.class), s) {
			return p.class, true
		}
	}
	return "", false
}

// CharacterStats builds the combat snapshot for a hunt from the
// player's level, class and selected element. Unknown classes fall
// back to the unarmed baseline.
func CharacterStats(level int, class ClassType, element model.Element) model.CombatStats {
	stats := model.CombatStats{
		Level:                level,
		BaseAtk:              20,
		AtkPercent:           10,
		FlatAtkBonus:         5,
		CritDamage:           50,
		Element:              element,
		ElementalDamageBonus: 10,
		PhysicalDamageBonus:  10,
		Defense:              10,
		HP:                   100,
	}
	for _, p := range classPresets {
		if p.class == class {
			stats.BaseAtk = p.baseAtk
			stats.AtkPercent = p.atkPercent
			stats.FlatAtkBonus = p.flatAtkBonus
			stats.CritDamage = p.critDamage
			stats.Defense = p.defense
			stats.HP = p.hp
			break
		}
	}
	return stats
}
