package stats

import "strings"

// DamageType is the element or energy of a damage event.
// It carries no behavior besides naming the resistance stat that reduces it.
type DamageType uint8

const (
	DamageNone DamageType = iota // not specified; treated like physical
	DamagePhysical
	DamageArcane
	DamageFire
	DamagePoison
	DamageLightning
	DamageHoly
	DamageVoid
)

var damageTypeNames = [...]string{
	DamageNone:      "none",
	DamagePhysical:  "physical",
	DamageArcane:    "arcane",
	DamageFire:      "fire",
	DamagePoison:    "poison",
	DamageLightning: "lightning",
	DamageHoly:      "holy",
	DamageVoid:      "void",
}

// ResistanceStat returns the elemental resistance stat for this type.
// Physical, unspecified and unknown types report false; armor covers them.
func (d DamageType) ResistanceStat() (StatType, bool) {
	switch d {
	case DamageArcane:
		return StatMagicResist, true
	case DamageFire:
		return StatFireResistance, true
	case DamagePoison:
		return StatPoisonResistance, true
	case DamageLightning:
		return StatLightningResistance, true
	case DamageHoly:
		return StatHolyResistance, true
	case DamageVoid:
		return StatVoidResistance, true
	default:
		return 0, false
	}
}

// IsPhysical reports whether the type is not a known elemental type.
func (d DamageType) IsPhysical() bool {
	_, elemental := d.ResistanceStat()
	return !elemental
}

func (d DamageType) String() string {
	if int(d) < len(damageTypeNames) {
		return damageTypeNames[d]
	}
	return "none"
}

// ParseDamageType resolves a damage type name. Unknown names yield DamageNone.
func ParseDamageType(name string) DamageType {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range damageTypeNames {
		if n == name {
			return DamageType(i)
		}
	}
	return DamageNone
}
