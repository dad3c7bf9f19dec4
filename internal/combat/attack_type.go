package combat

import (
	"strings"

	"github.com/udisondev/talania/internal/stats"
)

// AttackType is the channel a hit was delivered through.
// Attack types describe how damage was dealt (melee, ranged, magic), while
// stats.DamageType describes its element.
type AttackType uint8

const (
	AttackNone AttackType = iota // unknown; inferred from the attacker's weapon
	AttackMelee
	AttackRanged
	AttackMagic
)

// DamageStat returns the attacker stat that scales outgoing damage.
func (a AttackType) DamageStat() (stats.StatType, bool) {
	switch a {
	case AttackMelee:
		return stats.StatMeleeDamageMult, true
	case AttackRanged:
		return stats.StatRangedDamageMult, true
	case AttackMagic:
		return stats.StatMagicDamageMult, true
	default:
		return 0, false
	}
}

// DamageTakenStat returns the target stat that scales incoming damage.
func (a AttackType) DamageTakenStat() (stats.StatType, bool) {
	switch a {
	case AttackMelee:
		return stats.StatMeleeDamageTakenMult, true
	case AttackRanged:
		return stats.StatRangedDamageTakenMult, true
	case AttackMagic:
		return stats.StatMagicDamageTakenMult, true
	default:
		return 0, false
	}
}

// PowerStat returns the attack power stat for the channel: magic attack for
// magic, physical attack otherwise.
func (a AttackType) PowerStat() stats.StatType {
	if a == AttackMagic {
		return stats.StatMagicAttack
	}
	return stats.StatAttack
}

func (a AttackType) String() string {
	switch a {
	case AttackMelee:
		return "MELEE"
	case AttackRanged:
		return "RANGED"
	case AttackMagic:
		return "MAGIC"
	default:
		return ""
	}
}

// ParseAttackType resolves "melee", "ranged" or "magic" (case-insensitive).
// Anything else yields AttackNone.
func ParseAttackType(raw string) AttackType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "MELEE":
		return AttackMelee
	case "RANGED":
		return AttackRanged
	case "MAGIC":
		return AttackMagic
	default:
		return AttackNone
	}
}
