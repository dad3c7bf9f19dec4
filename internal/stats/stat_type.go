package stats

import "strings"

// StatType identifies one numeric attribute in the closed catalog.
// The zero value is StatHealth; every StatType below statCount is valid.
type StatType uint8

const (
	// Vitals
	StatHealth StatType = iota
	StatMana
	StatStamina

	// Offense
	StatAttack
	StatMagicAttack
	StatMeleeDamageMult
	StatRangedDamageMult
	StatMagicDamageMult
	StatSprintDamageMult
	StatFlatDamageReduction
	StatStaminaDrainMult
	StatCritChance
	StatCritDamage
	StatAttackSpeed
	StatLifesteal

	// Defense
	StatArmor
	StatMagicResist
	StatDodgeChance
	StatFallResistance
	StatFireResistance
	StatPoisonResistance
	StatLightningResistance
	StatHolyResistance
	StatVoidResistance
	StatBlockingEfficiency
	StatMeleeDamageTakenMult
	StatRangedDamageTakenMult
	StatMagicDamageTakenMult
	StatEnergyShieldMax
	StatEnergyShieldRecharge
	StatEnergyShieldRechargeDelay

	// Mobility
	StatMoveSpeed
	StatJumpHeight

	// Utility
	StatHealthRegen
	StatHealingReceivedMult
	StatManaRegen
	StatStaminaRegen
	StatXPBonus
	StatLuck

	statCount
)

// statInfo is the catalog row for one StatType.
// id is a persistence key and must never change once shipped.
type statInfo struct {
	id  string
	def float32
	min float32
	max float32
}

var catalog = [statCount]statInfo{
	StatHealth:  {"health", 100, 0, 10000},
	StatMana:    {"mana", 100, 0, 10000},
	StatStamina: {"stamina", 10, 0, 1000},

	StatAttack:              {"attack", 1, 0, 100},
	StatMagicAttack:         {"magic_attack", 1, 0, 100},
	StatMeleeDamageMult:     {"melee_damage_mult", 1, 0, 10},
	StatRangedDamageMult:    {"ranged_damage_mult", 1, 0, 10},
	StatMagicDamageMult:     {"magic_damage_mult", 1, 0, 10},
	StatSprintDamageMult:    {"sprint_damage_mult", 1, 0, 10},
	StatFlatDamageReduction: {"flat_damage_reduction", 0, 0, 1000},
	StatStaminaDrainMult:    {"stamina_drain_mult", 1, 0, 10},
	StatCritChance:          {"crit_chance", 0.05, 0, 1},
	StatCritDamage:          {"crit_damage", 1.5, 1, 10},
	StatAttackSpeed:         {"attack_speed", 1, 0.1, 10},
	StatLifesteal:           {"lifesteal", 0, 0, 1},

	StatArmor:                     {"armor", 0, 0, 1},
	StatMagicResist:               {"magic_resist", 0, 0, 1},
	StatDodgeChance:               {"dodge_chance", 0, 0, 1},
	StatFallResistance:            {"fall_resistance", 0, 0, 1},
	StatFireResistance:            {"fire_resistance", 0, 0, 1},
	StatPoisonResistance:          {"poison_resistance", 0, 0, 1},
	StatLightningResistance:       {"lightning_resistance", 0, 0, 1},
	StatHolyResistance:            {"holy_resistance", 0, 0, 1},
	StatVoidResistance:            {"void_resistance", 0, 0, 1},
	StatBlockingEfficiency:        {"blocking_efficiency", 1, 0, 5},
	StatMeleeDamageTakenMult:      {"melee_damage_taken_mult", 1, 0, 10},
	StatRangedDamageTakenMult:     {"ranged_damage_taken_mult", 1, 0, 10},
	StatMagicDamageTakenMult:      {"magic_damage_taken_mult", 1, 0, 10},
	StatEnergyShieldMax:           {"energy_shield_max", 0, 0, 10000},
	StatEnergyShieldRecharge:      {"energy_shield_recharge", 0, 0, 1000},
	StatEnergyShieldRechargeDelay: {"energy_shield_recharge_delay", 3, 0, 60},

	StatMoveSpeed:  {"move_speed", 1, 0, 10},
	StatJumpHeight: {"jump_height", 1, 0, 10},

	StatHealthRegen:         {"health_regen", 1, 0, 100},
	StatHealingReceivedMult: {"healing_received_mult", 1, 0, 10},
	StatManaRegen:           {"mana_regen", 0, 0, 100},
	StatStaminaRegen:        {"stamina_regen", 1, 0, 100},
	StatXPBonus:             {"xp_bonus", 1, 0, 10},
	StatLuck:                {"luck", 1, 0, 10},
}

// byID indexes the catalog by lower-case id.
var byID = func() map[string]StatType {
	m := make(map[string]StatType, statCount)
	for i := StatType(0); i < statCount; i++ {
		m[catalog[i].id] = i
	}
	return m
}()

// ID returns the stable string identifier (e.g. "crit_chance").
func (s StatType) ID() string { return catalog[s].id }

// Default returns the catalog default value.
func (s StatType) Default() float32 { return catalog[s].def }

// Min returns the lowest allowed effective value.
func (s StatType) Min() float32 { return catalog[s].min }

// Max returns the highest allowed effective value.
func (s StatType) Max() float32 { return catalog[s].max }

// Valid reports whether s is a member of the catalog.
func (s StatType) Valid() bool { return s < statCount }

// Clamp limits v to [Min, Max]. NaN clamps to Min.
func (s StatType) Clamp(v float32) float32 {
	info := catalog[s]
	if v != v || v < info.min {
		return info.min
	}
	if v > info.max {
		return info.max
	}
	return v
}

func (s StatType) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return catalog[s].id
}

// StatTypeFromID resolves a stat id case-insensitively.
func StatTypeFromID(id string) (StatType, bool) {
	s, ok := byID[strings.ToLower(strings.TrimSpace(id))]
	return s, ok
}

// AllStatTypes returns every catalog entry in declaration order.
func AllStatTypes() []StatType {
	out := make([]StatType, statCount)
	for i := range out {
		out[i] = StatType(i)
	}
	return out
}

// StatCount is the number of catalog entries.
const StatCount = int(statCount)
