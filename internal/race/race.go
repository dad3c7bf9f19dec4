// Package race defines playable races and applies their always-on stat
// modifiers.
package race

import (
	"strings"

	"github.com/google/uuid"

	"github.com/udisondev/talania/internal/stats"
)

// Race is a playable race.
type Race uint8

const (
	None Race = iota
	Human
	HighElf
	Orc
	Dwarf
	Nightwalker
	Beastkin
	Starborn
	raceCount
)

type modifierSpec struct {
	stat  stats.StatType
	value float32
	op    stats.Operation
}

type info struct {
	id          string
	displayName string
	theme       string
	modifiers   []modifierSpec
	notes       []string
}

var catalog = [raceCount]info{
	Human: {
		id: "human", displayName: "Humans", theme: "Balance and Will",
		modifiers: []modifierSpec{
			{stats.StatXPBonus, 1.10, stats.OpMultiplyTotal},
			{stats.StatMagicDamageTakenMult, 1.05, stats.OpMultiplyTotal},
		},
	},
	HighElf: {
		id: "high_elf", displayName: "High Elves", theme: "Magic and Hubris",
		modifiers: []modifierSpec{
			{stats.StatMana, 1.20, stats.OpMultiplyTotal},
			{stats.StatHealth, 0.90, stats.OpMultiplyTotal},
		},
	},
	Orc: {
		id: "orc", displayName: "Orcs", theme: "Strength and Honor",
		modifiers: []modifierSpec{
			{stats.StatMeleeDamageMult, 1.15, stats.OpMultiplyTotal},
			{stats.StatManaRegen, 0.80, stats.OpMultiplyTotal},
		},
		notes: []string{"Magic usage slowdown is not modelled."},
	},
	Dwarf: {
		id: "dwarf", displayName: "Dwarves", theme: "Stone and Metal",
		modifiers: []modifierSpec{
			{stats.StatArmor, 0.10, stats.OpAdd},
			{stats.StatPoisonResistance, 0.10, stats.OpAdd},
			{stats.StatMoveSpeed, 0.90, stats.OpMultiplyTotal},
		},
	},
	Nightwalker: {
		id: "nightwalker", displayName: "Nightwalkers", theme: "Shadow and Curse",
		notes: []string{
			"Shadow Meld: +15% move speed at night.",
			"Sun Curse: -10% health regen in sunlight.",
		},
	},
	Beastkin: {
		id: "beastkin", displayName: "Beastkin", theme: "Nature and Instinct",
		modifiers: []modifierSpec{
			{stats.StatFallResistance, 0.50, stats.OpAdd},
			{stats.StatJumpHeight, 1.20, stats.OpMultiplyTotal},
		},
	},
	Starborn: {
		id: "starborn", displayName: "Starborn", theme: "Cosmos and Mystery",
		modifiers: []modifierSpec{
			{stats.StatEnergyShieldMax, 25, stats.OpAdd},
			{stats.StatEnergyShieldRecharge, 5, stats.OpAdd},
			{stats.StatHealingReceivedMult, 0.50, stats.OpMultiplyTotal},
		},
	},
}

// ID returns the race id ("high_elf"), empty for None.
func (r Race) ID() string {
	if r >= raceCount {
		return ""
	}
	return catalog[r].id
}

// DisplayName returns the plural display name ("High Elves").
func (r Race) DisplayName() string {
	if r >= raceCount {
		return ""
	}
	return catalog[r].displayName
}

// Theme returns the race's short flavor line.
func (r Race) Theme() string {
	if r >= raceCount {
		return ""
	}
	return catalog[r].theme
}

// Notes lists conditional traits that other systems have to implement.
func (r Race) Notes() []string {
	if r >= raceCount {
		return nil
	}
	return catalog[r].notes
}

func (r Race) String() string { return r.ID() }

// Source is the modifier source used for this race's modifiers.
func (r Race) Source() string { return "race:" + r.ID() }

// Modifiers returns fresh modifiers (new ids) for the race.
func (r Race) Modifiers() []stats.Modifier {
	if r == None || r >= raceCount {
		return nil
	}
	specs := catalog[r].modifiers
	mods := make([]stats.Modifier, 0, len(specs))
	for _, spec := range specs {
		mods = append(mods, stats.NewModifier(uuid.Nil, r.Source(), spec.stat, spec.value, spec.op, 0, true))
	}
	return mods
}

// Parse resolves a race id (case-insensitive, "-" accepted for "_").
func Parse(raw string) (Race, bool) {
	id := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
	for r := Human; r < raceCount; r++ {
		if catalog[r].id == id {
			return r, true
		}
	}
	return None, false
}

// All returns every playable race.
func All() []Race {
	out := make([]Race, 0, raceCount-1)
	for r := Human; r < raceCount; r++ {
		out = append(out, r)
	}
	return out
}
