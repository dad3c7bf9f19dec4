package combat

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/talania/internal/stats"
)

func TestHeldItem_WeaponCategory(t *testing.T) {
	tests := []struct {
		item HeldItem
		want string
	}{
		{HeldItem{ID: "Weapon_Sword_Iron"}, "Sword"},
		{HeldItem{ID: "Weapon_Staff"}, "Staff"},
		{HeldItem{ID: "Weapon_Axe_Iron", Family: "Battleaxe"}, "Battleaxe"},
		{HeldItem{ID: "Tool_Pickaxe_Iron"}, ""},
		{HeldItem{}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.item.WeaponCategory(), tt.item.ID)
	}
}

func TestInferAttackType(t *testing.T) {
	tests := []struct {
		name string
		item HeldItem
		ok   bool
		want AttackType
	}{
		{"empty hand", HeldItem{}, false, AttackMelee},
		{"sword", HeldItem{ID: "Weapon_Sword_Iron"}, true, AttackMelee},
		{"shortbow", HeldItem{ID: "Weapon_Shortbow_Crude"}, true, AttackRanged},
		{"crossbow family", HeldItem{ID: "x", Family: "Crossbow"}, true, AttackRanged},
		{"staff", HeldItem{ID: "Weapon_Staff_Crystal"}, true, AttackMagic},
		{"wand family wins over id", HeldItem{ID: "Weapon_Bow_Oak", Family: "Wand"}, true, AttackMagic},
		{"unknown", HeldItem{ID: "Food_Bread"}, true, AttackMelee},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferAttackType(tt.item, tt.ok))
		})
	}
}

func TestWeaponCategoryService(t *testing.T) {
	svc := NewWeaponCategoryService()
	id := uuid.New()

	svc.Set(id, " Sword ", WeaponDamage{Bonus: 0.2, Multiplier: 1})
	got, ok := svc.Get(id, "SWORD")
	assert.True(t, ok)
	assert.Equal(t, WeaponDamage{Bonus: 0.2, Multiplier: 1}, got)

	_, ok = svc.Get(id, "axe")
	assert.False(t, ok)

	svc.Set(uuid.Nil, "sword", NeutralWeaponDamage)
	_, ok = svc.Get(uuid.Nil, "sword")
	assert.False(t, ok)

	svc.Clear(id)
	_, ok = svc.Get(id, "sword")
	assert.False(t, ok)
}

func TestAttackType(t *testing.T) {
	assert.Equal(t, AttackMagic, ParseAttackType(" magic "))
	assert.Equal(t, AttackNone, ParseAttackType("siege"))
	assert.Empty(t, AttackNone.String())
	assert.Equal(t, stats.StatMagicAttack, AttackMagic.PowerStat())
	assert.Equal(t, stats.StatAttack, AttackRanged.PowerStat())

	stat, ok := AttackMelee.DamageStat()
	assert.True(t, ok)
	assert.Equal(t, stats.StatMeleeDamageMult, stat)
	_, ok = AttackNone.DamageTakenStat()
	assert.False(t, ok)
}

func TestParseDamageCause(t *testing.T) {
	tests := []struct {
		raw  string
		want DamageCause
		ok   bool
	}{
		{"fall", CauseFall, true},
		{"OUT_OF_WORLD", CauseOutOfWorld, true},
		{"out-of-world", CauseOutOfWorld, true},
		{"outofworld", CauseOutOfWorld, true},
		{"", CauseNone, false},
		{"lava", CauseNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseDamageCause(tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
	}
}

func TestSettings_Sanitized(t *testing.T) {
	s := Settings{
		PlayerDamageMultiplier:         float32(math.NaN()),
		PlayerDamageToPlayerMultiplier: -2,
	}.Sanitized()
	assert.Equal(t, float32(1), s.PlayerDamageMultiplier)
	assert.Zero(t, s.PlayerDamageToPlayerMultiplier)

	d := DefaultSettings()
	assert.True(t, d.PvPEnabled)
	assert.Equal(t, d, d.Sanitized())
}

func TestWeaponDamage_YAMLDefaults(t *testing.T) {
	var got map[string]WeaponDamage
	require.NoError(t, yaml.Unmarshal([]byte("sword: {bonus: 0.25}\nbow: {multiplier: 2}\n"), &got))
	assert.Equal(t, WeaponDamage{Bonus: 0.25, Multiplier: 1}, got["sword"])
	assert.Equal(t, WeaponDamage{Bonus: 0, Multiplier: 2}, got["bow"])

	require.NoError(t, yaml.Unmarshal([]byte("axe: {bonus: .nan, multiplier: .inf}\n"), &got))
	assert.Equal(t, NeutralWeaponDamage, got["axe"])
}

func TestWeaponCategoryService_SanitizesNonFinite(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	tests := []struct {
		name string
		in   WeaponDamage
		want WeaponDamage
	}{
		{"nan multiplier", WeaponDamage{Multiplier: nan}, WeaponDamage{Multiplier: 1}},
		{"inf multiplier", WeaponDamage{Bonus: 0.5, Multiplier: -inf}, WeaponDamage{Bonus: 0.5, Multiplier: 1}},
		{"nan bonus", WeaponDamage{Bonus: nan, Multiplier: 2}, WeaponDamage{Multiplier: 2}},
		{"inf bonus", WeaponDamage{Bonus: inf, Multiplier: 1}, NeutralWeaponDamage},
		{"negative multiplier", WeaponDamage{Multiplier: -3}, WeaponDamage{Multiplier: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewWeaponCategoryService()
			id := uuid.New()
			svc.Set(id, Unarmed, tt.in)
			got, ok := svc.Get(id, Unarmed)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
