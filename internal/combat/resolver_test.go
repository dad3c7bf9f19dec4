package combat

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/talania/internal/combat/shield"
	"github.com/udisondev/talania/internal/combatlog"
	"github.com/udisondev/talania/internal/debug"
	"github.com/udisondev/talania/internal/stats"
)

type fakeWorld struct {
	players   map[uuid.UUID]bool
	sprinting map[uuid.UUID]bool
	held      map[uuid.UUID]HeldItem
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		players:   make(map[uuid.UUID]bool),
		sprinting: make(map[uuid.UUID]bool),
		held:      make(map[uuid.UUID]HeldItem),
	}
}

func (w *fakeWorld) IsPlayer(id uuid.UUID) bool    { return w.players[id] }
func (w *fakeWorld) IsSprinting(id uuid.UUID) bool { return w.sprinting[id] }
func (w *fakeWorld) HeldItem(id uuid.UUID) (HeldItem, bool) {
	item, ok := w.held[id]
	return item, ok
}
func (w *fakeWorld) DisplayName(id uuid.UUID) string { return "" }

// seq returns the stored values in order, then 0.99.
type seq struct {
	values []float32
}

func (s *seq) Float32() float32 {
	if len(s.values) == 0 {
		return 0.99
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

type fakeHealer struct {
	healed map[uuid.UUID]float32
}

func (h *fakeHealer) ApplyHeal(id uuid.UUID, amount float32) float32 {
	h.healed[id] += amount
	return amount
}

type entrySink struct {
	entries []*combatlog.Entry
}

func (s *entrySink) Record(e *combatlog.Entry) { s.entries = append(s.entries, e) }

type fixture struct {
	registry *stats.Manager
	overlay  *debug.StatOverlay
	shields  *shield.Service
	world    *fakeWorld
	sink     *entrySink
	resolver *Resolver
}

func newFixture(rolls ...float32) *fixture {
	f := &fixture{
		registry: stats.NewManager(),
		world:    newFakeWorld(),
		sink:     &entrySink{},
	}
	f.overlay = debug.NewStatOverlay(f.registry)
	f.shields = shield.NewServiceWithClock(func() time.Time { return time.Unix(0, 0) })
	f.resolver = NewResolver(f.overlay, f.shields, f.world, DefaultSettings())
	f.resolver.SetRand(&seq{values: rolls})
	f.resolver.SetClock(func() time.Time { return time.Date(2026, 5, 4, 13, 7, 9, 0, time.UTC) })
	f.resolver.SetSink(f.sink)
	return f
}

func (f *fixture) base(id uuid.UUID, stat stats.StatType, v float32) {
	f.registry.GetOrCreate(id).SetBase(stat, v)
}

func TestResolve_ArmorThenFlatReduction(t *testing.T) {
	f := newFixture()
	target := uuid.New()
	f.base(target, stats.StatArmor, 0.2)
	f.base(target, stats.StatFlatDamageReduction, 5)

	ev := &DamageEvent{Target: target, Amount: 100, Cause: CauseEnvironment}
	life, entry := f.resolver.Resolve(ev)

	require.NotNil(t, entry)
	assert.InDelta(t, 75, life, 1e-3)
	assert.InDelta(t, 75, ev.Amount, 1e-3)
	assert.False(t, ev.Cancelled)
	assert.False(t, entry.Cancelled())
	assert.InDelta(t, 75, entry.FinalAmount(), 1e-3)

	steps := entry.Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, "Armor", steps[0].Label)
	assert.InDelta(t, 100, steps[0].Before, 1e-3)
	assert.InDelta(t, 80, steps[0].After, 1e-3)
	assert.Equal(t, "before * (1 - 0.2) (Armor)", steps[0].Formula)
	assert.Equal(t, "Flat Reduction", steps[1].Label)
	assert.Equal(t, "before - 5 (Flat Reduction)", steps[1].Formula)

	require.Len(t, f.sink.entries, 1)
	assert.Same(t, entry, f.sink.entries[0])
}

func TestResolve_FlatReductionCancels(t *testing.T) {
	f := newFixture()
	target := uuid.New()
	f.base(target, stats.StatFlatDamageReduction, 200)

	ev := &DamageEvent{Target: target, Amount: 50}
	life, entry := f.resolver.Resolve(ev)

	require.NotNil(t, entry)
	assert.Zero(t, life)
	assert.Zero(t, ev.Amount)
	assert.True(t, ev.Cancelled)
	assert.Equal(t, ReasonFlatReduction, ev.CancelReason)
	assert.True(t, entry.Cancelled())
	assert.Equal(t, ReasonFlatReduction, entry.CancelReason())
	assert.Zero(t, entry.FinalAmount())
}

func TestResolve_Dodge(t *testing.T) {
	f := newFixture(0.1)
	attacker, target := uuid.New(), uuid.New()
	f.base(target, stats.StatDodgeChance, 0.5)

	ev := &DamageEvent{Attacker: attacker, Target: target, Amount: 30}
	life, entry := f.resolver.Resolve(ev)

	require.NotNil(t, entry)
	assert.Zero(t, life)
	assert.True(t, ev.Cancelled)
	assert.Equal(t, ReasonDodge, ev.CancelReason)
	assert.Equal(t, ReasonDodge, entry.CancelReason())
	assert.Zero(t, entry.StepCount())
}

func TestResolve_EnvironmentalCannotBeDodged(t *testing.T) {
	f := newFixture(0)
	target := uuid.New()
	f.base(target, stats.StatDodgeChance, 1)

	life, entry := f.resolver.Resolve(&DamageEvent{Target: target, Amount: 30, Cause: CauseDrowning})

	require.NotNil(t, entry)
	assert.InDelta(t, 30, life, 1e-4)
	assert.Equal(t, "drowning", entry.Cause())
	assert.Empty(t, entry.AttackType())
}

func TestResolve_Crit(t *testing.T) {
	f := newFixture(0.5)
	attacker, target := uuid.New(), uuid.New()
	f.base(attacker, stats.StatCritChance, 1)
	f.base(attacker, stats.StatCritDamage, 2)

	ev := &DamageEvent{Attacker: attacker, Target: target, Amount: 10}
	life, entry := f.resolver.Resolve(ev)

	require.NotNil(t, entry)
	assert.True(t, ev.Crit)
	assert.True(t, entry.Crit())
	assert.InDelta(t, 20, life, 1e-4)
	require.Equal(t, 1, entry.StepCount())
	assert.Equal(t, "Critical Hit", entry.Steps()[0].Label)
	assert.Equal(t, "before * 2.0 (Critical Damage)", entry.Steps()[0].Formula)
	assert.Equal(t, "MELEE", entry.AttackType())
}

func TestResolve_PvPDisabled(t *testing.T) {
	f := newFixture()
	attacker, target := uuid.New(), uuid.New()
	f.world.players[attacker] = true
	f.world.players[target] = true

	s := DefaultSettings()
	s.PvPEnabled = false
	f.resolver.SetSettings(s)

	ev := &DamageEvent{Attacker: attacker, Target: target, Amount: 40}
	life, entry := f.resolver.Resolve(ev)

	assert.Zero(t, life)
	assert.Nil(t, entry)
	assert.True(t, ev.Cancelled)
	assert.Equal(t, ReasonPvPDisabled, ev.CancelReason)
	assert.Empty(t, f.sink.entries)
}

func TestResolve_ResolvedOnce(t *testing.T) {
	f := newFixture()
	target := uuid.New()
	f.base(target, stats.StatArmor, 0.5)

	ev := &DamageEvent{Target: target, Amount: 100}
	first, entry := f.resolver.Resolve(ev)
	require.NotNil(t, entry)
	assert.True(t, ev.Processed())

	second, again := f.resolver.Resolve(ev)
	assert.Nil(t, again)
	assert.Equal(t, first, second)
	assert.Len(t, f.sink.entries, 1)
}

func TestResolve_IgnoresNonPositive(t *testing.T) {
	f := newFixture()
	for _, amount := range []float32{0, -5} {
		ev := &DamageEvent{Target: uuid.New(), Amount: amount}
		life, entry := f.resolver.Resolve(ev)
		assert.Nil(t, entry)
		assert.Equal(t, amount, life)
		assert.False(t, ev.Processed())
	}
	_, entry := f.resolver.Resolve(nil)
	assert.Nil(t, entry)
}

func TestResolve_Deterministic(t *testing.T) {
	run := func() []combatlog.Step {
		f := newFixture(0.1)
		attacker, target := uuid.New(), uuid.New()
		f.base(attacker, stats.StatAttack, 1.2)
		f.base(attacker, stats.StatCritChance, 0.5)
		f.base(target, stats.StatArmor, 0.3)
		f.base(target, stats.StatFireResistance, 0.1)

		_, entry := f.resolver.Resolve(&DamageEvent{
			Attacker:   attacker,
			Target:     target,
			Amount:     37,
			DamageType: stats.DamageFire,
		})
		require.NotNil(t, entry)
		return entry.Steps()
	}

	first := run()
	require.Len(t, first, 4)
	assert.Equal(t, first, run())
}

func TestResolve_EnergyShieldSplit(t *testing.T) {
	f := newFixture()
	target := uuid.New()
	f.base(target, stats.StatEnergyShieldMax, 30)

	life, entry := f.resolver.Resolve(&DamageEvent{Target: target, Amount: 100})

	require.NotNil(t, entry)
	assert.InDelta(t, 70, life, 1e-4)
	assert.InDelta(t, 100, entry.FinalAmount(), 1e-4)
	assert.InDelta(t, 70, entry.LifeDamage(), 1e-4)
	assert.InDelta(t, 30, entry.ShieldAbsorbed(), 1e-4)
	assert.Zero(t, f.shields.Current(target))

	steps := entry.Steps()
	require.Len(t, steps, 1)
	assert.Equal(t, "Energy Shield", steps[0].Label)
	assert.Equal(t, "before - 30 (Energy Shield)", steps[0].Formula)
}

func TestResolve_Lifesteal(t *testing.T) {
	f := newFixture()
	healer := &fakeHealer{healed: make(map[uuid.UUID]float32)}
	f.resolver.SetHealer(healer)
	attacker, target := uuid.New(), uuid.New()
	f.base(attacker, stats.StatLifesteal, 0.25)

	life, entry := f.resolver.Resolve(&DamageEvent{Attacker: attacker, Target: target, Amount: 40})

	require.NotNil(t, entry)
	assert.InDelta(t, 40, life, 1e-4)
	assert.InDelta(t, 10, healer.healed[attacker], 1e-4)
	assert.InDelta(t, 10, entry.Lifesteal(), 1e-4)
}

func TestResolve_WeaponCategory(t *testing.T) {
	f := newFixture()
	weapons := NewWeaponCategoryService()
	f.resolver.SetWeaponCategories(weapons)
	attacker, target := uuid.New(), uuid.New()
	f.world.held[attacker] = HeldItem{ID: "Weapon_Sword_Iron"}
	weapons.Set(attacker, "sword", WeaponDamage{Bonus: 0.5, Multiplier: 2})

	life, entry := f.resolver.Resolve(&DamageEvent{Attacker: attacker, Target: target, Amount: 100})

	require.NotNil(t, entry)
	assert.InDelta(t, 300, life, 1e-3)
	steps := entry.Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, "Weapon Bonus", steps[0].Label)
	assert.Equal(t, "before * (1 + 0.5) (Sword)", steps[0].Formula)
	assert.Equal(t, "Weapon Multiplier", steps[1].Label)
}

func TestResolve_UnarmedCategory(t *testing.T) {
	f := newFixture()
	weapons := NewWeaponCategoryService()
	f.resolver.SetWeaponCategories(weapons)
	attacker, target := uuid.New(), uuid.New()
	weapons.Set(attacker, Unarmed, WeaponDamage{Multiplier: 0.5})

	life, _ := f.resolver.Resolve(&DamageEvent{Attacker: attacker, Target: target, Amount: 10})
	assert.InDelta(t, 5, life, 1e-4)
}

func TestResolve_NonFiniteWeaponMultiplier(t *testing.T) {
	f := newFixture()
	weapons := NewWeaponCategoryService()
	f.resolver.SetWeaponCategories(weapons)
	attacker, target := uuid.New(), uuid.New()
	weapons.Set(attacker, Unarmed, WeaponDamage{Multiplier: float32(math.NaN())})

	life, entry := f.resolver.Resolve(&DamageEvent{Attacker: attacker, Target: target, Amount: 100})

	require.NotNil(t, entry)
	assert.InDelta(t, 100, life, 1e-4)
	assert.InDelta(t, 100, entry.FinalAmount(), 1e-4)
	assert.False(t, entry.Cancelled())
}

func TestResolve_StaminaDrainMetadata(t *testing.T) {
	f := newFixture()
	target := uuid.New()
	f.base(target, stats.StatStaminaDrainMult, 2)
	f.base(target, stats.StatBlockingEfficiency, 0.5)
	blocked := true

	ev := &DamageEvent{Target: target, Amount: 10, Blocked: &blocked}
	life, entry := f.resolver.Resolve(ev)

	require.NotNil(t, entry)
	assert.InDelta(t, 10, life, 1e-4)
	require.NotNil(t, ev.StaminaDrainMultiplier)
	assert.InDelta(t, 4, *ev.StaminaDrainMultiplier, 1e-4)
	got, ok := entry.Blocked()
	assert.True(t, ok)
	assert.True(t, got)

	preset := float32(3)
	ev = &DamageEvent{Target: target, Amount: 10, StaminaDrainMultiplier: &preset}
	f.resolver.Resolve(ev)
	assert.Equal(t, float32(3), *ev.StaminaDrainMultiplier)
}

func TestResolve_OverlayVisibleToCombat(t *testing.T) {
	f := newFixture()
	target := uuid.New()
	f.world.players[target] = true
	f.overlay.SetDelta(target, stats.StatArmor, 0.5)

	life, _ := f.resolver.Resolve(&DamageEvent{Target: target, Amount: 100})
	assert.InDelta(t, 50, life, 1e-4)

	f.overlay.SetEnabled(target, false)
	life, _ = f.resolver.Resolve(&DamageEvent{Target: target, Amount: 100})
	assert.InDelta(t, 100, life, 1e-4)
}

func TestResolve_PlayerDamageSettings(t *testing.T) {
	f := newFixture()
	attacker, mob, player := uuid.New(), uuid.New(), uuid.New()
	f.world.players[attacker] = true
	f.world.players[player] = true
	f.resolver.SetSettings(Settings{
		PvPEnabled:                     true,
		PlayerDamageMultiplier:         2,
		PlayerDamageToPlayerMultiplier: 0.5,
	})

	life, entry := f.resolver.Resolve(&DamageEvent{Attacker: attacker, Target: mob, Amount: 10})
	assert.InDelta(t, 20, life, 1e-4)
	require.Equal(t, 1, entry.StepCount())
	assert.Equal(t, "before * 2.0 (Combat Settings)", entry.Steps()[0].Formula)

	life, _ = f.resolver.Resolve(&DamageEvent{Attacker: attacker, Target: player, Amount: 10})
	assert.InDelta(t, 5, life, 1e-4)
}

func TestResolve_Resistances(t *testing.T) {
	tests := []struct {
		name  string
		stat  stats.StatType
		value float32
		ev    DamageEvent
		want  float32
	}{
		{"fire", stats.StatFireResistance, 0.25, DamageEvent{Amount: 100, DamageType: stats.DamageFire}, 75},
		{"arcane uses magic resist", stats.StatMagicResist, 0.5, DamageEvent{Amount: 100, DamageType: stats.DamageArcane}, 50},
		{"fall", stats.StatFallResistance, 0.5, DamageEvent{Amount: 100, Cause: CauseFall}, 50},
		{"fall resistance ignored for other causes", stats.StatFallResistance, 0.5, DamageEvent{Amount: 100, Cause: CauseDrowning}, 100},
		{"full resistance", stats.StatPoisonResistance, 1, DamageEvent{Amount: 100, DamageType: stats.DamagePoison}, 0},
		{"unknown type takes armor once", stats.StatArmor, 0.5, DamageEvent{Amount: 100, DamageType: stats.DamageType(42)}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			target := uuid.New()
			f.base(target, tt.stat, tt.value)
			ev := tt.ev
			ev.Target = target
			life, entry := f.resolver.Resolve(&ev)
			require.NotNil(t, entry)
			assert.InDelta(t, tt.want, life, 1e-3)
		})
	}
}

func TestResolve_SprintAndChannels(t *testing.T) {
	f := newFixture()
	attacker, target := uuid.New(), uuid.New()
	f.world.sprinting[attacker] = true
	f.world.held[attacker] = HeldItem{ID: "Weapon_Shortbow_Crude"}
	f.base(attacker, stats.StatSprintDamageMult, 1.5)
	f.base(attacker, stats.StatRangedDamageMult, 2)
	f.base(target, stats.StatRangedDamageTakenMult, 0.5)

	ev := &DamageEvent{Attacker: attacker, Target: target, Amount: 10}
	life, entry := f.resolver.Resolve(ev)

	require.NotNil(t, entry)
	assert.Equal(t, AttackRanged, ev.AttackType)
	assert.InDelta(t, 15, life, 1e-4)
	labels := make([]string, 0, entry.StepCount())
	for _, s := range entry.Steps() {
		labels = append(labels, s.Label)
	}
	assert.Equal(t, []string{"Ranged Damage", "Ranged Damage Taken", "Sprint Damage"}, labels)
}
