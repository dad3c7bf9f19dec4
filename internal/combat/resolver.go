// Package combat resolves damage events against entity stats.
//
// A Resolver runs each event through a fixed sequence of stages (dodge, crit,
// attack power, channel multipliers, sprint, global player scaling, weapon
// category, armor and flat reduction, elemental and fall resistance, energy
// shield, stamina metadata, lifesteal) and records every change to the
// amount in a combatlog.Entry.
package combat

import (
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/talania/internal/combat/shield"
	"github.com/udisondev/talania/internal/combatlog"
	"github.com/udisondev/talania/internal/stats"
)

// Cancel reasons recorded on cancelled events.
const (
	ReasonDodge         = "dodge"
	ReasonFlatReduction = "flat_reduction"
	ReasonPvPDisabled   = "pvp_disabled"
)

const defaultCritMultiplier = 1.5

// StatSource resolves effective stats. Every stat read of the resolver goes
// through it, so passing a debug.StatOverlay makes overrides visible to combat.
type StatSource interface {
	Stat(id uuid.UUID, stat stats.StatType) float32
}

// statSyncer is implemented by sources that materialize per-player state
// into the registry before reads (debug.StatOverlay).
type statSyncer interface {
	Sync(id uuid.UUID)
}

// World answers questions about entities the combat core does not own.
type World interface {
	IsPlayer(id uuid.UUID) bool
	IsSprinting(id uuid.UUID) bool
	// HeldItem returns the item in the entity's main hand; ok is false for
	// an empty hand.
	HeldItem(id uuid.UUID) (item HeldItem, ok bool)
	DisplayName(id uuid.UUID) string
}

// Healer applies healing and returns the amount actually applied.
type Healer interface {
	ApplyHeal(id uuid.UUID, amount float32) float32
}

// Rand draws uniform numbers in [0,1). *rand.Rand satisfies it.
type Rand interface {
	Float32() float32
}

// EntrySink receives every combat log entry produced.
type EntrySink interface {
	Record(e *combatlog.Entry)
}

type globalRand struct{}

func (globalRand) Float32() float32 { return rand.Float32() }

// Resolver applies combat rules to damage events.
// Create one at startup; it is safe for concurrent use on distinct events.
type Resolver struct {
	stats    StatSource
	shields  *shield.Service
	world    World
	settings atomic.Pointer[Settings]

	healer  Healer
	weapons *WeaponCategoryService
	rand    Rand
	now     func() time.Time
	sink    EntrySink
}

// NewResolver creates a resolver. shields may be nil to disable absorption.
// Optional collaborators are installed with the Set* methods.
func NewResolver(source StatSource, shields *shield.Service, world World, settings Settings) *Resolver {
	r := &Resolver{
		stats:   source,
		shields: shields,
		world:   world,
		rand:    globalRand{},
		now:     time.Now,
	}
	r.SetSettings(settings)
	return r
}

// SetSettings replaces the combat settings. Multipliers are sanitized.
func (r *Resolver) SetSettings(s Settings) {
	s = s.Sanitized()
	r.settings.Store(&s)
}

// Settings returns the active combat settings.
func (r *Resolver) Settings() Settings { return *r.settings.Load() }

// SetHealer installs the healing collaborator used by lifesteal.
func (r *Resolver) SetHealer(h Healer) { r.healer = h }

// SetWeaponCategories installs per-entity weapon category adjustments.
func (r *Resolver) SetWeaponCategories(s *WeaponCategoryService) { r.weapons = s }

// SetRand replaces the random source (tests use a fixed sequence).
func (r *Resolver) SetRand(rnd Rand) { r.rand = rnd }

// SetClock replaces the clock used for log timestamps.
func (r *Resolver) SetClock(now func() time.Time) { r.now = now }

// SetSink installs the receiver for combat log entries.
func (r *Resolver) SetSink(s EntrySink) { r.sink = s }

// resolution carries per-event state between stages.
type resolution struct {
	ev       *DamageEvent
	amount   float32
	log      *combatlog.Builder
	attacker uuid.UUID
	target   uuid.UUID
}

// mul scales the amount by factor and records the step.
func (res *resolution) mul(label string, factor float32, formula string) {
	before := res.amount
	res.amount *= factor
	res.log.Step(label, before, res.amount, formula)
}

// Resolve applies the combat pipeline to ev and returns the damage that
// reaches the target's health together with the log entry.
//
// Events with a non-positive amount, events already resolved, events
// without a target and player-vs-player events while PvP is disabled return
// a nil entry. Each event is resolved at most once.
func (r *Resolver) Resolve(ev *DamageEvent) (float32, *combatlog.Entry) {
	if ev == nil {
		return 0, nil
	}
	if ev.Amount <= 0 || ev.processed {
		return ev.Amount, nil
	}
	ev.processed = true

	if ev.Target == uuid.Nil {
		return ev.Amount, nil
	}

	attacker, target := ev.Attacker, ev.Target
	attackerIsPlayer := attacker != uuid.Nil && r.world.IsPlayer(attacker)
	targetIsPlayer := r.world.IsPlayer(target)
	settings := r.Settings()

	if attackerIsPlayer && targetIsPlayer && !settings.PvPEnabled {
		ev.Cancelled = true
		ev.CancelReason = ReasonPvPDisabled
		ev.Amount = 0
		return 0, nil
	}

	if syncer, ok := r.stats.(statSyncer); ok {
		if attackerIsPlayer {
			syncer.Sync(attacker)
		}
		if targetIsPlayer {
			syncer.Sync(target)
		}
	}

	res := &resolution{
		ev:       ev,
		amount:   ev.Amount,
		attacker: attacker,
		target:   target,
		log:      combatlog.NewBuilder(uuid.New(), attacker, target, ev.Amount, r.now()),
	}
	res.log.Cause(ev.Cause.String()).TargetName(r.world.DisplayName(target))

	if attacker != uuid.Nil {
		res.log.AttackerName(r.world.DisplayName(attacker))
		if ev.AttackType == AttackNone {
			ev.AttackType = InferAttackType(r.world.HeldItem(attacker))
		}
	}
	res.log.AttackType(ev.AttackType.String()).DamageType(ev.DamageType)

	if r.dodge(res) {
		ev.Cancelled = true
		ev.CancelReason = ReasonDodge
		ev.Amount = 0
		return 0, r.publish(res.log.Cancel(ReasonDodge).FinalAmount(0))
	}

	r.crit(res)
	r.attackPower(res)
	r.channelMultipliers(res)
	r.sprint(res)
	r.playerDamage(res, settings, attackerIsPlayer, targetIsPlayer)
	r.weaponCategory(res)

	if !r.armorAndFlat(res) {
		ev.Cancelled = true
		ev.CancelReason = ReasonFlatReduction
		ev.Amount = 0
		return 0, r.publish(res.log.Cancel(ReasonFlatReduction).FinalAmount(0))
	}

	r.elementalResistance(res)
	r.fallResistance(res)

	preShield := res.amount
	absorbed := r.energyShield(res)

	r.staminaDrain(res)
	r.lifesteal(res)

	res.log.Blocked(ev.Blocked).Thorns(ev.Thorns)
	res.log.FinalAmount(preShield).LifeDamage(res.amount).ShieldAbsorbed(absorbed)

	ev.Amount = res.amount
	return res.amount, r.publish(res.log)
}

func (r *Resolver) publish(b *combatlog.Builder) *combatlog.Entry {
	e := b.Build()
	slog.Debug("damage resolved",
		"event", e.EventID(),
		"attacker", e.AttackerID(),
		"target", e.TargetID(),
		"base", e.BaseAmount(),
		"final", e.FinalAmount(),
		"life", e.LifeDamage(),
		"cancelled", e.Cancelled())
	if r.sink != nil {
		r.sink.Record(e)
	}
	return e
}

func (r *Resolver) stat(id uuid.UUID, stat stats.StatType) float32 {
	return r.stats.Stat(id, stat)
}

// dodge rolls the target's dodge chance. Only attacks with an attacker can
// be dodged.
func (r *Resolver) dodge(res *resolution) bool {
	if res.attacker == uuid.Nil {
		return false
	}
	chance := r.stat(res.target, stats.StatDodgeChance)
	return chance > 0 && r.rand.Float32() < chance
}

func (r *Resolver) crit(res *resolution) {
	if res.attacker == uuid.Nil {
		return
	}
	chance := r.stat(res.attacker, stats.StatCritChance)
	if chance <= 0 || r.rand.Float32() >= chance {
		return
	}
	mult := r.stat(res.attacker, stats.StatCritDamage)
	if mult <= 0 {
		mult = defaultCritMultiplier
	}
	res.ev.Crit = true
	res.log.Crit(true)
	res.mul("Critical Hit", mult, multFormula(mult, statLabel(stats.StatCritDamage)))
}

func (r *Resolver) attackPower(res *resolution) {
	if res.attacker == uuid.Nil || res.ev.AttackType == AttackNone {
		return
	}
	stat := res.ev.AttackType.PowerStat()
	if power := r.stat(res.attacker, stat); power != 1 {
		label := statLabel(stat)
		res.mul(label, power, multFormula(power, label))
	}
}

func (r *Resolver) channelMultipliers(res *resolution) {
	if res.attacker != uuid.Nil {
		if stat, ok := res.ev.AttackType.DamageStat(); ok {
			if outgoing := r.stat(res.attacker, stat); outgoing != 1 {
				label := statLabel(stat)
				res.mul(label, outgoing, multFormula(outgoing, label))
			}
		}
	}
	if stat, ok := res.ev.AttackType.DamageTakenStat(); ok {
		if incoming := r.stat(res.target, stat); incoming != 1 {
			label := statLabel(stat)
			res.mul(label, incoming, multFormula(incoming, label))
		}
	}
}

func (r *Resolver) sprint(res *resolution) {
	if res.attacker == uuid.Nil || !r.world.IsSprinting(res.attacker) {
		return
	}
	if mult := r.stat(res.attacker, stats.StatSprintDamageMult); mult > 1 {
		label := statLabel(stats.StatSprintDamageMult)
		res.mul(label, mult, multFormula(mult, label))
	}
}

func (r *Resolver) playerDamage(res *resolution, s Settings, attackerIsPlayer, targetIsPlayer bool) {
	if !attackerIsPlayer {
		return
	}
	mult := s.PlayerDamageMultiplier
	if targetIsPlayer {
		mult = s.PlayerDamageToPlayerMultiplier
	}
	if mult != 1 {
		res.mul("Player Damage", mult, multFormula(mult, "Combat Settings"))
	}
}

func (r *Resolver) weaponCategory(res *resolution) {
	if res.attacker == uuid.Nil || r.weapons == nil {
		return
	}
	category := Unarmed
	if item, ok := r.world.HeldItem(res.attacker); ok {
		category = item.WeaponCategory()
	}
	d, ok := r.weapons.Get(res.attacker, category)
	if !ok {
		return
	}
	if d.Bonus != 0 {
		res.mul("Weapon Bonus", max(0, 1+d.Bonus),
			"before * (1 + "+combatlog.FormatMultiplier(d.Bonus)+") ("+category+")")
	}
	if d.Multiplier != 1 {
		res.mul("Weapon Multiplier", d.Multiplier, multFormula(d.Multiplier, category))
	}
}

// armorAndFlat applies percent armor then flat reduction.
// Returns false when flat reduction absorbed the whole hit.
func (r *Resolver) armorAndFlat(res *resolution) bool {
	r.percentReduction(res, stats.StatArmor)

	flat := r.stat(res.target, stats.StatFlatDamageReduction)
	if flat <= 0 {
		return true
	}
	before := res.amount
	res.amount = max(0, res.amount-flat)
	label := statLabel(stats.StatFlatDamageReduction)
	res.log.Step(label, before, res.amount, "before - "+combatlog.FormatAmount(flat)+" ("+label+")")
	return res.amount > 0
}

func (r *Resolver) elementalResistance(res *resolution) {
	if stat, ok := res.ev.DamageType.ResistanceStat(); ok {
		r.percentReduction(res, stat)
	}
}

func (r *Resolver) fallResistance(res *resolution) {
	if res.ev.Cause == CauseFall {
		r.percentReduction(res, stats.StatFallResistance)
	}
}

// percentReduction scales the amount by 1 - clamp(stat, 0, 1).
func (r *Resolver) percentReduction(res *resolution, stat stats.StatType) {
	v := r.stat(res.target, stat)
	if v <= 0 {
		return
	}
	v = min(1, v)
	label := statLabel(stat)
	res.mul(label, 1-v, "before * (1 - "+combatlog.FormatMultiplier(v)+") ("+label+")")
}

// energyShield lets the target's shield absorb what it can and returns the
// absorbed amount. The remainder continues as life damage.
func (r *Resolver) energyShield(res *resolution) float32 {
	if r.shields == nil {
		return 0
	}
	maxShield := r.stat(res.target, stats.StatEnergyShieldMax)
	if maxShield <= 0 {
		return 0
	}
	before := res.amount
	remaining := r.shields.ApplyDamage(res.target, before, maxShield)
	if remaining == before {
		return 0
	}
	absorbed := before - remaining
	res.amount = remaining
	res.log.Step("Energy Shield", before, remaining, "before - "+combatlog.FormatAmount(absorbed)+" (Energy Shield)")
	return absorbed
}

// staminaDrain computes the stamina drain multiplier for the stamina system.
// It never changes the amount. A value already set by another system wins.
func (r *Resolver) staminaDrain(res *resolution) {
	if res.ev.StaminaDrainMultiplier != nil {
		return
	}
	mult := r.stat(res.target, stats.StatStaminaDrainMult)
	if res.ev.Blocked != nil && *res.ev.Blocked {
		if eff := r.stat(res.target, stats.StatBlockingEfficiency); eff > 0 {
			mult *= 1 / eff
		}
	}
	if mult != 1 {
		res.ev.StaminaDrainMultiplier = &mult
	}
}

// lifesteal heals the attacker by a fraction of the life damage. The logged
// value is what the healer actually applied.
func (r *Resolver) lifesteal(res *resolution) {
	if res.attacker == uuid.Nil || r.healer == nil {
		return
	}
	fraction := r.stat(res.attacker, stats.StatLifesteal)
	if fraction <= 0 {
		return
	}
	heal := res.amount * fraction
	if heal <= 0 {
		return
	}
	if applied := r.healer.ApplyHeal(res.attacker, heal); applied > 0 {
		res.log.Lifesteal(applied)
	}
}

func multFormula(mult float32, label string) string {
	return "before * " + combatlog.FormatMultiplier(mult) + " (" + label + ")"
}

// statLabel is the display name of a stat in combat log steps.
func statLabel(stat stats.StatType) string {
	switch stat {
	case stats.StatAttack:
		return "Attack Power"
	case stats.StatMagicAttack:
		return "Magic Power"
	case stats.StatMeleeDamageMult:
		return "Melee Damage"
	case stats.StatRangedDamageMult:
		return "Ranged Damage"
	case stats.StatMagicDamageMult:
		return "Magic Damage"
	case stats.StatSprintDamageMult:
		return "Sprint Damage"
	case stats.StatMeleeDamageTakenMult:
		return "Melee Damage Taken"
	case stats.StatRangedDamageTakenMult:
		return "Ranged Damage Taken"
	case stats.StatMagicDamageTakenMult:
		return "Magic Damage Taken"
	case stats.StatCritDamage:
		return "Critical Damage"
	case stats.StatCritChance:
		return "Critical Chance"
	case stats.StatFlatDamageReduction:
		return "Flat Reduction"
	case stats.StatStaminaDrainMult:
		return "Stamina Drain"
	default:
		return combatlog.Humanize(stat.ID())
	}
}
