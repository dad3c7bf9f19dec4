// Package combatlog records how each damage event was resolved: the base
// amount, every transformation step and the final outcome.
package combatlog

import (
	"math"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/talania/internal/stats"
)

// Step is one transformation applied during resolution.
type Step struct {
	Label   string
	Before  float32
	After   float32
	Formula string
}

// Entry is an immutable record of a resolved damage event.
// Attack type and cause are stored by id ("MELEE", "fall") so the log does
// not depend on the combat package.
type Entry struct {
	eventID        uuid.UUID
	timestamp      time.Time
	attackerID     uuid.UUID
	targetID       uuid.UUID
	attackerName   string
	targetName     string
	cause          string
	damageType     stats.DamageType
	attackType     string
	baseAmount     float32
	finalAmount    float32
	lifeDamage     float32
	shieldAbsorbed float32
	cancelled      bool
	cancelReason   string
	crit           bool
	lifesteal      float32
	thorns         *float32
	blocked        *bool
	steps          []Step
}

func (e *Entry) EventID() uuid.UUID           { return e.eventID }
func (e *Entry) Timestamp() time.Time         { return e.timestamp }
func (e *Entry) AttackerID() uuid.UUID        { return e.attackerID }
func (e *Entry) TargetID() uuid.UUID          { return e.targetID }
func (e *Entry) AttackerName() string         { return e.attackerName }
func (e *Entry) TargetName() string           { return e.targetName }
func (e *Entry) Cause() string                { return e.cause }
func (e *Entry) DamageType() stats.DamageType { return e.damageType }
func (e *Entry) AttackType() string           { return e.attackType }
func (e *Entry) BaseAmount() float32          { return e.baseAmount }
func (e *Entry) Cancelled() bool              { return e.cancelled }
func (e *Entry) CancelReason() string         { return e.cancelReason }
func (e *Entry) Crit() bool                   { return e.crit }
func (e *Entry) Lifesteal() float32           { return e.lifesteal }
func (e *Entry) ShieldAbsorbed() float32      { return e.shieldAbsorbed }

// FinalAmount is the total damage after modifiers and reductions, before the
// split into shield and life damage.
func (e *Entry) FinalAmount() float32 { return e.finalAmount }

// LifeDamage is the part of FinalAmount that reached the target's health.
func (e *Entry) LifeDamage() float32 { return e.lifeDamage }

// Thorns returns reflected damage, if the event carried any.
func (e *Entry) Thorns() (float32, bool) {
	if e.thorns == nil {
		return 0, false
	}
	return *e.thorns, true
}

// Blocked returns whether the target blocked, if known.
func (e *Entry) Blocked() (bool, bool) {
	if e.blocked == nil {
		return false, false
	}
	return *e.blocked, true
}

// Steps returns a copy of the recorded steps in application order.
func (e *Entry) Steps() []Step { return slices.Clone(e.steps) }

// StepCount returns the number of recorded steps.
func (e *Entry) StepCount() int { return len(e.steps) }

// Builder accumulates an Entry during resolution. Setters are ignored once
// Build has been called.
type Builder struct {
	entry      Entry
	lifeDamage float32
	built      bool
	result     *Entry
}

// NewBuilder starts an entry. The final amount starts at base.
func NewBuilder(eventID, attackerID, targetID uuid.UUID, base float32, now time.Time) *Builder {
	return &Builder{
		entry: Entry{
			eventID:     eventID,
			timestamp:   now,
			attackerID:  attackerID,
			targetID:    targetID,
			baseAmount:  base,
			finalAmount: base,
		},
		lifeDamage: float32(math.NaN()),
	}
}

func (b *Builder) AttackerName(name string) *Builder {
	if !b.built {
		b.entry.attackerName = name
	}
	return b
}

func (b *Builder) TargetName(name string) *Builder {
	if !b.built {
		b.entry.targetName = name
	}
	return b
}

func (b *Builder) Cause(id string) *Builder {
	if !b.built {
		b.entry.cause = id
	}
	return b
}

func (b *Builder) DamageType(t stats.DamageType) *Builder {
	if !b.built {
		b.entry.damageType = t
	}
	return b
}

func (b *Builder) AttackType(id string) *Builder {
	if !b.built {
		b.entry.attackType = id
	}
	return b
}

func (b *Builder) FinalAmount(amount float32) *Builder {
	if !b.built {
		b.entry.finalAmount = amount
	}
	return b
}

// Cancel marks the event cancelled with a reason such as "dodge".
func (b *Builder) Cancel(reason string) *Builder {
	if !b.built {
		b.entry.cancelled = true
		b.entry.cancelReason = reason
	}
	return b
}

func (b *Builder) Crit(crit bool) *Builder {
	if !b.built {
		b.entry.crit = crit
	}
	return b
}

func (b *Builder) Lifesteal(amount float32) *Builder {
	if !b.built {
		b.entry.lifesteal = amount
	}
	return b
}

func (b *Builder) Thorns(amount *float32) *Builder {
	if !b.built && amount != nil {
		v := *amount
		b.entry.thorns = &v
	}
	return b
}

func (b *Builder) Blocked(blocked *bool) *Builder {
	if !b.built && blocked != nil {
		v := *blocked
		b.entry.blocked = &v
	}
	return b
}

func (b *Builder) LifeDamage(amount float32) *Builder {
	if !b.built {
		b.lifeDamage = amount
	}
	return b
}

func (b *Builder) ShieldAbsorbed(amount float32) *Builder {
	if !b.built {
		b.entry.shieldAbsorbed = amount
	}
	return b
}

// Step records a transformation. Steps that did not change the amount, or
// that lack a label or formula, are dropped.
func (b *Builder) Step(label string, before, after float32, formula string) *Builder {
	if b.built || label == "" || formula == "" || before == after {
		return b
	}
	b.entry.steps = append(b.entry.steps, Step{Label: label, Before: before, After: after, Formula: formula})
	return b
}

// Build finalizes the entry. Life damage defaults to the final amount when
// it was never set. Subsequent calls return the same entry.
func (b *Builder) Build() *Entry {
	if b.built {
		return b.result
	}
	b.built = true
	if math.IsNaN(float64(b.lifeDamage)) {
		b.entry.lifeDamage = b.entry.finalAmount
	} else {
		b.entry.lifeDamage = b.lifeDamage
	}
	e := b.entry
	e.steps = slices.Clone(b.entry.steps)
	b.result = &e
	return b.result
}
