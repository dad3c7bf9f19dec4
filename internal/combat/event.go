package combat

import (
	"github.com/google/uuid"

	"github.com/udisondev/talania/internal/stats"
)

// DamageEvent is one combat interaction handed to the Resolver.
// The resolver mutates Amount in place and fills in the outcome fields.
type DamageEvent struct {
	Attacker uuid.UUID // uuid.Nil for environmental damage
	Target   uuid.UUID
	Amount   float32
	Cause    DamageCause

	// AttackType is inferred from the attacker's held item when AttackNone.
	AttackType AttackType
	DamageType stats.DamageType

	// Side-channel metadata set by other combat systems.
	Blocked *bool
	Thorns  *float32

	// StaminaDrainMultiplier is filled by the resolver for the stamina
	// system unless another system already set it.
	StaminaDrainMultiplier *float32

	Cancelled    bool
	CancelReason string
	Crit         bool

	processed bool
}

// Processed reports whether the event already went through a Resolver.
func (e *DamageEvent) Processed() bool { return e.processed }
