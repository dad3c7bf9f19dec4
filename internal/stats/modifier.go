package stats

import (
	"cmp"
	"fmt"

	"github.com/google/uuid"
)

// Operation defines how a modifier folds into the effective value.
// Calculation order: (base + Σadd) × Πmultiply_base × Πmultiply_total.
type Operation int8

const (
	OpAdd           Operation = iota // added to the base value
	OpMultiplyBase                   // multiplies base+additive
	OpMultiplyTotal                  // multiplies the final total
)

// Priority returns the evaluation rank of the operation.
func (o Operation) Priority() int { return int(o) }

func (o Operation) String() string {
	switch o {
	case OpAdd:
		return "ADD"
	case OpMultiplyBase:
		return "MULTIPLY_BASE"
	case OpMultiplyTotal:
		return "MULTIPLY_TOTAL"
	default:
		return "UNKNOWN"
	}
}

// Modifier is an immutable, sourced adjustment to one stat.
// Sources are free-form tags such as "race:dwarf" or "item:iron_sword".
type Modifier struct {
	id         uuid.UUID
	source     string
	stat       StatType
	value      float32
	op         Operation
	priority   int32
	persistent bool
}

// NewModifier builds a modifier with every field explicit.
// A nil id is replaced with a fresh one; an empty source becomes "unknown";
// an out-of-range operation becomes OpAdd.
func NewModifier(id uuid.UUID, source string, stat StatType, value float32, op Operation, priority int32, persistent bool) Modifier {
	if id == uuid.Nil {
		id = uuid.New()
	}
	if source == "" {
		source = "unknown"
	}
	if op < OpAdd || op > OpMultiplyTotal {
		op = OpAdd
	}
	return Modifier{
		id:         id,
		source:     source,
		stat:       stat,
		value:      value,
		op:         op,
		priority:   priority,
		persistent: persistent,
	}
}

// Add creates a persistent additive modifier.
func Add(source string, stat StatType, value float32) Modifier {
	return NewModifier(uuid.Nil, source, stat, value, OpAdd, 0, true)
}

// MultiplyBase creates a persistent base multiplier.
func MultiplyBase(source string, stat StatType, value float32) Modifier {
	return NewModifier(uuid.Nil, source, stat, value, OpMultiplyBase, 0, true)
}

// MultiplyTotal creates a persistent total multiplier.
func MultiplyTotal(source string, stat StatType, value float32) Modifier {
	return NewModifier(uuid.Nil, source, stat, value, OpMultiplyTotal, 0, true)
}

// Temporary creates a non-persistent modifier, cleared by ClearTemporaryModifiers.
func Temporary(source string, stat StatType, value float32, op Operation) Modifier {
	return NewModifier(uuid.Nil, source, stat, value, op, 0, false)
}

func (m Modifier) ID() uuid.UUID        { return m.id }
func (m Modifier) Source() string       { return m.source }
func (m Modifier) Stat() StatType       { return m.stat }
func (m Modifier) Value() float32       { return m.value }
func (m Modifier) Operation() Operation { return m.op }
func (m Modifier) Priority() int32      { return m.priority }
func (m Modifier) Persistent() bool     { return m.persistent }

// compareModifiers orders by operation, then custom priority.
// Equal keys fall back to value so that folding is independent of insertion order.
func compareModifiers(a, b Modifier) int {
	if c := cmp.Compare(a.op.Priority(), b.op.Priority()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.priority, b.priority); c != 0 {
		return c
	}
	return cmp.Compare(a.value, b.value)
}

func (m Modifier) String() string {
	sign := "*"
	if m.op == OpAdd {
		sign = "+"
	}
	return fmt.Sprintf("Modifier[%s %s %.2f %s from %s]", m.stat.ID(), sign, m.value, m.op, m.source)
}
