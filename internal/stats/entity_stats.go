package stats

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// EntityStats holds base values and modifiers for a single entity and
// computes effective values on demand.
//
// Effective value: clamp((base + Σadd) × Πmultiply_base × Πmultiply_total).
// Each stat caches its last effective value until its base or modifier list
// changes; untouched stats keep their cached value.
//
// Thread-safe: all methods are protected by sync.RWMutex.
type EntityStats struct {
	mu        sync.RWMutex
	base      [statCount]float32
	modifiers [statCount][]Modifier
	cache     [statCount]float32
	valid     [statCount]bool

	// dirty is set on any invalidation and cleared by Recalculate.
	dirty bool

	// computations counts effective-value recomputations (instrumentation).
	computations atomic.Uint64
}

// NewEntityStats creates stats initialized to catalog defaults.
func NewEntityStats() *EntityStats {
	s := &EntityStats{dirty: true}
	for i := StatType(0); i < statCount; i++ {
		s.base[i] = catalog[i].def
	}
	return s
}

// SetBase sets the base value of a stat, clamped to the stat's range.
func (s *EntityStats) SetBase(stat StatType, value float32) {
	if !stat.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.base[stat] = stat.Clamp(value)
	s.invalidate(stat)
}

// Base returns the base value of a stat (before modifiers).
func (s *EntityStats) Base(stat StatType) float32 {
	if !stat.Valid() {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.base[stat]
}

// AddBase adds amount to the base value of a stat.
func (s *EntityStats) AddBase(stat StatType, amount float32) {
	if !stat.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.base[stat] = stat.Clamp(s.base[stat] + amount)
	s.invalidate(stat)
}

// AddModifier appends a modifier and keeps the stat's list ordered by
// (operation, priority). No-op modifiers are tracked like any other.
func (s *EntityStats) AddModifier(m Modifier) {
	if !m.stat.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append(s.modifiers[m.stat], m)
	slices.SortStableFunc(list, compareModifiers)
	s.modifiers[m.stat] = list
	s.invalidate(m.stat)
}

// RemoveModifier removes the modifier with the given id.
// Returns true if a modifier was removed.
func (s *EntityStats) RemoveModifier(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for stat := range s.modifiers {
		list := s.modifiers[stat]
		idx := slices.IndexFunc(list, func(m Modifier) bool { return m.id == id })
		if idx < 0 {
			continue
		}
		s.modifiers[stat] = slices.Delete(list, idx, idx+1)
		s.invalidate(StatType(stat))
		return true
	}
	return false
}

// RemoveModifiersBySource removes every modifier whose source equals source.
// Returns the number of modifiers removed.
func (s *EntityStats) RemoveModifiersBySource(source string) int {
	return s.removeWhere(func(m Modifier) bool { return m.source == source })
}

// RemoveModifiersBySourcePrefix removes every modifier whose source starts with prefix.
func (s *EntityStats) RemoveModifiersBySourcePrefix(prefix string) int {
	return s.removeWhere(func(m Modifier) bool { return strings.HasPrefix(m.source, prefix) })
}

// ClearTemporaryModifiers removes all non-persistent modifiers.
func (s *EntityStats) ClearTemporaryModifiers() int {
	return s.removeWhere(func(m Modifier) bool { return !m.persistent })
}

// ClearModifiers removes every modifier.
func (s *EntityStats) ClearModifiers() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for stat := range s.modifiers {
		s.modifiers[stat] = nil
		s.valid[stat] = false
	}
	s.dirty = true
}

func (s *EntityStats) removeWhere(match func(Modifier) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for stat := range s.modifiers {
		before := len(s.modifiers[stat])
		if before == 0 {
			continue
		}
		s.modifiers[stat] = slices.DeleteFunc(s.modifiers[stat], match)
		if n := before - len(s.modifiers[stat]); n > 0 {
			removed += n
			s.invalidate(StatType(stat))
		}
	}
	return removed
}

// Modifiers returns a copy of the modifiers applied to a stat, in evaluation order.
func (s *EntityStats) Modifiers(stat StatType) []Modifier {
	if !stat.Valid() {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.modifiers[stat])
}

// ModifiersBySource returns all modifiers whose source equals source.
func (s *EntityStats) ModifiersBySource(source string) []Modifier {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Modifier
	for _, list := range s.modifiers {
		for _, m := range list {
			if m.source == source {
				out = append(out, m)
			}
		}
	}
	return out
}

// Get returns the effective value of a stat, recomputing only if the
// cached value was invalidated.
func (s *EntityStats) Get(stat StatType) float32 {
	if !stat.Valid() {
		return 0
	}
	s.mu.RLock()
	if s.valid[stat] {
		v := s.cache[stat]
		s.mu.RUnlock()
		return v
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.valid[stat] {
		return s.cache[stat]
	}
	v := s.calculate(stat)
	s.cache[stat] = v
	s.valid[stat] = true
	return v
}

// Recalculate recomputes every stat and clears the dirty flag.
// Used after bulk modifier churn.
func (s *EntityStats) Recalculate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := StatType(0); i < statCount; i++ {
		s.cache[i] = s.calculate(i)
		s.valid[i] = true
	}
	s.dirty = false
}

// Dirty reports whether anything changed since the last Recalculate.
func (s *EntityStats) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// calculate folds modifiers in list order. Caller holds s.mu.
func (s *EntityStats) calculate(stat StatType) float32 {
	s.computations.Add(1)

	base := s.base[stat]
	mods := s.modifiers[stat]
	if len(mods) == 0 {
		return base
	}

	additive := 0.0
	multiplyBase := 1.0
	multiplyTotal := 1.0
	for _, m := range mods {
		switch m.op {
		case OpAdd:
			additive += float64(m.value)
		case OpMultiplyBase:
			multiplyBase *= float64(m.value)
		case OpMultiplyTotal:
			multiplyTotal *= float64(m.value)
		}
	}

	result := (float64(base) + additive) * multiplyBase * multiplyTotal
	return stat.Clamp(float32(result))
}

// invalidate drops the cached value of one stat. Caller holds s.mu.
func (s *EntityStats) invalidate(stat StatType) {
	s.valid[stat] = false
	s.dirty = true
}

// Copy returns a fully independent clone of base values and modifier lists.
// The clone starts with an empty cache.
func (s *EntityStats) Copy() *EntityStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c := &EntityStats{base: s.base, dirty: true}
	for stat, list := range s.modifiers {
		c.modifiers[stat] = slices.Clone(list)
	}
	return c
}

// ToMap returns effective values keyed by stat id.
func (s *EntityStats) ToMap() map[string]float32 {
	out := make(map[string]float32, statCount)
	for i := StatType(0); i < statCount; i++ {
		out[i.ID()] = s.Get(i)
	}
	return out
}

// BaseValues returns base values keyed by stat id.
func (s *EntityStats) BaseValues() map[string]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]float32, statCount)
	for i := StatType(0); i < statCount; i++ {
		out[i.ID()] = s.base[i]
	}
	return out
}

// LoadBaseValues sets base values from an id-keyed map.
// Unknown ids are skipped. Returns the number of stats applied.
func (s *EntityStats) LoadBaseValues(values map[string]float32) int {
	applied := 0
	for id, v := range values {
		stat, ok := StatTypeFromID(id)
		if !ok {
			continue
		}
		s.SetBase(stat, v)
		applied++
	}
	return applied
}

func (s *EntityStats) String() string {
	var sb strings.Builder
	sb.WriteString("EntityStats{\n")
	for i := StatType(0); i < statCount; i++ {
		base := s.Base(i)
		final := s.Get(i)
		if base != i.Default() || final != base {
			fmt.Fprintf(&sb, "  %s: %.1f (base: %.1f)\n", i.ID(), final, base)
		}
	}
	sb.WriteString("}")
	return sb.String()
}
