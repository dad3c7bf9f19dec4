// Package debug provides live-tuning tools layered over the stats registry:
// a per-player stat overlay and per-player categorized debug output.
package debug

import (
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/talania/internal/stats"
)

// SourcePrefix is reserved for overlay modifiers.
// Modifiers carry "debug:stat:add:<stat>" or "debug:stat:mult:<stat>".
const SourcePrefix = "debug:stat:"

const (
	epsilon       = 1e-4
	minMultiplier = 0.01
)

type playerOverlay struct {
	mu      sync.RWMutex
	enabled bool
	add     map[stats.StatType]float32
	mult    map[stats.StatType]float32
}

func newPlayerOverlay() *playerOverlay {
	return &playerOverlay{
		enabled: true,
		add:     make(map[stats.StatType]float32),
		mult:    make(map[stats.StatType]float32),
	}
}

// StatOverlay is an optional per-player add/multiply layer used for live tuning.
// Overrides never touch base values; they are materialized as modifiers with
// SourcePrefix sources by ApplyToStats and can be stripped at any time.
//
// A stored override always differs from neutral (0 delta, 1 multiplier) by
// more than epsilon: writes that land within epsilon of neutral delete the
// entry, so presence in the map means "overridden".
//
// Thread-safe: sync.Map of players, each guarded by its own RWMutex.
type StatOverlay struct {
	registry *stats.Manager
	players  sync.Map // uuid.UUID -> *playerOverlay
}

// NewStatOverlay creates an overlay bound to the stats registry.
func NewStatOverlay(registry *stats.Manager) *StatOverlay {
	return &StatOverlay{registry: registry}
}

func (o *StatOverlay) player(id uuid.UUID) *playerOverlay {
	if v, ok := o.players.Load(id); ok {
		return v.(*playerOverlay)
	}
	v, _ := o.players.LoadOrStore(id, newPlayerOverlay())
	return v.(*playerOverlay)
}

func (o *StatOverlay) lookup(id uuid.UUID) (*playerOverlay, bool) {
	v, ok := o.players.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*playerOverlay), true
}

// EnsurePlayer creates overlay state for a player and enables it.
func (o *StatOverlay) EnsurePlayer(id uuid.UUID) {
	if id == uuid.Nil {
		return
	}
	p := o.player(id)
	p.mu.Lock()
	p.enabled = true
	p.mu.Unlock()
}

// RemovePlayer drops all overlay state for a player.
func (o *StatOverlay) RemovePlayer(id uuid.UUID) {
	o.players.Delete(id)
}

// IsEnabled reports whether the player's overlay is active.
// Players without state are reported enabled (their overlay is simply empty).
func (o *StatOverlay) IsEnabled(id uuid.UUID) bool {
	if id == uuid.Nil {
		return false
	}
	p, ok := o.lookup(id)
	if !ok {
		return true
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.enabled
}

// SetEnabled soft-toggles the overlay. Stored overrides are kept; the
// player's registered stats are re-applied so a disabled overlay leaves no
// modifiers behind.
func (o *StatOverlay) SetEnabled(id uuid.UUID, enabled bool) {
	if id == uuid.Nil {
		return
	}
	p := o.player(id)
	p.mu.Lock()
	p.enabled = enabled
	p.mu.Unlock()

	o.reapply(id)
}

// Toggle flips the overlay state and returns the new state.
func (o *StatOverlay) Toggle(id uuid.UUID) bool {
	if id == uuid.Nil {
		return false
	}
	p := o.player(id)
	p.mu.Lock()
	p.enabled = !p.enabled
	enabled := p.enabled
	p.mu.Unlock()

	o.reapply(id)
	return enabled
}

// Delta returns the additive override for a stat (0 when absent).
func (o *StatOverlay) Delta(id uuid.UUID, stat stats.StatType) float32 {
	p, ok := o.lookup(id)
	if !ok {
		return 0
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.add[stat]
}

// SetDelta stores an additive override. Values within epsilon of 0 remove it.
// Non-finite values are treated as 0.
func (o *StatOverlay) SetDelta(id uuid.UUID, stat stats.StatType, value float32) {
	if id == uuid.Nil || !stat.Valid() {
		return
	}
	p := o.player(id)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setDelta(stat, value)
}

// AddDelta adjusts the additive override by delta.
func (o *StatOverlay) AddDelta(id uuid.UUID, stat stats.StatType, delta float32) {
	if id == uuid.Nil || !stat.Valid() {
		return
	}
	p := o.player(id)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setDelta(stat, p.add[stat]+delta)
}

// Multiplier returns the multiplicative override for a stat (1 when absent).
func (o *StatOverlay) Multiplier(id uuid.UUID, stat stats.StatType) float32 {
	p, ok := o.lookup(id)
	if !ok {
		return 1
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if v, ok := p.mult[stat]; ok {
		return v
	}
	return 1
}

// SetMultiplier stores a multiplicative override floored at 0.01.
// Values within epsilon of 1 remove it; non-finite values are treated as 1.
func (o *StatOverlay) SetMultiplier(id uuid.UUID, stat stats.StatType, value float32) {
	if id == uuid.Nil || !stat.Valid() {
		return
	}
	p := o.player(id)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setMultiplier(stat, value)
}

// AddMultiplier adjusts the multiplicative override by delta.
func (o *StatOverlay) AddMultiplier(id uuid.UUID, stat stats.StatType, delta float32) {
	if id == uuid.Nil || !stat.Valid() {
		return
	}
	p := o.player(id)
	p.mu.Lock()
	defer p.mu.Unlock()
	current, ok := p.mult[stat]
	if !ok {
		current = 1
	}
	p.setMultiplier(stat, current+delta)
}

func (p *playerOverlay) setDelta(stat stats.StatType, value float32) {
	if !finite(value) || abs32(value) <= epsilon {
		delete(p.add, stat)
		return
	}
	p.add[stat] = value
}

func (p *playerOverlay) setMultiplier(stat stats.StatType, value float32) {
	if !finite(value) {
		value = 1
	}
	value = max(minMultiplier, value)
	if abs32(value-1) <= epsilon {
		delete(p.mult, stat)
		return
	}
	p.mult[stat] = value
}

// ApplyToStats strips previously applied overlay modifiers from set, re-adds
// the current overrides (when enabled) and recalculates.
func (o *StatOverlay) ApplyToStats(id uuid.UUID, set *stats.EntityStats) {
	if id == uuid.Nil || set == nil {
		return
	}
	set.RemoveModifiersBySourcePrefix(SourcePrefix)

	p, ok := o.lookup(id)
	if !ok {
		set.Recalculate()
		return
	}

	p.mu.RLock()
	if p.enabled {
		for stat, v := range p.add {
			set.AddModifier(stats.Add(sourceFor(stat, "add"), stat, v))
		}
		for stat, v := range p.mult {
			set.AddModifier(stats.MultiplyTotal(sourceFor(stat, "mult"), stat, v))
		}
	}
	p.mu.RUnlock()

	set.Recalculate()
}

// Sync applies the player's overlay to their registered stats, registering
// the player if needed.
func (o *StatOverlay) Sync(id uuid.UUID) {
	if id == uuid.Nil {
		return
	}
	o.ApplyToStats(id, o.registry.GetOrCreate(id))
}

func (o *StatOverlay) reapply(id uuid.UUID) {
	if set, ok := o.registry.Get(id); ok {
		o.ApplyToStats(id, set)
	}
}

// BaseValue returns the effective stat with every overlay modifier removed.
// The registered set is never modified.
func (o *StatOverlay) BaseValue(id uuid.UUID, stat stats.StatType) float32 {
	if !stat.Valid() {
		return 0
	}
	set, ok := o.registry.Get(id)
	if !ok {
		return stat.Default()
	}
	scratch := set.Copy()
	scratch.RemoveModifiersBySourcePrefix(SourcePrefix)
	return scratch.Get(stat)
}

// Stat is the overlay-aware stat lookup. When the player's overlay is enabled
// and overrides the stat, the result is (BaseValue + delta) × multiplier
// without a range clamp. Otherwise it is the registry value.
func (o *StatOverlay) Stat(id uuid.UUID, stat stats.StatType) float32 {
	if p, ok := o.lookup(id); ok {
		p.mu.RLock()
		delta, hasDelta := p.add[stat]
		mult, hasMult := p.mult[stat]
		enabled := p.enabled
		p.mu.RUnlock()

		if enabled && (hasDelta || hasMult) {
			if !hasMult {
				mult = 1
			}
			return (o.BaseValue(id, stat) + delta) * mult
		}
	}
	return o.registry.GetStat(id, stat)
}

// HasActiveModifiers reports whether the overlay is enabled and holds any override.
func (o *StatOverlay) HasActiveModifiers(id uuid.UUID) bool {
	p, ok := o.lookup(id)
	if !ok {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.enabled && (len(p.add) > 0 || len(p.mult) > 0)
}

// Reset clears every override and re-enables the overlay.
func (o *StatOverlay) Reset(id uuid.UUID) {
	if id == uuid.Nil {
		return
	}
	p := o.player(id)
	p.mu.Lock()
	clear(p.add)
	clear(p.mult)
	p.enabled = true
	p.mu.Unlock()

	o.reapply(id)
}

// Overrides returns the stored overrides keyed by stat id.
func (o *StatOverlay) Overrides(id uuid.UUID) (add, mult map[string]float32) {
	add = make(map[string]float32)
	mult = make(map[string]float32)
	p, ok := o.lookup(id)
	if !ok {
		return add, mult
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	for stat, v := range p.add {
		add[stat.ID()] = v
	}
	for stat, v := range p.mult {
		mult[stat.ID()] = v
	}
	return add, mult
}

// LoadOverrides replaces a player's overrides from id-keyed maps.
// Unknown stat ids and neutral values are skipped.
func (o *StatOverlay) LoadOverrides(id uuid.UUID, add, mult map[string]float32) {
	if id == uuid.Nil {
		return
	}
	p := o.player(id)
	p.mu.Lock()
	clear(p.add)
	clear(p.mult)
	for key, v := range add {
		if stat, ok := stats.StatTypeFromID(key); ok {
			p.setDelta(stat, v)
		}
	}
	for key, v := range mult {
		if stat, ok := stats.StatTypeFromID(key); ok {
			p.setMultiplier(stat, v)
		}
	}
	p.mu.Unlock()
}

func sourceFor(stat stats.StatType, op string) string {
	var sb strings.Builder
	sb.Grow(len(SourcePrefix) + len(op) + 1 + len(stat.ID()))
	sb.WriteString(SourcePrefix)
	sb.WriteString(op)
	sb.WriteByte(':')
	sb.WriteString(stat.ID())
	return sb.String()
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
