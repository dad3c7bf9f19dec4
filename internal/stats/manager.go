package stats

import (
	"sync"

	"github.com/google/uuid"
)

// ChangeEvent describes a stat change reported through NotifyChange.
type ChangeEvent struct {
	EntityID uuid.UUID
	Stat     StatType
	OldValue float32
	NewValue float32
}

// Delta returns NewValue - OldValue.
func (e ChangeEvent) Delta() float32 { return e.NewValue - e.OldValue }

// Manager is the process-wide registry of entity stats.
// Create one at startup and pass it to the systems that need it.
//
// Thread-safety: sync.Map for the registry; bulk operations iterate a
// weakly-consistent view and tolerate concurrent insert/remove.
type Manager struct {
	registry sync.Map // uuid.UUID -> *EntityStats

	listenersMu sync.RWMutex
	listeners   map[StatType]func(ChangeEvent)
}

// NewManager creates an empty registry.
func NewManager() *Manager {
	return &Manager{listeners: make(map[StatType]func(ChangeEvent))}
}

// GetOrCreate returns the stats for an entity, creating defaults on first use.
func (m *Manager) GetOrCreate(id uuid.UUID) *EntityStats {
	if v, ok := m.registry.Load(id); ok {
		return v.(*EntityStats)
	}
	v, _ := m.registry.LoadOrStore(id, NewEntityStats())
	return v.(*EntityStats)
}

// Get returns the stats for an entity if registered.
func (m *Manager) Get(id uuid.UUID) (*EntityStats, bool) {
	v, ok := m.registry.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*EntityStats), true
}

// Register stores stats for an entity, replacing any previous set.
func (m *Manager) Register(id uuid.UUID, s *EntityStats) {
	if s == nil {
		return
	}
	m.registry.Store(id, s)
}

// Remove evicts an entity and returns its stats, if any.
func (m *Manager) Remove(id uuid.UUID) (*EntityStats, bool) {
	v, ok := m.registry.LoadAndDelete(id)
	if !ok {
		return nil, false
	}
	return v.(*EntityStats), true
}

// Has reports whether an entity is registered.
func (m *Manager) Has(id uuid.UUID) bool {
	_, ok := m.registry.Load(id)
	return ok
}

// Clear removes every entity.
func (m *Manager) Clear() {
	m.registry.Clear()
}

// Count returns the number of registered entities.
func (m *Manager) Count() int {
	n := 0
	m.registry.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// ApplyToAll adds the modifier to every registered entity.
// Called rarely (race or global buff changes), not per tick.
func (m *Manager) ApplyToAll(mod Modifier) {
	m.registry.Range(func(_, v any) bool {
		v.(*EntityStats).AddModifier(mod)
		return true
	})
}

// RemoveFromAll removes modifiers with the given source from every entity.
// Returns the total number removed.
func (m *Manager) RemoveFromAll(source string) int {
	total := 0
	m.registry.Range(func(_, v any) bool {
		total += v.(*EntityStats).RemoveModifiersBySource(source)
		return true
	})
	return total
}

// GetStat returns an entity's effective stat, or the catalog default when
// the entity is not registered.
func (m *Manager) GetStat(id uuid.UUID, stat StatType) float32 {
	if s, ok := m.Get(id); ok {
		return s.Get(stat)
	}
	if !stat.Valid() {
		return 0
	}
	return stat.Default()
}

// AddModifier adds a modifier to an entity, registering it if needed.
func (m *Manager) AddModifier(id uuid.UUID, mod Modifier) {
	m.GetOrCreate(id).AddModifier(mod)
}

// OnStatChange registers the listener for a stat, replacing any previous one.
// Listeners only fire through NotifyChange.
func (m *Manager) OnStatChange(stat StatType, fn func(ChangeEvent)) {
	if fn == nil || !stat.Valid() {
		return
	}
	m.listenersMu.Lock()
	m.listeners[stat] = fn
	m.listenersMu.Unlock()
}

// NotifyChange reports a stat change to the registered listener.
func (m *Manager) NotifyChange(id uuid.UUID, stat StatType, oldValue, newValue float32) {
	m.listenersMu.RLock()
	fn := m.listeners[stat]
	m.listenersMu.RUnlock()
	if fn != nil {
		fn(ChangeEvent{EntityID: id, Stat: stat, OldValue: oldValue, NewValue: newValue})
	}
}
