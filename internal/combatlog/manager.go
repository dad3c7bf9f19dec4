package combatlog

import (
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/talania/internal/debug"
)

const defaultMaxEntries = 200

// buffer is a bounded ring of entries for one player.
type buffer struct {
	mu        sync.Mutex
	max       int
	entries   []*Entry
	start     int
	lastEvent uuid.UUID
}

func newBuffer(max int) *buffer {
	if max < 1 {
		max = 1
	}
	return &buffer{max: max, entries: make([]*Entry, 0, min(max, 32))}
}

// add appends e, dropping the oldest entry when full.
// Returns false when e repeats the last recorded event.
func (b *buffer) add(e *Entry) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lastEvent != uuid.Nil && b.lastEvent == e.eventID {
		return false
	}
	b.lastEvent = e.eventID

	if len(b.entries) < b.max {
		b.entries = append(b.entries, e)
		return true
	}
	b.entries[b.start] = e
	b.start = (b.start + 1) % b.max
	return true
}

// last returns up to limit newest entries, oldest first.
func (b *buffer) last(limit int) []*Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := min(limit, len(b.entries))
	out := make([]*Entry, 0, n)
	skip := len(b.entries) - n
	for i := skip; i < len(b.entries); i++ {
		out = append(out, b.entries[(b.start+i)%len(b.entries)])
	}
	return out
}

// Manager keeps a per-player in-memory history of combat log entries and
// forwards them to debug output.
//
// Thread-safety: sync.Map of buffers, each with its own mutex.
type Manager struct {
	logs    *debug.LogService
	buffers sync.Map // uuid.UUID -> *buffer
}

// NewManager creates a manager. Buffer size comes from the log service
// settings (combat_log_max_entries).
func NewManager(logs *debug.LogService) *Manager {
	return &Manager{logs: logs}
}

// Record stores the entry for the attacker and the target and emits chat
// lines to each of them according to their enabled categories.
func (m *Manager) Record(e *Entry) {
	if e == nil {
		return
	}
	m.logs.LogToConsole(debug.CategoryDamage, Summary(e))

	if e.attackerID != uuid.Nil {
		m.recordFor(e.attackerID, e)
	}
	if e.targetID != uuid.Nil && e.targetID != e.attackerID {
		m.recordFor(e.targetID, e)
	}
}

func (m *Manager) recordFor(id uuid.UUID, e *Entry) {
	if !m.buffer(id).add(e) {
		return
	}
	if m.logs.IsEnabled(id, debug.CategoryDamage) {
		m.logs.Log(id, debug.CategoryDamage, SummaryFor(id, e, "", ""))
	}
	if m.logs.IsEnabled(id, debug.CategoryModifiers) {
		for _, line := range ModifierLines(e, true) {
			m.logs.Log(id, debug.CategoryModifiers, line)
		}
	}
}

func (m *Manager) buffer(id uuid.UUID) *buffer {
	if v, ok := m.buffers.Load(id); ok {
		return v.(*buffer)
	}
	size := m.logs.Settings().CombatLogMax
	if size <= 0 {
		size = defaultMaxEntries
	}
	v, _ := m.buffers.LoadOrStore(id, newBuffer(size))
	return v.(*buffer)
}

// Recent returns up to limit newest entries for a player, oldest first.
func (m *Manager) Recent(id uuid.UUID, limit int) []*Entry {
	if id == uuid.Nil || limit <= 0 {
		return nil
	}
	v, ok := m.buffers.Load(id)
	if !ok {
		return nil
	}
	return v.(*buffer).last(limit)
}

// Clear drops a player's history.
func (m *Manager) Clear(id uuid.UUID) {
	m.buffers.Delete(id)
}
