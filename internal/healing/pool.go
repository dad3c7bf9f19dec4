package healing

import (
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/talania/internal/stats"
)

type health struct {
	mu      sync.Mutex
	current float32
	init    bool
}

// Pool is an in-memory HealthPool. Max health is read from the health stat
// on every mutation; new entities start full.
//
// Thread-safe: sync.Map of per-entity records, each with its own mutex.
type Pool struct {
	stats   StatSource
	entries sync.Map // uuid.UUID -> *health
}

// NewPool creates a pool reading max health from source.
func NewPool(source StatSource) *Pool {
	return &Pool{stats: source}
}

func (p *Pool) entry(id uuid.UUID) *health {
	if v, ok := p.entries.Load(id); ok {
		return v.(*health)
	}
	v, _ := p.entries.LoadOrStore(id, &health{})
	return v.(*health)
}

// lock returns the entity's record locked and clamped to maxHealth.
func (p *Pool) lock(id uuid.UUID) (*health, float32) {
	maxHealth := p.stats.Stat(id, stats.StatHealth)
	h := p.entry(id)
	h.mu.Lock()
	if !h.init {
		h.current = maxHealth
		h.init = true
	}
	h.current = min(h.current, maxHealth)
	return h, maxHealth
}

// Current returns the entity's current health.
func (p *Pool) Current(id uuid.UUID) float32 {
	if id == uuid.Nil {
		return 0
	}
	h, _ := p.lock(id)
	defer h.mu.Unlock()
	return h.current
}

// AddHealth raises current health up to max and returns the gain.
func (p *Pool) AddHealth(id uuid.UUID, amount float32) float32 {
	if id == uuid.Nil || amount <= 0 {
		return 0
	}
	h, maxHealth := p.lock(id)
	defer h.mu.Unlock()
	before := h.current
	h.current = min(maxHealth, h.current+amount)
	return h.current - before
}

// Damage lowers current health (minimum 0) and returns the health removed.
func (p *Pool) Damage(id uuid.UUID, amount float32) float32 {
	if id == uuid.Nil || amount <= 0 {
		return 0
	}
	h, _ := p.lock(id)
	defer h.mu.Unlock()
	before := h.current
	h.current = max(0, h.current-amount)
	return before - h.current
}

// IsDead reports whether the entity has no health left.
func (p *Pool) IsDead(id uuid.UUID) bool {
	return p.Current(id) <= 0
}

// Reset forgets the entity; it starts full on next access.
func (p *Pool) Reset(id uuid.UUID) {
	p.entries.Delete(id)
}
