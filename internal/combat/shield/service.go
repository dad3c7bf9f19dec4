// Package shield tracks per-entity energy shields: an absorbing buffer that
// intercepts damage before health and recharges after a damage-free delay.
package shield

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

const eps = 1e-4

// Status is the observable shield state.
type Status uint8

const (
	StatusNone       Status = iota // no shield capacity
	StatusActive                   // full
	StatusRecharging               // partial, delay elapsed
	StatusDepleted                 // empty, or waiting out the recharge delay
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "NONE"
	case StatusActive:
		return "ACTIVE"
	case StatusRecharging:
		return "RECHARGING"
	case StatusDepleted:
		return "DEPLETED"
	default:
		return "UNKNOWN"
	}
}

type state struct {
	mu           sync.Mutex
	current      float32
	lastDamageAt time.Time // zero until the first hit
	initialized  bool
}

// prepare fills a fresh shield to max and re-clamps charge when max shrank.
// Caller holds st.mu.
func (st *state) prepare(maxShield float32) {
	if !st.initialized {
		st.current = maxShield
		st.initialized = true
	}
	if st.current > maxShield+eps {
		st.current = maxShield
	}
}

// Service holds shield charge for every entity. Capacity, recharge rate and
// delay are passed on each call since they are stats that may change between
// reads.
//
// Thread-safe: sync.Map of per-entity states, each with its own mutex.
type Service struct {
	states sync.Map // uuid.UUID -> *state
	now    func() time.Time
}

// NewService creates a shield service using the wall clock.
func NewService() *Service {
	return NewServiceWithClock(time.Now)
}

// NewServiceWithClock creates a shield service with an injected clock.
func NewServiceWithClock(now func() time.Time) *Service {
	return &Service{now: now}
}

func (s *Service) state(id uuid.UUID) *state {
	if v, ok := s.states.Load(id); ok {
		return v.(*state)
	}
	v, _ := s.states.LoadOrStore(id, &state{})
	return v.(*state)
}

// Current returns the stored charge (0 when the entity has no state).
func (s *Service) Current(id uuid.UUID) float32 {
	v, ok := s.states.Load(id)
	if !ok {
		return 0
	}
	st := v.(*state)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.current
}

// ApplyDamage absorbs as much of amount as the shield holds and returns the
// remainder. Any call, including zero damage, restarts the recharge delay.
// With no capacity the stored charge is zeroed and everything passes through.
func (s *Service) ApplyDamage(id uuid.UUID, amount, maxShield float32) float32 {
	if id == uuid.Nil || amount < 0 || math.IsNaN(float64(amount)) {
		return amount
	}
	now := s.now()

	if maxShield <= 0 {
		if v, ok := s.states.Load(id); ok {
			st := v.(*state)
			st.mu.Lock()
			st.current = 0
			st.lastDamageAt = now
			st.mu.Unlock()
		}
		return amount
	}

	st := s.state(id)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.prepare(maxShield)
	st.lastDamageAt = now
	absorbed := min(amount, st.current)
	st.current = max(0, st.current-absorbed)
	return amount - absorbed
}

// Tick regenerates charge by rate × dt once delay seconds have passed since
// the last damage. Entities without capacity have their state evicted.
func (s *Service) Tick(id uuid.UUID, dt, maxShield, rate, delay float32) {
	if id == uuid.Nil {
		return
	}
	if maxShield <= 0 {
		s.states.Delete(id)
		return
	}

	st := s.state(id)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.prepare(maxShield)
	if rate <= eps || st.current >= maxShield-eps {
		return
	}
	if !st.lastDamageAt.IsZero() && s.now().Sub(st.lastDamageAt) < delayDuration(delay) {
		return
	}
	st.current = min(maxShield, st.current+rate*max(0, dt))
}

// Status classifies the shield for display.
func (s *Service) Status(id uuid.UUID, maxShield, rate, delay float32) Status {
	if id == uuid.Nil || maxShield <= 0 {
		return StatusNone
	}

	var (
		current      float32
		lastDamageAt time.Time
	)
	if v, ok := s.states.Load(id); ok {
		st := v.(*state)
		st.mu.Lock()
		current, lastDamageAt = st.current, st.lastDamageAt
		st.mu.Unlock()
	}

	switch {
	case current <= eps:
		return StatusDepleted
	case current >= maxShield-eps:
		return StatusActive
	case rate <= eps:
		return StatusDepleted
	case lastDamageAt.IsZero():
		return StatusRecharging
	case s.now().Sub(lastDamageAt) < delayDuration(delay):
		return StatusDepleted
	default:
		return StatusRecharging
	}
}

// Clear drops an entity's shield state.
func (s *Service) Clear(id uuid.UUID) {
	s.states.Delete(id)
}

func delayDuration(seconds float32) time.Duration {
	return time.Duration(float64(max(0, seconds)) * float64(time.Second))
}
