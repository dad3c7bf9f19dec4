package shield

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/talania/internal/stats"
)

// StatSource resolves effective stats for an entity.
type StatSource interface {
	Stat(id uuid.UUID, stat stats.StatType) float32
}

// DefaultTickInterval is used when the regenerator is created with a
// non-positive interval.
const DefaultTickInterval = 250 * time.Millisecond

// Regenerator ticks the shields of tracked entities on a fixed interval,
// reading capacity, recharge rate and delay from their stats.
//
// Thread-safety: sync.Map for the tracked set. Track/Untrack can be called
// concurrently with the tick loop.
type Regenerator struct {
	service  *Service
	stats    StatSource
	interval time.Duration
	tracked  sync.Map // uuid.UUID -> float32 (last reported charge)
	onChange func(id uuid.UUID, current, maxShield float32)

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewRegenerator creates a regenerator. onChange may be nil; when set it is
// called from the tick goroutine whenever an entity's charge moved.
// Must call Start() to begin ticking.
func NewRegenerator(service *Service, source StatSource, interval time.Duration, onChange func(uuid.UUID, float32, float32)) *Regenerator {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Regenerator{
		service:  service,
		stats:    source,
		interval: interval,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the tick goroutine. It runs until Stop is called.
func (r *Regenerator) Start() {
	r.wg.Add(1)
	go r.run()
}

// Stop terminates the tick goroutine and waits for it to exit.
func (r *Regenerator) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}

// Track adds an entity to the tick set.
func (r *Regenerator) Track(id uuid.UUID) {
	if id == uuid.Nil {
		return
	}
	r.tracked.LoadOrStore(id, float32(-1))
}

// Untrack removes an entity from the tick set and clears its shield.
func (r *Regenerator) Untrack(id uuid.UUID) {
	r.tracked.Delete(id)
	r.service.Clear(id)
}

// IsTracked reports whether an entity is ticked.
func (r *Regenerator) IsTracked(id uuid.UUID) bool {
	_, ok := r.tracked.Load(id)
	return ok
}

func (r *Regenerator) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			r.TickAll(float32(now.Sub(last).Seconds()))
			last = now
		case <-r.stopCh:
			return
		}
	}
}

// TickAll advances every tracked shield by dt seconds.
func (r *Regenerator) TickAll(dt float32) {
	r.tracked.Range(func(key, value any) bool {
		id := key.(uuid.UUID)
		prev := value.(float32)

		maxShield := r.stats.Stat(id, stats.StatEnergyShieldMax)
		rate := r.stats.Stat(id, stats.StatEnergyShieldRecharge)
		delay := r.stats.Stat(id, stats.StatEnergyShieldRechargeDelay)
		r.service.Tick(id, dt, maxShield, rate, delay)

		current := r.service.Current(id)
		if abs32(current-prev) <= 0.001 {
			return true
		}
		r.tracked.CompareAndSwap(id, prev, current)

		if r.onChange != nil {
			r.onChange(id, current, max(0, maxShield))
		}
		slog.Debug("energy shield changed",
			"entity", id,
			"current", current,
			"max", maxShield,
			"status", r.service.Status(id, maxShield, rate, delay))
		return true
	})
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
