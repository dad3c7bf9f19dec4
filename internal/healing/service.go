// Package healing applies heals scaled by the target's healing_received_mult.
package healing

import (
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/udisondev/talania/internal/stats"
)

// StatSource resolves effective stats.
type StatSource interface {
	Stat(id uuid.UUID, stat stats.StatType) float32
}

// HealthPool owns current health. AddHealth returns the amount actually
// applied after clamping to max health.
type HealthPool interface {
	AddHealth(id uuid.UUID, amount float32) float32
}

// Service scales heals by healing_received_mult and hands them to the pool.
// It satisfies combat.Healer.
type Service struct {
	stats StatSource
	pool  HealthPool
}

// NewService creates a healing service.
func NewService(source StatSource, pool HealthPool) *Service {
	return &Service{stats: source, pool: pool}
}

// ApplyHeal heals id by amount × healing_received_mult and returns what the
// pool applied. Non-positive and non-finite amounts heal nothing.
func (s *Service) ApplyHeal(id uuid.UUID, amount float32) float32 {
	if id == uuid.Nil || !(amount > 0) || math.IsInf(float64(amount), 0) {
		return 0
	}
	mult := s.stats.Stat(id, stats.StatHealingReceivedMult)
	scaled := amount * mult
	if scaled <= 0 {
		return 0
	}
	applied := s.pool.AddHealth(id, scaled)
	slog.Debug("heal applied",
		"entity", id,
		"requested", amount,
		"multiplier", mult,
		"applied", applied)
	return applied
}
