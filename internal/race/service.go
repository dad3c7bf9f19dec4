package race

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/talania/internal/stats"
)

// Service tracks race assignments and keeps each entity's race modifiers in
// the stats registry. Assignments are runtime only; persistence belongs to
// the profile layer.
//
// Thread-safe: assignments are protected by sync.Mutex.
type Service struct {
	registry *stats.Manager

	mu       sync.Mutex
	assigned map[uuid.UUID]Race
}

// NewService creates a race service over the stats registry.
func NewService(registry *stats.Manager) *Service {
	return &Service{
		registry: registry,
		assigned: make(map[uuid.UUID]Race),
	}
}

// Race returns the assigned race, or None.
func (s *Service) Race(id uuid.UUID) Race {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assigned[id]
}

// SetRace assigns a race, replacing the modifiers of any previous race.
func (s *Service) SetRace(id uuid.UUID, r Race) {
	if id == uuid.Nil || r == None || r >= raceCount {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.registry.GetOrCreate(id)
	if prev, ok := s.assigned[id]; ok {
		set.RemoveModifiersBySource(prev.Source())
	}
	s.assigned[id] = r
	for _, m := range r.Modifiers() {
		set.AddModifier(m)
	}
	slog.Debug("race assigned", "entity", id, "race", r.ID())
}

// ClearRace removes the assignment and its modifiers.
func (s *Service) ClearRace(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.assigned[id]
	if !ok {
		return
	}
	delete(s.assigned, id)
	if set, ok := s.registry.Get(id); ok {
		set.RemoveModifiersBySource(prev.Source())
	}
}
