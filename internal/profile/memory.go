package profile

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps profiles in process memory. Used when no database
// is configured.
//
// Thread-safe: protected by sync.RWMutex.
type MemoryRepository struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]Profile
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{profiles: make(map[uuid.UUID]Profile)}
}

// LoadProfile returns a copy of the stored profile.
func (r *MemoryRepository) LoadProfile(_ context.Context, id uuid.UUID) (Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, false, nil
	}
	return p.clone(), true, nil
}

// SaveProfile stores a copy of p.
func (r *MemoryRepository) SaveProfile(_ context.Context, id uuid.UUID, p Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[id] = p.clone()
	return nil
}

// DeleteProfile removes the stored profile.
func (r *MemoryRepository) DeleteProfile(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, id)
	return nil
}

func (p Profile) clone() Profile {
	return Profile{
		BaseStats: maps.Clone(p.BaseStats),
		DebugAdd:  maps.Clone(p.DebugAdd),
		DebugMult: maps.Clone(p.DebugMult),
	}
}
