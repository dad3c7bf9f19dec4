// Package profile loads and saves a player's persisted combat state: base
// stat values and debug overlay overrides, both keyed by stat id.
package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/udisondev/talania/internal/debug"
	"github.com/udisondev/talania/internal/stats"
)

// Profile is the persisted state shape. Unknown stat ids are ignored on load.
type Profile struct {
	BaseStats map[string]float32
	DebugAdd  map[string]float32
	DebugMult map[string]float32
}

// Empty reports whether the profile carries nothing.
func (p Profile) Empty() bool {
	return len(p.BaseStats) == 0 && len(p.DebugAdd) == 0 && len(p.DebugMult) == 0
}

// Repository persists profiles. LoadProfile returns found=false for unknown
// players.
type Repository interface {
	LoadProfile(ctx context.Context, id uuid.UUID) (p Profile, found bool, err error)
	SaveProfile(ctx context.Context, id uuid.UUID, p Profile) error
	DeleteProfile(ctx context.Context, id uuid.UUID) error
}

// Store bridges the repository with the stats registry and the debug overlay.
// Load failures are logged and fall back to catalog defaults.
type Store struct {
	repo     Repository
	registry *stats.Manager
	overlay  *debug.StatOverlay
	logs     *debug.LogService
}

// NewStore creates a profile store. overlay and logs may be nil.
func NewStore(repo Repository, registry *stats.Manager, overlay *debug.StatOverlay, logs *debug.LogService) *Store {
	return &Store{repo: repo, registry: registry, overlay: overlay, logs: logs}
}

// Load reads the player's profile. Missing profiles and repository errors
// yield an empty profile.
func (s *Store) Load(ctx context.Context, id uuid.UUID) Profile {
	p, found, err := s.repo.LoadProfile(ctx, id)
	if err != nil {
		slog.Warn("loading profile, using defaults", "player", id, "error", err)
		return Profile{}
	}
	if !found {
		return Profile{}
	}
	return p
}

// ApplyTo writes p into the player's registered stats and overlay.
func (s *Store) ApplyTo(id uuid.UUID, p Profile) {
	if id == uuid.Nil {
		return
	}
	set := s.registry.GetOrCreate(id)
	applied := set.LoadBaseValues(p.BaseStats)
	if s.overlay != nil {
		s.overlay.LoadOverrides(id, p.DebugAdd, p.DebugMult)
		s.overlay.ApplyToStats(id, set)
	}
	if s.logs != nil {
		s.logs.Log(id, debug.CategoryProfile, fmt.Sprintf("profile applied: %d base stats, %d overrides",
			applied, len(p.DebugAdd)+len(p.DebugMult)))
	}
}

// Restore loads the player's profile and applies it.
func (s *Store) Restore(ctx context.Context, id uuid.UUID) Profile {
	p := s.Load(ctx, id)
	s.ApplyTo(id, p)
	return p
}

// Capture snapshots the player's persisted state. Base values equal to the
// stat default are omitted.
func (s *Store) Capture(id uuid.UUID) Profile {
	p := Profile{BaseStats: make(map[string]float32)}
	if set, ok := s.registry.Get(id); ok {
		for key, v := range set.BaseValues() {
			stat, _ := stats.StatTypeFromID(key)
			if v != stat.Default() {
				p.BaseStats[key] = v
			}
		}
	}
	if s.overlay != nil {
		p.DebugAdd, p.DebugMult = s.overlay.Overrides(id)
	} else {
		p.DebugAdd = make(map[string]float32)
		p.DebugMult = make(map[string]float32)
	}
	return p
}

// Save captures and persists the player's state. An empty capture deletes
// the stored profile.
func (s *Store) Save(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	p := s.Capture(id)
	if p.Empty() {
		if err := s.repo.DeleteProfile(ctx, id); err != nil {
			slog.Warn("deleting profile", "player", id, "error", err)
			return fmt.Errorf("deleting profile %s: %w", id, err)
		}
		return nil
	}
	if err := s.repo.SaveProfile(ctx, id, p); err != nil {
		slog.Warn("saving profile", "player", id, "error", err)
		return fmt.Errorf("saving profile %s: %w", id, err)
	}
	return nil
}
