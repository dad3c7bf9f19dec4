package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/talania/internal/combat"
	"github.com/udisondev/talania/internal/combat/shield"
	"github.com/udisondev/talania/internal/combatlog"
	"github.com/udisondev/talania/internal/config"
	"github.com/udisondev/talania/internal/debug"
	"github.com/udisondev/talania/internal/healing"
	"github.com/udisondev/talania/internal/profile"
	"github.com/udisondev/talania/internal/race"
	"github.com/udisondev/talania/internal/stats"
)

const reportEntries = 5

// simulator wires the combat stack for one scenario run.
type simulator struct {
	out io.Writer

	registry   *stats.Manager
	overlay    *debug.StatOverlay
	logs       *debug.LogService
	combatLogs *combatlog.Manager
	shields    *shield.Service
	regen      *shield.Regenerator
	world      *simWorld
	weapons    *combat.WeaponCategoryService
	resolver   *combat.Resolver
	pool       *healing.Pool
	healer     *healing.Service
	races      *race.Service
	profiles   *profile.Store

	order []uuid.UUID
}

func newSimulator(cfg config.Config, repo profile.Repository, out io.Writer) *simulator {
	s := &simulator{out: out}

	s.registry = stats.NewManager()
	s.overlay = debug.NewStatOverlay(s.registry)
	s.world = newSimWorld(out)
	s.logs = debug.NewLogService(cfg.Debug, s.world)
	s.combatLogs = combatlog.NewManager(s.logs)
	s.shields = shield.NewService()
	s.regen = shield.NewRegenerator(s.shields, s.overlay, cfg.Shield.TickInterval, s.onShieldChange)
	s.weapons = combat.NewWeaponCategoryService()
	s.pool = healing.NewPool(s.overlay)
	s.healer = healing.NewService(s.overlay, s.pool)
	s.races = race.NewService(s.registry)
	s.profiles = profile.NewStore(repo, s.registry, s.overlay, s.logs)

	s.resolver = combat.NewResolver(s.overlay, s.shields, s.world, cfg.Combat)
	s.resolver.SetHealer(s.healer)
	s.resolver.SetWeaponCategories(s.weapons)
	s.resolver.SetSink(s.combatLogs)
	return s
}

// setup registers the scenario's entities. Players get their stored profile
// first; scenario values then override it.
func (s *simulator) setup(ctx context.Context, sc *Scenario) error {
	if sc.Seed != 0 {
		s.resolver.SetRand(rand.New(rand.NewPCG(sc.Seed, sc.Seed)))
	}
	if sc.PvP != nil {
		settings := s.resolver.Settings()
		settings.PvPEnabled = *sc.PvP
		s.resolver.SetSettings(settings)
	}

	for _, spec := range sc.Entities {
		id := s.world.add(spec)
		s.order = append(s.order, id)

		if spec.Player {
			s.profiles.Restore(ctx, id)
			s.logs.EnsurePlayer(id)
		}
		set := s.registry.GetOrCreate(id)
		if n := set.LoadBaseValues(spec.Base); n != len(spec.Base) {
			return fmt.Errorf("entity %q: %d unknown base stats", spec.Name, len(spec.Base)-n)
		}
		if spec.Race != "" {
			r, _ := race.Parse(spec.Race)
			s.races.SetRace(id, r)
		}
		if len(spec.DebugAdd) > 0 || len(spec.DebugMult) > 0 {
			s.overlay.LoadOverrides(id, spec.DebugAdd, spec.DebugMult)
		}
		s.overlay.Sync(id)

		for category, d := range spec.Weapons {
			s.weapons.Set(id, category, d)
		}
		s.regen.Track(id)

		slog.Debug("entity ready",
			"name", spec.Name,
			"id", id,
			"player", spec.Player,
			"race", spec.Race,
			"health", s.pool.Current(id))
	}
	return nil
}

// play runs the scripted events in order.
func (s *simulator) play(ctx context.Context, sc *Scenario) error {
	for _, ev := range sc.Events {
		if wait(ctx, ev.After) != nil {
			return nil // interrupted
		}
		if ev.Heal > 0 {
			target := entityID(ev.Target)
			applied := s.healer.ApplyHeal(target, ev.Heal)
			fmt.Fprintf(s.out, "%s healed %s (health %s)\n",
				ev.Target, combatlog.FormatAmount(applied), combatlog.FormatAmount(s.pool.Current(target)))
		}
		if ev.Amount > 0 {
			s.strike(ev)
		}
	}
	_ = wait(ctx, sc.Settle)
	return nil
}

func (s *simulator) strike(spec EventSpec) {
	ev := spec.DamageEvent()
	if s.pool.IsDead(ev.Target) {
		fmt.Fprintf(s.out, "%s is already dead\n", spec.Target)
		return
	}

	life, entry := s.resolver.Resolve(ev)
	if entry == nil {
		fmt.Fprintf(s.out, "%s -> %s ignored (%s)\n", spec.Attacker, spec.Target, ev.CancelReason)
		return
	}
	s.pool.Damage(ev.Target, life)

	fmt.Fprintln(s.out, combatlog.Summary(entry))
	for _, line := range combatlog.ModifierLines(entry, false) {
		fmt.Fprintln(s.out, "  "+line)
	}
	if s.pool.IsDead(ev.Target) {
		fmt.Fprintf(s.out, "%s has fallen\n", spec.Target)
	}
}

// report prints each entity's state and recent combat history.
func (s *simulator) report() {
	fmt.Fprintln(s.out, "--- report ---")
	for _, id := range s.order {
		name := s.world.DisplayName(id)
		maxShield := s.overlay.Stat(id, stats.StatEnergyShieldMax)
		fmt.Fprintf(s.out, "%s: health %s/%s shield %s/%s",
			name,
			combatlog.FormatAmount(s.pool.Current(id)),
			combatlog.FormatAmount(s.overlay.Stat(id, stats.StatHealth)),
			combatlog.FormatAmount(s.shields.Current(id)),
			combatlog.FormatAmount(maxShield))
		if r := s.races.Race(id); r != race.None {
			fmt.Fprintf(s.out, " race %s", r.DisplayName())
		}
		fmt.Fprintln(s.out)

		for _, e := range s.combatLogs.Recent(id, reportEntries) {
			fmt.Fprintln(s.out, "  "+combatlog.SummaryFor(id, e, "", ""))
		}
	}
}

// save persists every player's profile. Failures are logged only.
func (s *simulator) save(ctx context.Context) {
	for _, id := range s.order {
		if !s.world.IsPlayer(id) {
			continue
		}
		if err := s.profiles.Save(ctx, id); err != nil {
			slog.Error("profile not saved", "player", s.world.DisplayName(id), "err", err)
		}
	}
}

func (s *simulator) onShieldChange(id uuid.UUID, current, maxShield float32) {
	slog.Debug("shield changed",
		"entity", s.world.DisplayName(id),
		"current", current,
		"max", maxShield)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
