package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/talania/internal/combat"
	"github.com/udisondev/talania/internal/race"
	"github.com/udisondev/talania/internal/stats"
)

// entityNamespace derives stable entity ids from scenario names so stored
// profiles survive between runs.
var entityNamespace = uuid.MustParse("6f1c1f55-4a0e-4b8e-9a43-2f7d0c3c9b10")

// Scenario is a scripted fight loaded from YAML.
type Scenario struct {
	Seed     uint64        `yaml:"seed"`
	Entities []EntitySpec  `yaml:"entities"`
	Events   []EventSpec   `yaml:"events"`
	Settle   time.Duration `yaml:"settle"`      // wait after the last event, lets shields recharge
	PvP      *bool         `yaml:"pvp_enabled"` // overrides config when set
}

// EntitySpec describes one participant.
type EntitySpec struct {
	Name      string                         `yaml:"name"`
	Player    bool                           `yaml:"player"`
	Race      string                         `yaml:"race"`
	Held      string                         `yaml:"held"`
	Family    string                         `yaml:"family"`
	Sprinting bool                           `yaml:"sprinting"`
	Base      map[string]float32             `yaml:"base"`
	DebugAdd  map[string]float32             `yaml:"debug_add"`
	DebugMult map[string]float32             `yaml:"debug_mult"`
	Weapons   map[string]combat.WeaponDamage `yaml:"weapons"`
}

// EventSpec describes one scripted damage or heal event.
type EventSpec struct {
	Attacker   string        `yaml:"attacker"` // empty for environmental damage
	Target     string        `yaml:"target"`
	Amount     float32       `yaml:"amount"`
	Heal       float32       `yaml:"heal"`
	Cause      string        `yaml:"cause"`
	AttackType string        `yaml:"attack_type"`
	DamageType string        `yaml:"damage_type"`
	Blocked    *bool         `yaml:"blocked"`
	After      time.Duration `yaml:"after"` // delay before the event
}

// entityID returns the stable id for an entity name.
func entityID(name string) uuid.UUID {
	return uuid.NewSHA1(entityNamespace, []byte(name))
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("validating scenario %s: %w", path, err)
	}
	return &sc, nil
}

// Validate checks entity references, races, causes and stat ids.
func (sc *Scenario) Validate() error {
	names := make(map[string]struct{}, len(sc.Entities))
	for _, e := range sc.Entities {
		if e.Name == "" {
			return errors.New("entity without name")
		}
		if _, dup := names[e.Name]; dup {
			return fmt.Errorf("duplicate entity %q", e.Name)
		}
		names[e.Name] = struct{}{}
		if e.Race != "" {
			if _, ok := race.Parse(e.Race); !ok {
				return fmt.Errorf("entity %q: unknown race %q", e.Name, e.Race)
			}
		}
		for _, m := range []map[string]float32{e.Base, e.DebugAdd, e.DebugMult} {
			for id := range m {
				if _, ok := stats.StatTypeFromID(id); !ok {
					return fmt.Errorf("entity %q: unknown stat %q", e.Name, id)
				}
			}
		}
	}
	for i, ev := range sc.Events {
		if _, ok := names[ev.Target]; !ok {
			return fmt.Errorf("event %d: unknown target %q", i, ev.Target)
		}
		if ev.Attacker != "" {
			if _, ok := names[ev.Attacker]; !ok {
				return fmt.Errorf("event %d: unknown attacker %q", i, ev.Attacker)
			}
		}
		if ev.Cause != "" {
			if _, ok := combat.ParseDamageCause(ev.Cause); !ok {
				return fmt.Errorf("event %d: unknown cause %q", i, ev.Cause)
			}
		}
		if ev.Amount <= 0 && ev.Heal <= 0 {
			return fmt.Errorf("event %d: needs amount or heal", i)
		}
	}
	return nil
}

// DamageEvent builds the combat event for a scripted damage event.
func (ev EventSpec) DamageEvent() *combat.DamageEvent {
	out := &combat.DamageEvent{
		Target:     entityID(ev.Target),
		Amount:     ev.Amount,
		AttackType: combat.ParseAttackType(ev.AttackType),
		DamageType: stats.ParseDamageType(ev.DamageType),
		Blocked:    ev.Blocked,
	}
	if ev.Attacker != "" {
		out.Attacker = entityID(ev.Attacker)
	}
	if cause, ok := combat.ParseDamageCause(ev.Cause); ok {
		out.Cause = cause
	} else if ev.Attacker != "" {
		out.Cause = combat.CausePhysical
	} else {
		out.Cause = combat.CauseEnvironment
	}
	return out
}
