package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/talania/internal/combat"
)

type simEntity struct {
	name      string
	player    bool
	sprinting bool
	held      combat.HeldItem
	hasItem   bool
}

// simWorld answers combat.World queries for scenario entities and delivers
// debug chat lines to out.
//
// Thread-safe: protected by sync.RWMutex.
type simWorld struct {
	mu       sync.RWMutex
	entities map[uuid.UUID]*simEntity
	out      io.Writer
}

func newSimWorld(out io.Writer) *simWorld {
	return &simWorld{entities: make(map[uuid.UUID]*simEntity), out: out}
}

func (w *simWorld) add(spec EntitySpec) uuid.UUID {
	id := entityID(spec.Name)
	e := &simEntity{
		name:      spec.Name,
		player:    spec.Player,
		sprinting: spec.Sprinting,
	}
	if spec.Held != "" || spec.Family != "" {
		e.held = combat.HeldItem{ID: spec.Held, Family: spec.Family}
		e.hasItem = true
	}
	w.mu.Lock()
	w.entities[id] = e
	w.mu.Unlock()
	return id
}

func (w *simWorld) get(id uuid.UUID) (*simEntity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.entities[id]
	return e, ok
}

func (w *simWorld) IsPlayer(id uuid.UUID) bool {
	e, ok := w.get(id)
	return ok && e.player
}

func (w *simWorld) IsSprinting(id uuid.UUID) bool {
	e, ok := w.get(id)
	return ok && e.sprinting
}

func (w *simWorld) HeldItem(id uuid.UUID) (combat.HeldItem, bool) {
	e, ok := w.get(id)
	if !ok || !e.hasItem {
		return combat.HeldItem{}, false
	}
	return e.held, true
}

func (w *simWorld) DisplayName(id uuid.UUID) string {
	if e, ok := w.get(id); ok {
		return e.name
	}
	return ""
}

// SendMessage implements debug.Messenger.
func (w *simWorld) SendMessage(id uuid.UUID, text string) bool {
	e, ok := w.get(id)
	if !ok || !e.player {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "  <%s> %s\n", e.name, text)
	return true
}
