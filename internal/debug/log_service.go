package debug

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Category groups debug output so players can opt into what they see.
type Category uint8

const (
	CategoryDamage Category = iota
	CategoryModifiers
	CategoryCooldown
	CategoryInput
	CategoryActivation
	CategoryProfile
	CategorySystem
	CategoryUI
	CategoryProjectiles
	CategoryEffects
	CategoryCombatLog
	categoryCount
)

var categoryInfo = [categoryCount]struct{ id, description string }{
	CategoryDamage:      {"damage", "Damage events and totals"},
	CategoryModifiers:   {"modifiers", "Damage modifiers and formulas"},
	CategoryCooldown:    {"cooldown", "Cooldown triggers and blocks"},
	CategoryInput:       {"input", "Raw input and pattern detection"},
	CategoryActivation:  {"activation", "Ability activations"},
	CategoryProfile:     {"profile", "Profile and progression changes"},
	CategorySystem:      {"system", "Runtime warnings and system state"},
	CategoryUI:          {"ui", "UI actions and flows"},
	CategoryProjectiles: {"projectiles", "Projectile ownership and impacts"},
	CategoryEffects:     {"effects", "Entity effect application/removal"},
	CategoryCombatLog:   {"combat_log", "Combat log storage and display"},
}

func (c Category) String() string {
	if c < categoryCount {
		return categoryInfo[c].id
	}
	return "unknown"
}

// Description returns a human-readable summary of the category.
func (c Category) Description() string {
	if c < categoryCount {
		return categoryInfo[c].description
	}
	return ""
}

// ParseCategory resolves a category id (case-insensitive).
func ParseCategory(raw string) (Category, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for c := Category(0); c < categoryCount; c++ {
		if categoryInfo[c].id == raw {
			return c, true
		}
	}
	return 0, false
}

// AllCategories returns every category in declaration order.
func AllCategories() []Category {
	out := make([]Category, categoryCount)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// Settings controls debug output.
type Settings struct {
	EnableChatOutput  bool     `yaml:"enable_chat_output"`
	EnableUIOutput    bool     `yaml:"enable_ui_output"`
	LogToConsole      bool     `yaml:"log_to_console"`
	RateLimit         Duration `yaml:"rate_limit"`
	CombatLogMax      int      `yaml:"combat_log_max_entries"`
	DefaultCategories []string `yaml:"default_categories"`
}

// DefaultSettings returns chat and UI output on, console off, no rate limit
// and 200 combat log entries per player.
func DefaultSettings() Settings {
	return Settings{
		EnableChatOutput: true,
		EnableUIOutput:   true,
		CombatLogMax:     200,
	}
}

// Duration is a time.Duration that unmarshals from strings like "250ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Messenger delivers a chat line to a connected player.
// Returns false when the player cannot be reached.
type Messenger interface {
	SendMessage(playerID uuid.UUID, text string) bool
}

type categorySet uint16

func (s categorySet) has(c Category) bool { return s&(1<<c) != 0 }

// LogService routes categorized debug lines to players that enabled the
// category, and optionally to the process log.
//
// Thread-safe: per-player sets and rate-limit stamps are guarded by mu.
type LogService struct {
	mu        sync.Mutex
	settings  Settings
	defaults  categorySet
	enabled   map[uuid.UUID]categorySet
	lastSent  map[rateKey]time.Time
	messenger Messenger
	now       func() time.Time
}

type rateKey struct {
	player   uuid.UUID
	category Category
}

// NewLogService creates a log service. messenger may be nil, in which case
// chat output is dropped.
func NewLogService(settings Settings, messenger Messenger) *LogService {
	s := &LogService{
		enabled:   make(map[uuid.UUID]categorySet),
		lastSent:  make(map[rateKey]time.Time),
		messenger: messenger,
		now:       time.Now,
	}
	s.SetSettings(settings)
	return s
}

// SetSettings replaces the settings. Existing per-player sets are kept.
func (s *LogService) SetSettings(settings Settings) {
	var defaults categorySet
	for _, raw := range settings.DefaultCategories {
		c, ok := ParseCategory(raw)
		if !ok {
			slog.Warn("unknown debug category in settings", "category", raw)
			continue
		}
		defaults |= 1 << c
	}

	s.mu.Lock()
	s.settings = settings
	s.defaults = defaults
	s.mu.Unlock()
}

// Settings returns the current settings.
func (s *LogService) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// EnsurePlayer seeds a player's category set from the defaults.
func (s *LogService) EnsurePlayer(id uuid.UUID) {
	if id == uuid.Nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerSet(id)
}

// ClearPlayer forgets a player's categories and rate-limit state.
func (s *LogService) ClearPlayer(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.enabled, id)
	for key := range s.lastSent {
		if key.player == id {
			delete(s.lastSent, key)
		}
	}
}

// IsEnabled reports whether a player receives a category.
func (s *LogService) IsEnabled(id uuid.UUID, c Category) bool {
	if id == uuid.Nil || c >= categoryCount {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled[id].has(c)
}

// SetEnabled turns a category on or off for a player.
func (s *LogService) SetEnabled(id uuid.UUID, c Category, enabled bool) {
	if id == uuid.Nil || c >= categoryCount {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.playerSet(id)
	if enabled {
		set |= 1 << c
	} else {
		set &^= 1 << c
	}
	s.enabled[id] = set
}

// Toggle flips a category for a player and returns the new state.
func (s *LogService) Toggle(id uuid.UUID, c Category) bool {
	if id == uuid.Nil || c >= categoryCount {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.playerSet(id) ^ (1 << c)
	s.enabled[id] = set
	return set.has(c)
}

// playerSet returns the player's set, seeding it on first use. Caller holds s.mu.
func (s *LogService) playerSet(id uuid.UUID) categorySet {
	set, ok := s.enabled[id]
	if !ok {
		set = s.defaults
		s.enabled[id] = set
	}
	return set
}

// Log sends "[talania][<category>] message" to the player if chat output is
// on, the category is enabled and the rate limit allows it.
func (s *LogService) Log(id uuid.UUID, c Category, message string) {
	if id == uuid.Nil || c >= categoryCount || message == "" {
		return
	}

	s.mu.Lock()
	if !s.settings.EnableChatOutput || !s.enabled[id].has(c) || !s.allow(id, c) {
		s.mu.Unlock()
		return
	}
	messenger := s.messenger
	s.mu.Unlock()

	if messenger == nil {
		return
	}
	if !messenger.SendMessage(id, "[talania]["+c.String()+"] "+message) {
		slog.Debug("debug message not delivered", "player", id, "category", c)
	}
}

// LogToConsole writes the message to the process log when console output is on.
func (s *LogService) LogToConsole(c Category, message string) {
	s.mu.Lock()
	enabled := s.settings.LogToConsole
	s.mu.Unlock()
	if !enabled || message == "" {
		return
	}
	slog.Info(message, "component", "talania_debug", "category", c)
}

// allow applies the per player+category rate limit. Caller holds s.mu.
func (s *LogService) allow(id uuid.UUID, c Category) bool {
	limit := time.Duration(s.settings.RateLimit)
	if limit <= 0 {
		return true
	}
	now := s.now()
	key := rateKey{player: id, category: c}
	if last, ok := s.lastSent[key]; ok && now.Sub(last) < limit {
		return false
	}
	s.lastSent[key] = now
	return true
}
