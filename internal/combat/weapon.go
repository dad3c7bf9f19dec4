package combat

import (
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Unarmed is the weapon category of an empty hand.
const Unarmed = "Unarmed"

// HeldItem describes the item in an entity's main hand.
type HeldItem struct {
	ID     string // e.g. "Weapon_Sword_Iron"
	Family string // "Family" tag from item data, may be empty
}

// WeaponCategory returns the category used for weapon damage modifiers:
// the family tag when present, else the family parsed from a
// "Weapon_<Family>_..." id. Returns "" when neither is available.
func (h HeldItem) WeaponCategory() string {
	if h.Family != "" {
		return h.Family
	}
	rest, ok := strings.CutPrefix(h.ID, "Weapon_")
	if !ok {
		return ""
	}
	family, _, _ := strings.Cut(rest, "_")
	return family
}

var (
	rangedKeywords = []string{"bow", "crossbow", "gun", "rifle", "pistol", "musket"}
	magicKeywords  = []string{"staff", "wand", "tome", "spell", "magic"}
)

// InferAttackType guesses the attack channel from the item's family tag, or
// its id when untagged. Empty hands and unknown items are melee.
func InferAttackType(item HeldItem, ok bool) AttackType {
	if !ok {
		return AttackMelee
	}
	probe := item.Family
	if probe == "" {
		probe = item.ID
	}
	probe = strings.ToLower(probe)
	for _, kw := range rangedKeywords {
		if strings.Contains(probe, kw) {
			return AttackRanged
		}
	}
	for _, kw := range magicKeywords {
		if strings.Contains(probe, kw) {
			return AttackMagic
		}
	}
	return AttackMelee
}

// WeaponDamage is a per-category damage adjustment.
// Damage is scaled by max(0, 1+Bonus), then by Multiplier.
type WeaponDamage struct {
	Bonus      float32 `yaml:"bonus"`
	Multiplier float32 `yaml:"multiplier"`
}

// NeutralWeaponDamage has no effect.
var NeutralWeaponDamage = WeaponDamage{Bonus: 0, Multiplier: 1}

// UnmarshalYAML decodes over NeutralWeaponDamage so an omitted multiplier
// stays 1.
func (d *WeaponDamage) UnmarshalYAML(value *yaml.Node) error {
	type plain WeaponDamage
	p := plain(NeutralWeaponDamage)
	if err := value.Decode(&p); err != nil {
		return err
	}
	*d = WeaponDamage(p).Sanitized()
	return nil
}

// Sanitized returns a copy with a non-finite Bonus reset to 0 and the
// Multiplier sanitized like the combat settings multipliers.
func (d WeaponDamage) Sanitized() WeaponDamage {
	if f := float64(d.Bonus); math.IsNaN(f) || math.IsInf(f, 0) {
		d.Bonus = 0
	}
	d.Multiplier = sanitizeMultiplier(d.Multiplier)
	return d
}

// WeaponCategoryService stores per-entity weapon category adjustments.
// Categories are matched case-insensitively.
//
// Thread-safe: all methods are protected by sync.RWMutex.
type WeaponCategoryService struct {
	mu     sync.RWMutex
	values map[uuid.UUID]map[string]WeaponDamage
}

// NewWeaponCategoryService creates an empty service.
func NewWeaponCategoryService() *WeaponCategoryService {
	return &WeaponCategoryService{values: make(map[uuid.UUID]map[string]WeaponDamage)}
}

// Set stores the sanitized adjustment for an entity and category.
func (s *WeaponCategoryService) Set(id uuid.UUID, category string, d WeaponDamage) {
	key := normalizeCategory(category)
	if id == uuid.Nil || key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.values[id]
	if !ok {
		m = make(map[string]WeaponDamage)
		s.values[id] = m
	}
	m[key] = d.Sanitized()
}

// Get returns the adjustment for an entity and category, if one was set.
func (s *WeaponCategoryService) Get(id uuid.UUID, category string) (WeaponDamage, bool) {
	key := normalizeCategory(category)
	if id == uuid.Nil || key == "" {
		return WeaponDamage{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.values[id][key]
	return d, ok
}

// Clear drops every adjustment for an entity.
func (s *WeaponCategoryService) Clear(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, id)
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
