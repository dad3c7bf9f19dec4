package combat

import "math"

// Settings are the global combat rules.
type Settings struct {
	PvPEnabled bool `yaml:"pvp_enabled"`

	// PlayerDamageMultiplier scales player damage against non-players.
	PlayerDamageMultiplier float32 `yaml:"player_damage_multiplier"`

	// PlayerDamageToPlayerMultiplier scales player damage against players.
	PlayerDamageToPlayerMultiplier float32 `yaml:"player_damage_to_player_multiplier"`
}

// DefaultSettings returns PvP enabled with neutral multipliers.
func DefaultSettings() Settings {
	return Settings{
		PvPEnabled:                     true,
		PlayerDamageMultiplier:         1,
		PlayerDamageToPlayerMultiplier: 1,
	}
}

// Sanitized returns a copy with non-finite multipliers reset to 1 and
// negative ones raised to 0.
func (s Settings) Sanitized() Settings {
	s.PlayerDamageMultiplier = sanitizeMultiplier(s.PlayerDamageMultiplier)
	s.PlayerDamageToPlayerMultiplier = sanitizeMultiplier(s.PlayerDamageToPlayerMultiplier)
	return s
}

func sanitizeMultiplier(v float32) float32 {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 1
	}
	return max(0, v)
}
