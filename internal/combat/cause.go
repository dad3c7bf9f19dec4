package combat

import "strings"

// DamageCause is what produced a damage event.
type DamageCause uint8

const (
	CauseNone DamageCause = iota
	CausePhysical
	CauseProjectile
	CauseFall
	CauseDrowning
	CauseSuffocation
	CauseEnvironment
	CauseOutOfWorld
	CauseCommand
)

var causeIDs = [...]string{
	CauseNone:        "",
	CausePhysical:    "physical",
	CauseProjectile:  "projectile",
	CauseFall:        "fall",
	CauseDrowning:    "drowning",
	CauseSuffocation: "suffocation",
	CauseEnvironment: "environment",
	CauseOutOfWorld:  "out_of_world",
	CauseCommand:     "command",
}

// String returns the cause id, empty for CauseNone.
func (c DamageCause) String() string {
	if int(c) < len(causeIDs) {
		return causeIDs[c]
	}
	return ""
}

// ParseDamageCause resolves a cause id (case-insensitive, "-" and "_" interchangeable).
func ParseDamageCause(raw string) (DamageCause, bool) {
	id := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
	if id == "outofworld" {
		id = "out_of_world"
	}
	for i, v := range causeIDs {
		if v != "" && v == id {
			return DamageCause(i), true
		}
	}
	return CauseNone, false
}
