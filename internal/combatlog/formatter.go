package combatlog

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const timeLayout = "15:04:05"

// Summary formats an entry as a single line without a viewer.
func Summary(e *Entry) string {
	return SummaryFor(uuid.Nil, e, "", "")
}

// SummaryFor formats an entry as seen by viewer. The viewer's own side is
// shown as "You"; empty names fall back to the names stored on the entry.
//
//	[12:00:00] You -> Goblin | Damage 42.5 [FIRE] (MELEE) cause=Fall crit shield=10
func SummaryFor(viewer uuid.UUID, e *Entry, attackerName, targetName string) string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(ActorSummaryFor(viewer, e, attackerName, targetName))
	sb.WriteString(" | Damage ")
	sb.WriteString(FormatAmount(e.finalAmount))
	if e.damageType != 0 {
		sb.WriteString(" [" + strings.ToUpper(e.damageType.String()) + "]")
	}
	if e.attackType != "" {
		sb.WriteString(" (" + e.attackType + ")")
	}
	if e.cause != "" {
		sb.WriteString(" cause=" + Humanize(e.cause))
	}
	if e.crit {
		sb.WriteString(" crit")
	}
	if e.lifesteal > 0 {
		sb.WriteString(" lifesteal=" + FormatAmount(e.lifesteal))
	}
	if v, ok := e.Thorns(); ok && v > 0 {
		sb.WriteString(" thorns=" + FormatAmount(v))
	}
	if e.shieldAbsorbed > 0 {
		sb.WriteString(" shield=" + FormatAmount(e.shieldAbsorbed))
	}
	if e.cancelled {
		sb.WriteString(" cancelled")
		if e.cancelReason != "" {
			sb.WriteString(" (" + e.cancelReason + ")")
		}
	}
	return sb.String()
}

// ActorSummaryFor returns "[HH:MM:SS] attacker -> target".
func ActorSummaryFor(viewer uuid.UUID, e *Entry, attackerName, targetName string) string {
	if e == nil {
		return ""
	}
	if attackerName == "" {
		attackerName = e.attackerName
	}
	if targetName == "" {
		targetName = e.targetName
	}
	attacker := label(viewer, e.attackerID, attackerName, "Attacker")
	target := label(viewer, e.targetID, targetName, "Target")
	return timestamp(e) + " " + attacker + " -> " + target
}

// DamageText returns "Damage <final>".
func DamageText(e *Entry) string {
	if e == nil {
		return ""
	}
	return "Damage " + FormatAmount(e.finalAmount)
}

// DamageTooltip returns a multi-line breakdown for UI display.
func DamageTooltip(e *Entry) string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Damage: " + FormatAmount(e.finalAmount))
	if e.damageType != 0 {
		sb.WriteString(" [" + Humanize(e.damageType.String()) + "]")
	}
	if e.attackType != "" {
		sb.WriteString(" (" + Humanize(e.attackType) + ")")
	}
	if e.cause != "" {
		sb.WriteString("\nCause: " + Humanize(e.cause))
	}
	if e.crit {
		sb.WriteString("\nCrit: yes")
	}
	if e.lifesteal > 0 {
		sb.WriteString("\nLifesteal: " + FormatAmount(e.lifesteal))
	}
	if v, ok := e.Thorns(); ok && v > 0 {
		sb.WriteString("\nThorns: " + FormatAmount(v))
	}
	if blocked, ok := e.Blocked(); ok {
		sb.WriteString("\nBlocked: " + yesNo(blocked))
	}
	if e.cancelled {
		sb.WriteString("\nCancelled")
		if strings.TrimSpace(e.cancelReason) != "" {
			sb.WriteString(": " + e.cancelReason)
		}
	}
	sb.WriteString("\n\nBase damage: " + FormatAmount(e.baseAmount))
	if len(e.steps) == 0 {
		sb.WriteString(" (no modifiers)")
		for _, line := range mitigation(e, "") {
			sb.WriteString("\n" + line)
		}
		return sb.String()
	}
	for _, line := range ModifierLines(e, false) {
		sb.WriteString("\n" + line)
	}
	return sb.String()
}

// ModifierLines returns one line per step ("Label: before -> after (formula)")
// followed by the shield/life split. Entries without steps produce a single
// base line.
func ModifierLines(e *Entry, withTimestamp bool) []string {
	if e == nil {
		return nil
	}
	prefix := ""
	if withTimestamp {
		prefix = timestamp(e) + " "
	}

	var lines []string
	if len(e.steps) == 0 {
		if e.baseAmount == e.finalAmount {
			lines = append(lines, prefix+"base: "+FormatAmount(e.baseAmount)+" (no modifiers)")
		} else {
			lines = append(lines, prefix+"base: "+FormatAmount(e.baseAmount)+" -> "+FormatAmount(e.finalAmount))
		}
		return append(lines, mitigation(e, prefix)...)
	}

	for _, s := range e.steps {
		line := prefix + s.Label + ": " + FormatAmount(s.Before) + " -> " + FormatAmount(s.After)
		if strings.TrimSpace(s.Formula) != "" {
			line += " (" + s.Formula + ")"
		}
		lines = append(lines, line)
	}
	return append(lines, mitigation(e, prefix)...)
}

func mitigation(e *Entry, prefix string) []string {
	var lines []string
	if e.shieldAbsorbed > 0 {
		lines = append(lines, prefix+"Energy shield removed: "+FormatAmount(e.shieldAbsorbed))
	}
	if e.lifeDamage > 0 {
		lines = append(lines, prefix+"Life removed: "+FormatAmount(e.lifeDamage))
	}
	return lines
}

// FormatAmount renders an amount with at most two decimals and no trailing
// zeros: 75, 12.5, 0.33.
func FormatAmount(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', 2, 32)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// FormatMultiplier renders a multiplier with exactly one decimal: 1.5, 2.0.
func FormatMultiplier(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 1, 32)
}

func timestamp(e *Entry) string {
	return "[" + e.timestamp.Format(timeLayout) + "]"
}

func label(viewer, subject uuid.UUID, name, fallback string) string {
	if viewer != uuid.Nil && viewer == subject {
		return "You"
	}
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

// Humanize turns ids like "fire", "MELEE" or "out_of_world" into "Out Of World".
func Humanize(raw string) string {
	cleaned := strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(raw))
	if cleaned == "" {
		return "Unknown"
	}
	words := strings.Split(strings.ToLower(cleaned), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
