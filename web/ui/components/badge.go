package components

import (
	"fmt"
	"html/template"
)

// Badge generates a Bootstrap badge
func Badge(text, variant string) string {
	return fmt.Sprintf(`<span class="badge bg-%s">%s</span>`, variant, template.HTMLEscapeString(text))
}

// BadgeWithIcon generates a badge with an icon prefix
func BadgeWithIcon(text, icon, variant string) string {
	return fmt.Sprintf(`<span class="badge bg-%s">%s %s</span>`, variant, icon, template.HTMLEscapeString(text))
}

// Env status values
const (
	StatusRunning  = "running"
	StatusExpiring = "expiring"
	StatusExpired  = "expired"
	StatusPending  = "pending"
)

// StatusBadge generates a badge for env status values
func StatusBadge(status string) string {
	variant := "secondary"
	icon := ""
	switch status {
	case StatusRunning:
		variant = "success"
		icon = "✅"
	case StatusExpiring:
		variant = "warning text-dark"
		icon = "⏳"
	case StatusExpired:
		variant = "danger"
		icon = "❌"
	case StatusPending:
		variant = "info"
		icon = "🕐"
	}
	return BadgeWithIcon(status, icon, variant)
}
