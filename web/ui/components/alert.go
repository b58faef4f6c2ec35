package components

import (
	"fmt"
	"html/template"
)

// Alert generates a Bootstrap alert
func Alert(message, variant string) string {
	return fmt.Sprintf(`<div class="alert alert-%s">%s</div>`, variant, template.HTMLEscapeString(message))
}

// AlertWithIcon generates an alert with an icon
func AlertWithIcon(message, icon, variant string) string {
	return fmt.Sprintf(`<div class="alert alert-%s">
    <i class="bi bi-%s me-2"></i>%s
</div>`, variant, icon, template.HTMLEscapeString(message))
}

// InfoAlert generates an info alert
func InfoAlert(message string) string {
	return AlertWithIcon(message, "info-circle", "info")
}

// WarningAlert generates a warning alert
func WarningAlert(message string) string {
	return AlertWithIcon(message, "exclamation-triangle", "warning")
}

// DangerAlert generates a danger alert
func DangerAlert(message string) string {
	return AlertWithIcon(message, "x-circle", "danger")
}
