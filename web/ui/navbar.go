package ui

import (
	"fmt"
)

// NavItem represents a navigation item
type NavItem struct {
	URL  string
	Icon string
	Text string
}

// DefaultNavItems returns the default navigation items
func DefaultNavItems(chartEnabled bool) []NavItem {
	items := []NavItem{
		{"/", "🚀", "My Env"},
		{"/envs", "📋", "All Envs"},
	}
	if chartEnabled {
		items = append(items, NavItem{"/envs/chart", "📊", "Expirations"})
	}
	return items
}

// Navbar generates the Bootstrap navigation bar
func Navbar(currentPage, user string, chartEnabled bool) string {
	return NavbarWithItems(currentPage, user, DefaultNavItems(chartEnabled))
}

// NavbarWithItems generates the navigation bar with custom items
func NavbarWithItems(currentPage, user string, items []NavItem) string {
	html := `<nav class="navbar navbar-expand-lg navbar-dark" style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); box-shadow: 0 2px 10px rgba(0,0,0,0.1);">
    <div class="container-fluid">
        <a class="navbar-brand fw-bold" href="/">
            <i class="bi bi-hourglass-split me-2"></i>Ephemeral Envs
        </a>
        <button class="navbar-toggler" type="button" data-bs-toggle="collapse" data-bs-target="#navbarNav" aria-controls="navbarNav" aria-expanded="false" aria-label="Toggle navigation">
            <span class="navbar-toggler-icon"></span>
        </button>
        <div class="collapse navbar-collapse" id="navbarNav">
            <ul class="navbar-nav ms-auto">`

	for _, item := range items {
		active := ""
		if item.URL == currentPage {
			active = "active fw-bold"
		}
		html += fmt.Sprintf(`
                <li class="nav-item">
                    <a class="nav-link %s" href="%s">%s %s</a>
                </li>`, active, item.URL, item.Icon, item.Text)
	}

	if user != "" {
		html += fmt.Sprintf(`
                <li class="nav-item">
                    <span class="navbar-text ms-3"><i class="bi bi-person-circle me-1"></i>%s</span>
                </li>`, escape(user))
	}

	html += `
            </ul>
        </div>
    </div>
</nav>`

	return html
}
