package pages

import (
	"fmt"
	"html/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ghiac/ephdash/enhancer"
	"github.com/ghiac/ephdash/model"
	"github.com/ghiac/ephdash/web/ui"
	"github.com/ghiac/ephdash/web/ui/components"
)

// expiringWithin is when an env's status turns to "expiring"
const expiringWithin = 2 * time.Minute

// EnvStatus classifies an env for display
func EnvStatus(env *model.Env, now time.Time) string {
	switch {
	case !env.HasExpiration():
		return components.StatusPending
	case env.Expired(now):
		return components.StatusExpired
	case env.Remaining(now) <= expiringWithin:
		return components.StatusExpiring
	default:
		return components.StatusRunning
	}
}

// RenderEnvs generates the table of all envs
func RenderEnvs(user string, envs []*model.Env, now time.Time, chartEnabled bool) string {
	html := ui.Header("Ephemeral Envs - All")
	html += ui.Navbar("/envs", user, chartEnabled)
	html += ui.ContainerStart()
	html += ui.CardStartWithCount("All envs", "list-ul", len(envs))

	if len(envs) == 0 {
		html += components.EmptyTableMessage("No envs are running.")
		html += ui.CardEnd()
		html += ui.ContainerEnd()
		html += ui.Footer()
		return html
	}

	config := components.DefaultTableConfig()
	html += components.TableStart([]string{"User", "Repo", "Branch", "Path", "Status", "Time left", "Created"}, config)
	for _, env := range envs {
		left := "-"
		if env.HasExpiration() {
			left = enhancer.FormatRemaining(enhancer.SecondsLeft(env.Expiration, now))
		}
		created := "-"
		if !env.CreatedAt.IsZero() {
			created = humanize.RelTime(env.CreatedAt, now, "ago", "from now")
		}
		name := template.HTMLEscapeString(env.Name)
		if env.Name == user {
			name = fmt.Sprintf("<strong>%s</strong>", name)
		}
		html += components.TableRow([]string{
			name,
			fmt.Sprintf("<code>%s</code>", template.HTMLEscapeString(env.Spec.Repo)),
			template.HTMLEscapeString(env.Spec.Branch),
			template.HTMLEscapeString(env.Spec.Path),
			components.StatusBadge(EnvStatus(env, now)),
			template.HTMLEscapeString(left),
			template.HTMLEscapeString(created),
		})
	}
	html += components.TableEnd(config.Responsive)

	html += ui.CardEnd()
	html += ui.ContainerEnd()
	html += ui.Footer()
	return html
}
