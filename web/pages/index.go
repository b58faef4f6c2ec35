package pages

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/ghiac/ephdash/enhancer"
	"github.com/ghiac/ephdash/model"
	"github.com/ghiac/ephdash/web/ui"
	"github.com/ghiac/ephdash/web/ui/components"
)

// IndexData is everything the env page shows
type IndexData struct {
	User         string
	Env          *model.Env
	EnvError     error
	Allowlist    *model.Allowlist
	GatewayHost  string
	ChartEnabled bool
	Now          time.Time

	// Query parameters chosen by the selectors; empty means "default"
	Repo   string
	Branch string
	Path   string
}

// Selection resolves the selector values: query params win, then the
// current env, then the first allowed option.
func (d IndexData) Selection() model.EnvSpec {
	spec := model.EnvSpec{Repo: d.Repo, Branch: d.Branch, Path: d.Path}
	if d.Env != nil {
		if spec.Repo == "" {
			spec.Repo = d.Env.Spec.Repo
		}
		if spec.Repo == d.Env.Spec.Repo {
			if spec.Branch == "" {
				spec.Branch = d.Env.Spec.Branch
			}
			if spec.Path == "" {
				spec.Path = d.Env.Spec.Path
			}
		}
	}
	if d.Allowlist == nil {
		return spec
	}
	if spec.Repo == "" {
		spec.Repo = first(d.Allowlist.RepoOptions())
	}
	if spec.Branch == "" {
		spec.Branch = first(d.Allowlist.BranchOptions(spec.Repo))
	}
	if spec.Path == "" {
		spec.Path = first(d.Allowlist.PathOptions(spec.Repo))
	}
	return spec
}

// RenderIndex generates the user's env page
func RenderIndex(data IndexData) string {
	if data.Now.IsZero() {
		data.Now = time.Now()
	}

	html := ui.Header("Ephemeral Env - " + data.User)
	html += ui.Navbar("/", data.User, data.ChartEnabled)
	html += ui.ContainerStart()

	if data.EnvError != nil {
		html += components.DangerAlert(fmt.Sprintf("Reading env: %v", data.EnvError))
	}

	if data.Env != nil {
		html += renderEnvCard(data)
	} else {
		html += components.InfoAlert("You don't have an env yet. Pick a repo below to launch one.")
	}

	html += renderCreateForm(data)

	if data.Env != nil {
		html += renderLogCard(data.Env)
	}

	html += ui.ContainerEnd()
	html += ui.Footer()
	return html
}

func renderEnvCard(data IndexData) string {
	env := data.Env
	html := ui.CardStart("Your env", "hdd-network")

	items := []components.ConfigItem{
		{Label: "Repo", Value: env.Spec.Repo},
		{Label: "Branch", Value: env.Spec.Branch},
		{Label: "Path", Value: env.Spec.Path},
	}
	html += components.ConfigTable(items)

	if url := EnvURL(env.Name, data.GatewayHost); url != "" {
		html += fmt.Sprintf(`<p class="mt-3 mb-2"><i class="bi bi-box-arrow-up-right me-2"></i>%s</p>`,
			components.Link(url, url))
	}

	html += `<p class="mt-3 mb-2"><i class="bi bi-clock me-2"></i>`
	if env.HasExpiration() {
		seconds := enhancer.SecondsLeft(env.Expiration, data.Now)
		html += fmt.Sprintf(`Expires at <span class="%s">%s</span><span class="%s">%s</span>`,
			enhancer.ClassExpiration, template.HTMLEscapeString(env.ExpirationText()),
			enhancer.ClassCountdown, template.HTMLEscapeString(enhancer.FormatRemaining(seconds)))
	} else {
		html += components.StatusBadge(components.StatusPending) + ` Expiration not assigned yet`
	}
	html += `</p>`

	html += components.FormStart("/delete")
	html += components.SubmitButton("Delete env", "outline-danger")
	html += components.FormEnd()

	html += ui.CardEnd()
	return html
}

func renderCreateForm(data IndexData) string {
	title := "Launch an env"
	button := "Create env"
	if data.Env != nil {
		title = "Change your env"
		button = "Update env"
	}

	html := ui.CardStart(title, "rocket-takeoff")
	if data.Allowlist == nil || len(data.Allowlist.RepoNames) == 0 {
		html += components.WarningAlert("No repos are allowed.")
		html += ui.CardEnd()
		return html
	}

	sel := data.Selection()
	html += components.FormStart("/create")
	html += components.Select(components.SelectConfig{
		ID:       enhancer.IDRepo,
		Label:    "Repo",
		OnChange: "onRepoChange()",
		Options:  data.Allowlist.RepoOptions(),
		Selected: sel.Repo,
	})
	html += components.Select(components.SelectConfig{
		ID:       enhancer.IDBranch,
		Label:    "Branch",
		OnChange: "onBranchChange()",
		Options:  data.Allowlist.BranchOptions(sel.Repo),
		Selected: sel.Branch,
	})
	html += components.Select(components.SelectConfig{
		ID:       enhancer.IDPath,
		Label:    "Tiltfile path",
		OnChange: "onBranchChange()",
		Options:  data.Allowlist.PathOptions(sel.Repo),
		Selected: sel.Path,
	})
	html += components.SubmitButton(button, "primary")
	html += components.FormEnd()
	html += ui.CardEnd()
	return html
}

func renderLogCard(env *model.Env) string {
	html := ui.CardStartWithCount("Logs", "terminal", len(env.Logs))
	if len(env.Logs) == 0 {
		html += components.EmptyTableMessage("No logs yet.")
		html += ui.CardEnd()
		return html
	}

	lines := make([]string, len(env.Logs))
	for i, line := range env.Logs {
		lines[i] = template.HTMLEscapeString(line)
	}
	html += fmt.Sprintf(`<pre class="%s">%s</pre>`, enhancer.ClassLogPane, strings.Join(lines, "\n"))
	html += ui.CardEnd()
	return html
}

// EnvURL is where an env is reachable through the gateway
func EnvURL(name, gatewayHost string) string {
	if gatewayHost == "" || name == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.%s/", name, gatewayHost)
}

func first(list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[0]
}
