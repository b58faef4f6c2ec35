package pages

import (
	"strings"
	"time"

	"github.com/ghiac/ephdash/model"
	"github.com/ghiac/ephdash/visualize"
	"github.com/ghiac/ephdash/web/ui"
)

// RenderChart generates the expiration chart page with the dashboard navbar
func RenderChart(user string, envs []*model.Env, now time.Time) (string, error) {
	chart, err := visualize.NewExpirationChart(envs, now).RenderHTML("Env Expirations")
	if err != nil {
		return "", err
	}

	if i := strings.Index(chart, "</head>"); i >= 0 {
		chart = chart[:i] + ui.Stylesheets() + chart[i:]
	}

	nav := ui.Navbar("/envs/chart", user, true)
	if i := strings.Index(chart, "<body>"); i >= 0 {
		i += len("<body>")
		return chart[:i] + nav + chart[i:], nil
	}
	return nav + chart, nil
}
