package visualize

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ghiac/ephdash/model"
)

// AssetsHost serves echarts.min.js for rendered charts
const AssetsHost = "https://cdn.jsdelivr.net/npm/echarts@5/dist/"

// warnBelow marks envs close enough to expiring to colour them
const warnBelow = 2 * time.Minute

// ExpirationChart draws how long each env has left
type ExpirationChart struct {
	envs []*model.Env
	now  time.Time
}

// NewExpirationChart creates a chart of envs as seen at now
func NewExpirationChart(envs []*model.Env, now time.Time) *ExpirationChart {
	return &ExpirationChart{envs: envs, now: now}
}

// MinutesLeft rounds the remaining time to a tenth of a minute
func MinutesLeft(env *model.Env, now time.Time) float64 {
	return math.Round(env.Remaining(now).Minutes()*10) / 10
}

// GenerateChart creates an ECharts bar chart of minutes left per env
func (ec *ExpirationChart) GenerateChart(title string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d envs as of %s", len(ec.envs), ec.now.UTC().Format(time.RFC3339)),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Width:      "1100px",
			Height:     "500px",
			AssetsHost: AssetsHost,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "minutes left",
		}),
	)

	names := make([]string, 0, len(ec.envs))
	data := make([]opts.BarData, 0, len(ec.envs))
	for _, env := range ec.envs {
		names = append(names, env.Name)
		data = append(data, opts.BarData{
			Name:      env.Name,
			Value:     MinutesLeft(env, ec.now),
			ItemStyle: ec.barStyle(env),
		})
	}

	bar.SetXAxis(names).AddSeries("minutes left", data,
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Position: "top",
		}),
	)
	return bar
}

func (ec *ExpirationChart) barStyle(env *model.Env) *opts.ItemStyle {
	switch {
	case !env.HasExpiration():
		return &opts.ItemStyle{Color: "#adb5bd"}
	case env.Remaining(ec.now) < warnBelow:
		return &opts.ItemStyle{Color: "#dc3545"}
	default:
		return &opts.ItemStyle{Color: "#667eea"}
	}
}

// Render writes the chart as a standalone HTML page
func (ec *ExpirationChart) Render(w io.Writer, title string) error {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(ec.GenerateChart(title))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderHTML renders the chart page into a string
func (ec *ExpirationChart) RenderHTML(title string) (string, error) {
	var buf bytes.Buffer
	if err := ec.Render(&buf, title); err != nil {
		return "", err
	}
	return buf.String(), nil
}
