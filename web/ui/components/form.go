package components

import (
	"fmt"
	"html/template"
	"strings"
)

// SelectConfig describes a labelled <select>
type SelectConfig struct {
	ID       string
	Label    string
	OnChange string
	Options  []string
	Selected string
}

// Select renders a labelled select whose name and id are both cfg.ID.
// A selected value missing from Options is added so it stays visible.
func Select(cfg SelectConfig) string {
	options := cfg.Options
	if cfg.Selected != "" && !containsString(options, cfg.Selected) {
		options = append(append([]string(nil), options...), cfg.Selected)
	}

	var b strings.Builder
	onchange := ""
	if cfg.OnChange != "" {
		onchange = fmt.Sprintf(` onchange="%s"`, template.HTMLEscapeString(cfg.OnChange))
	}
	fmt.Fprintf(&b, `<div class="mb-3">
    <label for="%[1]s" class="form-label fw-bold">%[2]s</label>
    <select class="form-select" id="%[1]s" name="%[1]s"%[3]s>`,
		template.HTMLEscapeString(cfg.ID), template.HTMLEscapeString(cfg.Label), onchange)
	for _, opt := range options {
		selected := ""
		if opt == cfg.Selected {
			selected = " selected"
		}
		fmt.Fprintf(&b, `
        <option value="%[1]s"%[2]s>%[1]s</option>`, template.HTMLEscapeString(opt), selected)
	}
	b.WriteString(`
    </select>
</div>`)
	return b.String()
}

// FormStart opens a POST form
func FormStart(action string) string {
	return fmt.Sprintf(`<form method="POST" action="%s">`, template.HTMLEscapeString(action))
}

// FormEnd closes a form
func FormEnd() string {
	return `</form>`
}

// SubmitButton generates a submit button
func SubmitButton(text, variant string) string {
	return fmt.Sprintf(`<button type="submit" class="btn btn-%s">%s</button>`,
		variant, template.HTMLEscapeString(text))
}

// Link generates a simple link
func Link(text, url string) string {
	return fmt.Sprintf(`<a href="%s" class="text-decoration-none">%s</a>`,
		template.HTMLEscapeString(url), template.HTMLEscapeString(text))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
