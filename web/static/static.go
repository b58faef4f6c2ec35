// Package static embeds the browser assets served by the dashboard.
package static

import "embed"

// Content holds the static files, served under /static/
//
//go:embed load.js
var Content embed.FS

// EnhancerScript is the file name of the page enhancer
const EnhancerScript = "load.js"
