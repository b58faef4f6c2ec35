package ui

import (
	"fmt"
	"html/template"
)

// Header generates the HTML header with Bootstrap CDN
func Header(title string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    %s
    <style>%s</style>
</head>
<body>`, template.HTMLEscapeString(title), Stylesheets(), GetStyles())
}

// Stylesheets returns the Bootstrap and icon stylesheet links
func Stylesheets() string {
	return `<link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.2/dist/css/bootstrap.min.css" rel="stylesheet" integrity="sha384-T3c6CoIi6uLrA9TneNEoa7RxnatzjcDSCmG1MXxSR1GAsXEV/Dwwykc2MPK8M2HN" crossorigin="anonymous">
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap-icons@1.11.1/font/bootstrap-icons.css">`
}

// Footer generates the HTML footer with scripts
// The page enhancer is loaded on every page; it does nothing where its
// elements are absent.
func Footer() string {
	return fmt.Sprintf(`
    <script src="%s" integrity="%s" crossorigin="anonymous"></script>
    <script src="%s"></script>
</body>
</html>`, GetBootstrapJS(), GetBootstrapJSIntegrity(), EnhancerScriptPath)
}

// ContainerStart returns the opening tags for the main container
func ContainerStart() string {
	return `<div class="container">
    <div class="main-container">`
}

// ContainerEnd returns the closing tags for the main container
func ContainerEnd() string {
	return `    </div>
</div>`
}

// CardStart returns the opening tags for a card with header
func CardStart(title, icon string) string {
	return fmt.Sprintf(`<div class="card mb-4">
    <div class="card-header">
        <h4 class="mb-0"><i class="bi bi-%s me-2"></i>%s</h4>
    </div>
    <div class="card-body">`, icon, template.HTMLEscapeString(title))
}

// CardStartWithCount returns opening tags for a card with count in header
func CardStartWithCount(title, icon string, count int) string {
	return fmt.Sprintf(`<div class="card mb-4">
    <div class="card-header">
        <h4 class="mb-0"><i class="bi bi-%s me-2"></i>%s (%d)</h4>
    </div>
    <div class="card-body">`, icon, template.HTMLEscapeString(title), count)
}

// CardEnd returns the closing tags for a card
func CardEnd() string {
	return `    </div>
</div>`
}
