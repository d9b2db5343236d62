// Package assets embeds the web UI's page templates and stylesheet.
package assets

import "embed"

// TemplatePattern matches every page template inside TemplateFS.
const TemplatePattern = "templates/*.html"

//go:embed templates/*.html
var TemplateFS embed.FS

// StaticFS is served under /static/; its paths already carry that prefix.
//
//go:embed static/*
var StaticFS embed.FS
