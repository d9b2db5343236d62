package web

import (
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"

	"github.com/NewsNowIndy/Dashboard/internal/assets"
	"github.com/NewsNowIndy/Dashboard/internal/shared"
)

var templates *template.Template

var funcs = template.FuncMap{
	"excerpt":  excerptHTML,
	"truncate": shared.TruncateText,
	"title":    shared.Capitalize,
	"join":     strings.Join,
}

func init() {
	var err error
	templates, err = template.New("").Funcs(funcs).ParseFS(assets.TemplateFS, assets.TemplatePattern)
	if err != nil {
		panic(fmt.Sprintf("failed to parse templates: %v", err))
	}
}

func (s *Server) renderTemplate(w io.Writer, name string, data any) error {
	return templates.ExecuteTemplate(w, name, data)
}

// excerptHTML escapes a search excerpt and restores the <b> highlight
// markers the index wrapped around hits.
func excerptHTML(s string) template.HTML {
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "&lt;b&gt;", "<b>")
	escaped = strings.ReplaceAll(escaped, "&lt;/b&gt;", "</b>")
	return template.HTML(escaped)
}
