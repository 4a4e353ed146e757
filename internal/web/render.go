// Package web holds the HTML templates and the gin renderer that serves them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates
var templateFS embed.FS

const layoutEntry = "layout"

// Renderer implements gin's render.HTMLRender. Every page is its own template
// set made of the layout, the partials and the page file.
type Renderer struct {
	templates map[string]*template.Template
	entries   map[string]string
}

func NewRenderer() (*Renderer, error) {
	base, err := template.New(layoutEntry).Funcs(Funcs()).ParseFS(templateFS, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &Renderer{
		templates: make(map[string]*template.Template),
		entries:   make(map[string]string),
	}

	pages, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	for _, page := range pages {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, page); err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		name := strings.TrimSuffix(path.Base(page), ".html")
		r.templates[name] = t
		r.entries[name] = layoutEntry
	}

	partials, err := fs.Glob(templateFS, "templates/partials/*.html")
	if err != nil {
		return nil, err
	}
	for _, partial := range partials {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(path.Base(partial), ".html")
		r.templates[name] = t
		r.entries[name] = name
	}

	return r, nil
}

func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.templates[name]
	if !ok {
		return missingTemplate{name: name}
	}
	return render.HTML{Template: t, Name: r.entries[name], Data: data}
}

// Has reports whether name can be rendered.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

type missingTemplate struct {
	name string
}

func (m missingTemplate) Render(w http.ResponseWriter) error {
	m.WriteContentType(w)
	return fmt.Errorf("template %q not found", m.name)
}

func (m missingTemplate) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = []string{"text/html; charset=utf-8"}
	}
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		"fieldError": func(errs map[string]string, field string) string {
			return errs[field]
		},
		"formatDate": func(t time.Time) string {
			return t.Format("02/01/2006 à 15:04")
		},
		"formatDay": func(t time.Time) string {
			return t.Format("02/01/2006")
		},
		"flashClass": func(kind string) string {
			if kind == "success" {
				return "success"
			}
			return "danger"
		},
		"excerpt": func(s string, n int) string {
			runes := []rune(s)
			if len(runes) <= n {
				return s
			}
			return string(runes[:n]) + "…"
		},
	}
}
