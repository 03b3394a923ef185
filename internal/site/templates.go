package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"compagnie-lumen.org/web/internal/i18n"
	"compagnie-lumen.org/web/internal/locale"
	"compagnie-lumen.org/web/internal/nav"
)

// Renderer executes the "base" layout. In dev mode templates are reparsed on each
// render; otherwise they are parsed once.
type Renderer struct {
	dir    string
	dev    bool
	bundle *i18n.Bundle

	once   sync.Once
	cached *template.Template
	err    error
}

// NewRenderer returns a renderer for the .tmpl files under dir.
func NewRenderer(dir string, dev bool, bundle *i18n.Bundle) *Renderer {
	return &Renderer{dir: dir, dev: dev, bundle: bundle}
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		"now": time.Now,
		"t": func(tag locale.Tag, key string) string {
			if r.bundle == nil {
				return key
			}
			return r.bundle.T(tag, key)
		},
		"tf": func(tag locale.Tag, key string, pairs ...string) string {
			if r.bundle == nil {
				return key
			}
			return r.bundle.Tf(tag, key, pairs...)
		},
		"href": func(tag locale.Tag, p string) string {
			return nav.Href(tag, p)
		},
		// jsonld marks pre-marshalled JSON-LD as safe for a script element.
		"jsonld": func(s string) template.JS {
			return template.JS(s)
		},
	}
}

// Parse discovers and parses every .tmpl file under the template directory.
func (r *Renderer) Parse() (*template.Template, error) {
	var files []string
	if err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", r.dir)
	}
	return template.New("_root").Funcs(r.funcs()).ParseFiles(files...)
}

func (r *Renderer) templates() (*template.Template, error) {
	if r.dev {
		return r.Parse()
	}
	r.once.Do(func() {
		r.cached, r.err = r.Parse()
	})
	return r.cached, r.err
}

// Render writes the base layout with status. Execution is buffered so a template
// error still yields a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, data any) error {
	t, err := r.templates()
	if err != nil {
		http.Error(w, "template parse error", http.StatusInternalServerError)
		return fmt.Errorf("site: parse templates: %w", err)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		http.Error(w, "template exec error", http.StatusInternalServerError)
		return fmt.Errorf("site: execute template: %w", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
