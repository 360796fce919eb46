package main

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/taha-yassine-romdhane/Dar-koftan/internal/platform/requestctx"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// pages are parsed together with the layout and partials, one set per page,
// so each can define its own "content" block.
var pages = []string{"collections", "placeholder"}

type templates struct {
	pages     map[string]*template.Template
	fragments *template.Template
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"now": time.Now,
		"withOpen": func(label string) template.URL {
			return template.URL("?" + url.Values{"open": {label}}.Encode()) //nolint:gosec // encoded query
		},
	}
}

func parseTemplates() (*templates, error) {
	fragments, err := template.New("_root").Funcs(funcMap()).ParseFS(templateFS, "templates/partials.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}
	set := &templates{pages: make(map[string]*template.Template, len(pages)), fragments: fragments}
	for _, name := range pages {
		t, err := template.New("_root").Funcs(funcMap()).ParseFS(templateFS,
			"templates/layout.tmpl",
			"templates/partials.tmpl",
			"templates/"+name+".tmpl",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		set.pages[name] = t
	}
	return set, nil
}

// renderPage executes the base layout of a page. Output is buffered so a
// template error still yields a clean 500.
func (t *templates) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	page, ok := t.pages[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	t.execute(w, r, page, "base", data)
}

// renderTemplate executes a fragment for htmx swaps.
func (t *templates) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	t.execute(w, r, t.fragments, name, data)
}

func (t *templates) execute(w http.ResponseWriter, r *http.Request, set *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, name, data); err != nil {
		requestctx.Logger(r.Context()).Error("template exec failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "template exec error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
