// Package view renders the portal's HTML pages.
//
// Each page template defines a "content" block and is parsed together with
// layout.html, Go's equivalent of a base layout that other pages extend.
// Templates are embedded in the binary and parsed once at startup.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*.html
var files embed.FS

// Pages lists every page template, by the name used in Render.
var Pages = []string{
	"home",
	"register",
	"login",
	"profile",
	"admin",
	"service",
	"complaint",
	"ai-help",
}

var funcs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04")
	},
}

// Templates holds one parsed template set per page.
type Templates struct {
	pages map[string]*template.Template
}

func New() (*Templates, error) {
	t := &Templates{pages: make(map[string]*template.Template, len(Pages))}
	for _, name := range Pages {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(files,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("view: parsing %s: %w", name, err)
		}
		t.pages[name] = tmpl
	}
	return t, nil
}

// Render executes page name into w. The page is rendered into a buffer
// first, so a template error never leaves half a page on the wire.
func (t *Templates) Render(w io.Writer, name string, data any) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("view: rendering %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
