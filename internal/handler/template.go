package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dukerupert/andre/internal/router"
	"github.com/dukerupert/andre/internal/session"
)

// NavLink is one header link.
type NavLink struct {
	Href   string
	Text   string
	Active bool
}

// PageData is what every page template receives.
type PageData struct {
	Title      string
	BodyID     string
	Authorized bool
	Nav        []NavLink
	View       any
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderMarkdown converts markdown to HTML. Raw HTML in the source is
// omitted by the renderer.
func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

var funcs = template.FuncMap{
	"markdown": renderMarkdown,
}

// parseTemplates builds one template set per page: the shared layout plus
// the page's own "content" block.
func parseTemplates(fsys fs.FS) (map[router.Page]*template.Template, error) {
	sets := make(map[router.Page]*template.Template)
	for _, p := range []router.Page{router.Index, router.Dashboard, router.Sentiment, router.Market, router.Analyze} {
		tmpl, err := template.New(p.String()).Funcs(funcs).ParseFS(fsys,
			"templates/layout.html",
			fmt.Sprintf("templates/%s.html", p),
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", p, err)
		}
		sets[p] = tmpl
	}
	return sets, nil
}

func navLinks(active router.Page) []NavLink {
	links := make([]NavLink, 0, len(router.Nav))
	for _, p := range router.Nav {
		links = append(links, NavLink{Href: p.Path(), Text: p.Title(), Active: p == active})
	}
	return links
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, p router.Page, view any) {
	data := PageData{
		Title:      p.Title(),
		BodyID:     p.BodyID(),
		Authorized: session.Authorized(r.Context()),
		Nav:        navLinks(p),
		View:       view,
	}

	var buf bytes.Buffer
	if err := h.templates[p].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("template error", "page", p.String(), "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (h *PageHandler) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "error", err)
	http.Error(w, "server error", http.StatusInternalServerError)
}
