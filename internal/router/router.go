// Package router maps request paths to page identifiers and dispatches each
// page to its controller. Paths with no page fall back to the dashboard for
// authorized visitors and to the landing page otherwise.
package router

import (
	"net/http"
	"strings"
)

// Page identifies one screen of the application.
type Page int

const (
	Unknown Page = iota
	Index
	Dashboard
	Sentiment
	Market
	Analyze
)

type pageInfo struct {
	bodyID string
	slug   string
	title  string
}

var pages = map[Page]pageInfo{
	Index:     {bodyID: "page-index", slug: "index", title: "Upload"},
	Dashboard: {bodyID: "page-dashboard", slug: "dashboard", title: "Dashboard"},
	Sentiment: {bodyID: "page-whatsup", slug: "whatsup", title: "What's Up"},
	Market:    {bodyID: "page-market", slug: "market", title: "Market Data"},
	Analyze:   {bodyID: "page-analyze", slug: "analyze", title: "Analyze"},
}

// Nav lists the pages shown in the header, in display order.
var Nav = []Page{Dashboard, Sentiment, Market, Analyze}

// BodyID is the identifier rendered as the page's <body id>.
func (p Page) BodyID() string {
	return pages[p].bodyID
}

// Path is the canonical URL of the page.
func (p Page) Path() string {
	switch p {
	case Unknown:
		return ""
	case Index:
		return "/"
	}
	return "/" + pages[p].slug
}

func (p Page) Title() string {
	return pages[p].title
}

func (p Page) String() string {
	if p == Unknown {
		return "unknown"
	}
	return pages[p].slug
}

// Public reports whether the page is reachable without transactions.
func (p Page) Public() bool {
	return p == Index
}

// FromBodyID resolves a <body id> value.
func FromBodyID(id string) Page {
	for p, info := range pages {
		if info.bodyID == id {
			return p
		}
	}
	return Unknown
}

// FromPath resolves a request path. The legacy ".html" suffix is accepted,
// so "/whatsup.html" and "/whatsup" both name the sentiment page.
func FromPath(path string) Page {
	slug := strings.Trim(path, "/")
	slug = strings.TrimSuffix(slug, ".html")
	if slug == "" {
		return Index
	}
	for p, info := range pages {
		if info.slug == slug {
			return p
		}
	}
	return Unknown
}

// Fallback is where a visitor lands when the requested page is unknown.
func Fallback(authorized bool) string {
	if authorized {
		return Dashboard.Path()
	}
	return Index.Path()
}

// Router dispatches a path to the controller registered for its page.
type Router struct {
	handlers   map[Page]http.Handler
	authorized func(*http.Request) bool
}

// New creates a Router. authorized reports whether the request's session
// holds transactions; it decides the fallback target.
func New(authorized func(*http.Request) bool) *Router {
	return &Router{
		handlers:   make(map[Page]http.Handler),
		authorized: authorized,
	}
}

// Handle registers the controller for a page.
func (rt *Router) Handle(p Page, h http.Handler) {
	rt.handlers[p] = h
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := rt.handlers[FromPath(r.URL.Path)]; ok {
		h.ServeHTTP(w, r)
		return
	}
	http.Redirect(w, r, Fallback(rt.authorized(r)), http.StatusSeeOther)
}
