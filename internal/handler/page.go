// Package handler renders the application's pages over HTTP.
package handler

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/dukerupert/andre/internal/page"
	"github.com/dukerupert/andre/internal/router"
	"github.com/dukerupert/andre/internal/session"
)

// maxUploadSize bounds the whole upload request body.
const maxUploadSize = 10 << 20

type PageHandler struct {
	ctrl      *page.Controller
	templates map[router.Page]*template.Template
	logger    *slog.Logger
}

// NewPageHandler parses the page templates from fsys.
func NewPageHandler(ctrl *page.Controller, fsys fs.FS, logger *slog.Logger) (*PageHandler, error) {
	tmpl, err := parseTemplates(fsys)
	if err != nil {
		return nil, err
	}
	return &PageHandler{ctrl: ctrl, templates: tmpl, logger: logger}, nil
}

// state returns the request's session state. LoadSession must run first.
func (h *PageHandler) state(w http.ResponseWriter, r *http.Request) (session.State, bool) {
	st, ok := session.FromContext(r.Context())
	if !ok {
		h.logger.Error("no session in request context", "path", r.URL.Path)
		http.Error(w, "server error", http.StatusInternalServerError)
	}
	return st, ok
}

func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	view, redirect := h.ctrl.Index(st)
	if redirect != "" {
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}
	h.render(w, r, router.Index, view)
}

func (h *PageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}

	var (
		filename string
		file     io.Reader
	)
	if r.ContentLength > maxUploadSize {
		h.uploadTooLarge(w, r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	err := r.ParseMultipartForm(maxUploadSize)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.uploadTooLarge(w, r)
		return
	}
	if err == nil {
		var f multipart.File
		var header *multipart.FileHeader
		if f, header, err = r.FormFile("file"); err == nil {
			defer f.Close()
			filename, file = header.Filename, f
		}
	}

	view, redirect, err := h.ctrl.Upload(r.Context(), st, filename, file)
	if err != nil {
		h.serverError(w, "upload", err)
		return
	}
	if redirect != "" {
		http.Redirect(w, r, redirect, http.StatusSeeOther)
		return
	}
	h.render(w, r, router.Index, view)
}

func (h *PageHandler) uploadTooLarge(w http.ResponseWriter, r *http.Request) {
	h.logger.Warn("upload too large", "content_length", r.ContentLength, "limit", maxUploadSize)
	h.render(w, r, router.Index, h.ctrl.UploadTooLarge())
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	h.render(w, r, router.Dashboard, h.ctrl.Dashboard(st))
}

func (h *PageHandler) Sentiment(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	view, err := h.ctrl.Sentiment(st, r.URL.Query().Get("status"))
	if err != nil {
		h.serverError(w, "load sentiment page", err)
		return
	}
	h.render(w, r, router.Sentiment, view)
}

func (h *PageHandler) SubmitSentiment(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	status, err := h.ctrl.SubmitSentiment(r.Context(), st, r.FormValue("sentiment"))
	if err != nil {
		h.serverError(w, "save sentiment", err)
		return
	}
	redirectWithStatus(w, r, router.Sentiment, status)
}

func (h *PageHandler) Market(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	h.render(w, r, router.Market, h.ctrl.Market(r.Context(), st, r.URL.Query().Get("tickers")))
}

func (h *PageHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	h.render(w, r, router.Analyze, h.ctrl.Analyze(st, r.URL.Query().Get("status")))
}

func (h *PageHandler) RunAnalysis(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	status, err := h.ctrl.RunAnalysis(r.Context(), st)
	if err != nil {
		h.serverError(w, "run analysis", err)
		return
	}
	redirectWithStatus(w, r, router.Analyze, status)
}

// redirectWithStatus answers a POST with a 303 to the page's GET route,
// carrying the submission outcome.
func redirectWithStatus(w http.ResponseWriter, r *http.Request, p router.Page, status string) {
	target := p.Path()
	if status != "" {
		target += "?" + url.Values{"status": {status}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Logout clears the session and returns to the landing page.
func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	if err := st.Clear(); err != nil {
		h.serverError(w, "logout", err)
		return
	}
	http.Redirect(w, r, router.Index.Path(), http.StatusSeeOther)
}
