package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/dukerupert/andre/internal/buildinfo"
	"github.com/dukerupert/andre/internal/config"
	"github.com/dukerupert/andre/internal/handler"
	"github.com/dukerupert/andre/internal/middleware"
	"github.com/dukerupert/andre/internal/page"
	"github.com/dukerupert/andre/internal/router"
	"github.com/dukerupert/andre/internal/session"
	"github.com/dukerupert/andre/internal/store"
	ws "github.com/dukerupert/andre/internal/websocket"
	"github.com/dukerupert/andre/web"
)

// Form posts that call the remote API are limited per client IP.
const postsPerMinute = 10

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	sessions    *session.Manager
	pageH       *handler.PageHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// New wires the stores, session manager, page controllers and websocket hub.
func New(db *sql.DB, client page.API, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logger.With("component", "websocket"))

	mgr := session.NewManager(store.NewSessionStore(db), store.NewChatStore(db), cfg.Server.CookieSecure)
	mgr.OnChange(hub.NotifySession)

	ctrl := page.NewController(client, page.Options{
		SentimentMode:    cfg.Sentiment.Mode,
		RequireSentiment: cfg.Analysis.RequireSentiment,
	}, logger.With("component", "page"))

	pageH, err := handler.NewPageHandler(ctrl, web.Templates, logger.With("component", "handler"))
	if err != nil {
		return nil, fmt.Errorf("page handler: %w", err)
	}

	return &Server{
		db:          db,
		hub:         hub,
		sessions:    mgr,
		pageH:       pageH,
		rateLimiter: middleware.NewRateLimiter(middleware.PerMinute(postsPerMinute), postsPerMinute),
		logger:      logger,
	}, nil
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// No session needed
	static, _ := fs.Sub(web.Static, "static")
	outerMux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	appMux := http.NewServeMux()
	s.registerRoutes(appMux)
	outerMux.Handle("/", middleware.LoadSession(s.sessions, s.logger.With("component", "session"))(appMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	status := "ok"
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(map[string]string{
		"status":  status,
		"version": buildinfo.Version,
	})
}

func (s *Server) rateLimitedHandler(h http.Handler) http.Handler {
	return middleware.RateLimit(s.rateLimiter, middleware.RealIP)(h)
}

func gated(h http.HandlerFunc) http.Handler {
	return middleware.RequireTransactions(h)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Page routes: every GET resolves through the page router, which also
	// accepts the legacy .html names and redirects unknown pages.
	pages := router.New(func(r *http.Request) bool {
		return session.Authorized(r.Context())
	})
	pages.Handle(router.Index, http.HandlerFunc(s.pageH.Index))
	pages.Handle(router.Dashboard, gated(s.pageH.Dashboard))
	pages.Handle(router.Sentiment, gated(s.pageH.Sentiment))
	pages.Handle(router.Market, gated(s.pageH.Market))
	pages.Handle(router.Analyze, gated(s.pageH.Analyze))
	mux.Handle("GET /", pages)

	// Form posts
	mux.Handle("POST /upload", s.rateLimitedHandler(http.HandlerFunc(s.pageH.Upload)))
	mux.Handle("POST /whatsup", gated(s.pageH.SubmitSentiment))
	mux.Handle("POST /analyze", s.rateLimitedHandler(gated(s.pageH.RunAnalysis)))
	mux.HandleFunc("POST /logout", s.pageH.Logout)

	// Session sync
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}
