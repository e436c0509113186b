// Package session is the explicit, request-scoped view of a visitor's state.
// Page controllers read and write through State and never touch storage directly.
package session

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/andre/internal/model"
	"github.com/dukerupert/andre/internal/store"
)

// CookieName is the cookie carrying the session token.
const CookieName = "andre_session"

// Change actions reported to the Notifier.
const (
	ActionTransactionsUpdated = "transactions_updated"
	ActionSentimentUpdated    = "sentiment_updated"
	ActionAnalysisUpdated     = "analysis_updated"
	ActionCleared             = "cleared"
)

// State is the read/write contract page controllers depend on.
type State interface {
	UserID() string
	// EnsureUserID returns the user id, generating and persisting one if absent.
	EnsureUserID() (string, error)
	Transactions() []model.Transaction
	HasTransactions() bool
	SetTransactions(txs []model.Transaction) error
	Sentiment() string
	SetSentiment(sentiment string) error
	// Analysis returns the latest analysis run, or nil if none was stored.
	Analysis() *model.Analysis
	SetAnalysis(a *model.Analysis) error
	ChatHistory() ([]model.ChatMessage, error)
	AppendChat(role, text string) error
	// Clear discards everything, equivalent to logging out.
	Clear() error
}

// Notifier is told about every persisted change to a session.
type Notifier func(sessionID int64, action string)

// NewUserID returns a synthetic user identifier: a "user_" prefix, the current
// unix millisecond time and seven random characters.
func NewUserID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:7]
	return fmt.Sprintf("user_%d%s", time.Now().UnixMilli(), suffix)
}

// Session is the store-backed State for one request. The database row is
// created lazily on the first write, which also sets the cookie.
type Session struct {
	mgr *Manager
	w   http.ResponseWriter
	rec *model.Session
}

// ID returns the persisted session id, or 0 if nothing has been written yet.
func (s *Session) ID() int64 {
	if s.rec == nil {
		return 0
	}
	return s.rec.ID
}

func (s *Session) UserID() string {
	if s.rec == nil {
		return ""
	}
	return s.rec.UserID
}

func (s *Session) EnsureUserID() (string, error) {
	if id := s.UserID(); id != "" {
		return id, nil
	}
	if err := s.ensureRecord(); err != nil {
		return "", err
	}
	id := NewUserID()
	if err := s.mgr.sessions.SetUserID(s.rec.ID, id); err != nil {
		return "", err
	}
	s.rec.UserID = id
	return id, nil
}

func (s *Session) Transactions() []model.Transaction {
	if s.rec == nil {
		return nil
	}
	return s.rec.Transactions
}

func (s *Session) HasTransactions() bool {
	return s.rec.Authorized()
}

func (s *Session) SetTransactions(txs []model.Transaction) error {
	if err := s.ensureRecord(); err != nil {
		return err
	}
	if err := s.mgr.sessions.SetTransactions(s.rec.ID, txs); err != nil {
		return err
	}
	s.rec.Transactions = txs
	s.mgr.notify(s.rec.ID, ActionTransactionsUpdated)
	return nil
}

func (s *Session) Sentiment() string {
	if s.rec == nil {
		return ""
	}
	return s.rec.Sentiment
}

func (s *Session) SetSentiment(sentiment string) error {
	if err := s.ensureRecord(); err != nil {
		return err
	}
	if err := s.mgr.sessions.SetSentiment(s.rec.ID, sentiment); err != nil {
		return err
	}
	s.rec.Sentiment = sentiment
	s.mgr.notify(s.rec.ID, ActionSentimentUpdated)
	return nil
}

func (s *Session) Analysis() *model.Analysis {
	if s.rec == nil {
		return nil
	}
	return s.rec.Analysis
}

func (s *Session) SetAnalysis(a *model.Analysis) error {
	if err := s.ensureRecord(); err != nil {
		return err
	}
	if err := s.mgr.sessions.SetAnalysis(s.rec.ID, a); err != nil {
		return err
	}
	s.rec.Analysis = a
	s.mgr.notify(s.rec.ID, ActionAnalysisUpdated)
	return nil
}

func (s *Session) ChatHistory() ([]model.ChatMessage, error) {
	if s.rec == nil {
		return nil, nil
	}
	return s.mgr.chats.List(s.rec.ID)
}

func (s *Session) AppendChat(role, text string) error {
	if err := s.ensureRecord(); err != nil {
		return err
	}
	_, err := s.mgr.chats.Append(s.rec.ID, role, text)
	return err
}

func (s *Session) Clear() error {
	s.mgr.expireCookie(s.w)
	if s.rec == nil {
		return nil
	}
	id := s.rec.ID
	if err := s.mgr.sessions.Delete(id); err != nil {
		return err
	}
	s.rec = nil
	s.mgr.notify(id, ActionCleared)
	return nil
}

func (s *Session) ensureRecord() error {
	if s.rec != nil {
		return nil
	}
	rec, token, err := s.mgr.sessions.Create()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	s.rec = rec
	s.mgr.setCookie(s.w, token)
	return nil
}

var _ State = (*Session)(nil)

// Manager loads sessions from the request cookie.
type Manager struct {
	sessions *store.SessionStore
	chats    *store.ChatStore
	secure   bool
	notifier Notifier
}

// NewManager creates a Manager. secure marks the cookie HTTPS-only.
func NewManager(sessions *store.SessionStore, chats *store.ChatStore, secure bool) *Manager {
	return &Manager{sessions: sessions, chats: chats, secure: secure}
}

// OnChange registers the notifier called after each persisted change.
func (m *Manager) OnChange(n Notifier) {
	m.notifier = n
}

// Load returns the session for the request. A missing or unknown cookie
// yields an empty session that is only persisted once written to.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*Session, error) {
	s := &Session{mgr: m, w: w}

	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return s, nil
	}

	rec, err := m.sessions.GetByToken(cookie.Value)
	if err != nil {
		return nil, err
	}
	s.rec = rec
	return s, nil
}

func (m *Manager) notify(id int64, action string) {
	if m.notifier != nil {
		m.notifier(id, action)
	}
}

func (m *Manager) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   10 * 365 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) expireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
