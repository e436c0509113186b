package model

import "time"

// Session is the persisted per-visitor state. Sessions carry no expiry: they
// live until the visitor logs out.
type Session struct {
	ID           int64         `json:"id"`
	UserID       string        `json:"user_id"`
	Transactions []Transaction `json:"transactions"`
	Sentiment    string        `json:"sentiment"`
	Analysis     *Analysis     `json:"analysis,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Authorized reports whether the visitor has uploaded a non-empty transaction list.
func (s *Session) Authorized() bool {
	return s != nil && len(s.Transactions) > 0
}

// Analysis is the latest set of recommendations produced for a session.
type Analysis struct {
	Recommendations []Recommendation `json:"recommendations"`
	CreatedAt       time.Time        `json:"created_at"`
}

const (
	ChatRoleUser = "user"
	ChatRoleBot  = "bot"
)

// ChatMessage is one line of the chat-style sentiment conversation.
type ChatMessage struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
