package session

import (
	"time"

	"github.com/dukerupert/andre/internal/model"
)

// Memory is an in-process State used by headless controller tests.
type Memory struct {
	User  string
	Txs   []model.Transaction
	Sent  string
	Last  *model.Analysis
	Chat  []model.ChatMessage
	Saves int // number of persisted writes
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) UserID() string { return m.User }

func (m *Memory) EnsureUserID() (string, error) {
	if m.User == "" {
		m.User = NewUserID()
		m.Saves++
	}
	return m.User, nil
}

func (m *Memory) Transactions() []model.Transaction { return m.Txs }
func (m *Memory) HasTransactions() bool             { return len(m.Txs) > 0 }

func (m *Memory) SetTransactions(txs []model.Transaction) error {
	m.Txs = txs
	m.Saves++
	return nil
}

func (m *Memory) Sentiment() string { return m.Sent }

func (m *Memory) SetSentiment(s string) error {
	m.Sent = s
	m.Saves++
	return nil
}

func (m *Memory) Analysis() *model.Analysis { return m.Last }

func (m *Memory) SetAnalysis(a *model.Analysis) error {
	m.Last = a
	m.Saves++
	return nil
}

func (m *Memory) ChatHistory() ([]model.ChatMessage, error) { return m.Chat, nil }

func (m *Memory) AppendChat(role, text string) error {
	m.Chat = append(m.Chat, model.ChatMessage{
		ID:        int64(len(m.Chat) + 1),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	})
	return nil
}

func (m *Memory) Clear() error {
	*m = Memory{}
	return nil
}

var _ State = (*Memory)(nil)
