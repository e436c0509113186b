package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/andre/internal/model"
)

// ChatStore persists the chat-style sentiment conversation per session.
type ChatStore struct {
	db *sql.DB
}

func NewChatStore(db *sql.DB) *ChatStore {
	return &ChatStore{db: db}
}

const chatCols = `id, session_id, role, body, created_at`

func scanChatMessage(scanner interface{ Scan(...any) error }) (*model.ChatMessage, error) {
	var m model.ChatMessage
	if err := scanner.Scan(&m.ID, &m.SessionID, &m.Role, &m.Text, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *ChatStore) Append(sessionID int64, role, text string) (*model.ChatMessage, error) {
	if role != model.ChatRoleUser && role != model.ChatRoleBot {
		return nil, fmt.Errorf("invalid chat role %q", role)
	}
	result, err := s.db.Exec(
		`INSERT INTO chat_messages (session_id, role, body) VALUES (?, ?, ?)`,
		sessionID, role, text,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chat message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+chatCols+` FROM chat_messages WHERE id = ?`, id)
	return scanChatMessage(row)
}

// List returns the session's messages oldest first.
func (s *ChatStore) List(sessionID int64) ([]model.ChatMessage, error) {
	rows, err := s.db.Query(
		`SELECT `+chatCols+` FROM chat_messages WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.ChatMessage
	for rows.Next() {
		m, err := scanChatMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		msgs = append(msgs, *m)
	}
	return msgs, rows.Err()
}
