package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/dukerupert/andre/internal/model"
)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// HashToken returns the hex BLAKE2b-256 digest stored in place of the raw token.
func HashToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func scanSession(scanner interface{ Scan(...any) error }) (*model.Session, error) {
	var s model.Session
	var txs, sentiment, analysis sql.NullString

	err := scanner.Scan(&s.ID, &s.UserID, &txs, &sentiment, &analysis, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if txs.Valid && txs.String != "" {
		if err := json.Unmarshal([]byte(txs.String), &s.Transactions); err != nil {
			return nil, fmt.Errorf("decode transactions: %w", err)
		}
	}
	if sentiment.Valid {
		s.Sentiment = sentiment.String
	}
	if analysis.Valid && analysis.String != "" {
		s.Analysis = &model.Analysis{}
		if err := json.Unmarshal([]byte(analysis.String), s.Analysis); err != nil {
			return nil, fmt.Errorf("decode analysis: %w", err)
		}
	}
	return &s, nil
}

const sessionCols = `id, user_id, transactions, sentiment, analysis, created_at, updated_at`

// Create inserts an empty session and returns it with the raw token for the cookie.
// Only the token's hash is persisted.
func (s *SessionStore) Create() (*model.Session, string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)

	result, err := s.db.Exec(`INSERT INTO sessions (token_hash) VALUES (?)`, HashToken(token))
	if err != nil {
		return nil, "", fmt.Errorf("insert session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, "", fmt.Errorf("last insert id: %w", err)
	}
	sess, err := s.GetByID(id)
	if err != nil {
		return nil, "", err
	}
	return sess, token, nil
}

// GetByToken returns the session for the given raw token, or nil if not found.
func (s *SessionStore) GetByToken(token string) (*model.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE token_hash = ?`, HashToken(token))
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session by token: %w", err)
	}
	return sess, nil
}

func (s *SessionStore) GetByID(id int64) (*model.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionCols+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// SetTransactions replaces the stored transaction list.
func (s *SessionStore) SetTransactions(id int64, txs []model.Transaction) error {
	if txs == nil {
		txs = []model.Transaction{}
	}
	data, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}
	return s.update(id, `transactions = ?`, string(data))
}

func (s *SessionStore) SetUserID(id int64, userID string) error {
	return s.update(id, `user_id = ?`, userID)
}

func (s *SessionStore) SetSentiment(id int64, sentiment string) error {
	return s.update(id, `sentiment = ?`, sentiment)
}

// SetAnalysis stores the latest analysis. A nil analysis clears the column.
func (s *SessionStore) SetAnalysis(id int64, a *model.Analysis) error {
	if a == nil {
		return s.update(id, `analysis = ?`, nil)
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	return s.update(id, `analysis = ?`, string(data))
}

func (s *SessionStore) update(id int64, set string, arg any) error {
	result, err := s.db.Exec(
		`UPDATE sessions SET `+set+`, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		arg, id,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update session %d: not found", id)
	}
	return nil
}

// Delete removes the session and, by cascade, its chat history.
func (s *SessionStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Count returns the number of stored sessions.
func (s *SessionStore) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}
