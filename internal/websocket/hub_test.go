package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/andre/internal/logging"
	"github.com/dukerupert/andre/internal/session"
)

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, sessionID int64) *Client {
	return &Client{
		hub:       hub,
		conn:      nil,
		sessionID: sessionID,
		send:      make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(logging.Discard())

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 1)
	c3 := mockClient(hub, 2)

	hub.Register(c1)
	hub.Register(c2)
	hub.Register(c3)

	if got := hub.ClientCount(); got != 3 {
		t.Fatalf("expected 3 clients, got %d", got)
	}
	if got := hub.SessionCount(); got != 2 {
		t.Fatalf("expected 2 sessions, got %d", got)
	}

	hub.Unregister(c1)
	hub.Unregister(c3)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}
	if got := hub.SessionCount(); got != 1 {
		t.Fatalf("expected empty session group to be dropped, got %d sessions", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(logging.Discard())
	c := mockClient(hub, 1)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastScopedToSession(t *testing.T) {
	hub := NewHub(logging.Discard())

	tab1 := mockClient(hub, 7)
	tab2 := mockClient(hub, 7)
	stranger := mockClient(hub, 8)
	hub.Register(tab1)
	hub.Register(tab2)
	hub.Register(stranger)

	hub.NotifySession(7, session.ActionTransactionsUpdated)

	for _, c := range []*Client{tab1, tab2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "session_transactions_updated" {
				t.Errorf("expected type session_transactions_updated, got %s", got.Type)
			}
			if got.Entity != EntitySession {
				t.Errorf("expected entity session, got %s", got.Entity)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	select {
	case <-stranger.send:
		t.Error("other session must not receive the message")
	default:
	}

	hub.Unregister(tab1)
	hub.Unregister(tab2)
	hub.Unregister(stranger)
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(logging.Discard())
	// Should not panic
	hub.Broadcast(1, NewMessage(EntitySession, session.ActionCleared))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(logging.Discard())

	c := mockClient(hub, 1)
	hub.Register(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(1, NewMessage("test", "fill"))
	}

	// This should drop the message, not panic or block
	hub.Broadcast(1, NewMessage("test", "dropped"))

	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage(EntitySession, session.ActionSentimentUpdated)
	if msg.Type != "session_sentiment_updated" {
		t.Errorf("expected type session_sentiment_updated, got %s", msg.Type)
	}
	if msg.Action != "sentiment_updated" {
		t.Errorf("expected action sentiment_updated, got %s", msg.Action)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(logging.Discard())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			c := mockClient(hub, id%3)
			hub.Register(c)
			hub.NotifySession(id%3, session.ActionTransactionsUpdated)
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}(int64(i))
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

func TestHandleWebSocketRequiresSession(t *testing.T) {
	hub := NewHub(logging.Discard())
	handler := HandleWebSocket(hub, logging.Discard())

	req := httptest.NewRequest("GET", "/ws", nil)
	req = req.WithContext(session.WithState(req.Context(), session.NewMemory()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
