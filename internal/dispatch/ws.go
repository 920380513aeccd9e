package dispatch

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/NikamRenuka/cabadmin/internal/models"
)

// Event is the envelope pushed to connected dashboard sessions.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// wsSession wraps one dashboard websocket connection. gorilla conns allow a
// single concurrent writer, hence the per-session mutex.
type wsSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSession) send(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(ev)
}

// WSRegistry holds the connected dashboard sessions and fans events out to
// all of them. Sessions whose writes fail are dropped.
type WSRegistry struct {
	Logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*wsSession
}

func NewWSRegistry(logger *slog.Logger) *WSRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSRegistry{Logger: logger, sessions: make(map[string]*wsSession)}
}

func (r *WSRegistry) Add(id string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &wsSession{conn: conn}
}

func (r *WSRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		_ = s.conn.Close()
		delete(r.sessions, id)
	}
}

// Broadcast sends an event to every connected session.
func (r *WSRegistry) Broadcast(ev Event) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	sessions := make([]*wsSession, 0, len(r.sessions))
	for id, s := range r.sessions {
		ids = append(ids, id)
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for i, s := range sessions {
		if err := s.send(ev); err != nil {
			r.Logger.Warn("ws send failed, dropping session", "session", ids[i], "error", err)
			r.Remove(ids[i])
		}
	}
}

// BookingUpdated pushes a mutated booking to all sessions.
func (r *WSRegistry) BookingUpdated(b models.Booking) {
	r.Broadcast(Event{Type: "booking.updated", Data: b})
}

// UnreadCount pushes the notification badge count to all sessions.
func (r *WSRegistry) UnreadCount(n int) {
	r.Broadcast(Event{Type: "notifications.unread", Data: n})
}
