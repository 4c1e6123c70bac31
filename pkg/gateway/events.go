package gateway

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jovyan/kernelnav/pkg/specwatch"
)

// EventSource hands out subscriptions to kernel spec change events.
// *specwatch.Watcher satisfies it.
type EventSource interface {
	Subscribe() chan specwatch.Event
	Unsubscribe(ch chan specwatch.Event)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleEvents streams kernel spec change events to a websocket client
// until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		http.Error(w, "events unavailable", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logWarn("events_upgrade_failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	session := &Session{
		ID:         uuid.NewString(),
		RemoteAddr: r.RemoteAddr,
		StartedAt:  time.Now(),
	}
	s.logInfo("events_session_start", "id", session.ID, "remote", session.RemoteAddr)
	defer s.logInfo("events_session_end", "id", session.ID, "remote", session.RemoteAddr)

	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	// Drain client frames so close frames are seen promptly.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
