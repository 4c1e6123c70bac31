package gateway

import "time"

// Session tracks a single event-stream client.
type Session struct {
	ID         string
	RemoteAddr string
	StartedAt  time.Time
}
