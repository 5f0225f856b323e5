package ws

import "time"

// ConnInfo is the registration record of one live subscription, captured at
// handshake time and carried into every lifecycle event it publishes.
type ConnInfo struct {
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
