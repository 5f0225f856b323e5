package ws

import (
	"crypto/rand"
	"encoding/hex"
)

// newConnID mints the identifier a subscription carries through its
// lifecycle events. An empty id means entropy was unavailable; events are
// still emitted, just uncorrelated.
func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
