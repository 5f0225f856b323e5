package observability

import "time"

// EventEnvelope wraps every event published to the exchange.
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

// WSConnDetails identifies one websocket subscription for event payloads.
type WSConnDetails struct {
	Kind        string
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	ConnectedAt time.Time
}

// WSEventPayload builds the payload published for a subscription lifecycle
// event (ws_connect, ws_disconnect, ws_error).
func WSEventPayload(info WSConnDetails, event, reason string) map[string]interface{} {
	durationMS := int64(0)
	if !info.ConnectedAt.IsZero() {
		durationMS = time.Since(info.ConnectedAt).Milliseconds()
	}
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        info.Kind,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}

// BuildHeaders assembles AMQP headers for correlation.
func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
