package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chatsync-service/internal/mocks"
	"chatsync-service/internal/telemetry"
)

func TestEmitBuildsEnvelope(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit.chatsync", "chatsync-service", "test")

	userID := "7"
	publisher.On("Publish", mock.Anything, "audit.chatsync", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(telemetry.AuditEnvelope)
		if !ok {
			return false
		}
		return envelope.SchemaVersion == 1 &&
			envelope.EventType == "audit_log" &&
			envelope.Service == "chatsync-service" &&
			envelope.Environment == "test" &&
			envelope.RequestID == "req-1" &&
			envelope.UserID != nil && *envelope.UserID == "7" &&
			envelope.Payload.Level == "INFO" &&
			envelope.Payload.Text == "user signed up"
	})).Return(nil).Once()

	emitter.Emit(context.Background(), "INFO", "user signed up", "req-1", &userID)
	publisher.AssertExpectations(t)
}

func TestEmitNilEmitterIsNoop(t *testing.T) {
	var emitter *telemetry.AuditEmitter
	require.NotPanics(t, func() {
		emitter.Emit(context.Background(), "INFO", "ignored", "req-1", nil)
	})
}

func TestEmitSwallowsPublishError(t *testing.T) {
	publisher := new(mocks.PublisherMock)
	emitter := telemetry.NewAuditEmitter(publisher, "audit.chatsync", "chatsync-service", "test")

	publisher.On("Publish", mock.Anything, "audit.chatsync", mock.Anything).Return(assert.AnError).Once()

	require.NotPanics(t, func() {
		emitter.Emit(context.Background(), "WARN", "login failed", "req-2", nil)
	})
	publisher.AssertExpectations(t)
}
