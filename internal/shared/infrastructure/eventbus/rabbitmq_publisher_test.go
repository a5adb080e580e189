package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/triage/pkg/observability"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestNewPublishing(t *testing.T) {
	ctx := observability.WithCorrelationID(context.Background(), "corr-1")
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.FixedZone("CEST", 2*60*60))

	msg := newPublishing(ctx, []byte(`{"a":1}`), now)

	assert.Equal(t, AppID, msg.AppId)
	assert.Equal(t, "corr-1", msg.CorrelationId)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, time.UTC, msg.Timestamp.Location())
	assert.True(t, now.Equal(msg.Timestamp))
	assert.Equal(t, `{"a":1}`, string(msg.Body))
	assert.Len(t, msg.MessageId, 36)

	other := newPublishing(context.Background(), nil, now)
	assert.NotEqual(t, msg.MessageId, other.MessageId)
	assert.Empty(t, other.CorrelationId)
}
