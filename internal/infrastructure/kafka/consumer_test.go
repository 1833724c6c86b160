package kafka

import (
	"testing"

	"github.com/mercatto/catalog-sync/internal/dto"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestEventTypeOf(t *testing.T) {
	t.Parallel()

	msg := kafka.Message{
		Headers: []kafka.Header{
			{Key: "trace_id", Value: []byte("abc")},
			{Key: _eventTypeHeader, Value: []byte(dto.EventForkRequested)},
		},
	}

	assert.Equal(t, dto.EventForkRequested, EventTypeOf(msg))
}

func TestEventTypeOf_MissingHeader(t *testing.T) {
	t.Parallel()

	assert.Equal(t, dto.EventType(""), EventTypeOf(kafka.Message{}))
}
