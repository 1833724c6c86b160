package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mercatto/catalog-sync/internal/dto"
	"github.com/mercatto/catalog-sync/pkg/kafka/producer"
	"github.com/segmentio/kafka-go"
)

const _eventTypeHeader = "event_type"

type EventProducer struct {
	*producer.Producer
	topic string
}

func NewEventProducer(producer *producer.Producer, topic string) *EventProducer {
	return &EventProducer{
		producer,
		topic,
	}
}

func (ep *EventProducer) PublishSyncRequested(ctx context.Context, event dto.SyncRequested) error {
	return ep.publish(ctx, dto.EventSyncRequested, event.JobID.String(), event)
}

func (ep *EventProducer) PublishForkRequested(ctx context.Context, event dto.ForkRequested) error {
	return ep.publish(ctx, dto.EventForkRequested, event.EntityID.String(), event)
}

func (ep *EventProducer) PublishBrandCopyRequested(ctx context.Context, event dto.BrandCopyRequested) error {
	return ep.publish(ctx, dto.EventBrandCopyRequested, event.BrandID.String(), event)
}

func (ep *EventProducer) publish(ctx context.Context, eventType dto.EventType, key string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("EventProducer - publish - json.Marshal: %w", err)
	}

	msg := kafka.Message{
		Topic: ep.topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: _eventTypeHeader, Value: []byte(eventType)},
		},
	}

	err = ep.Writer.WriteMessages(ctx, msg)
	if err != nil {
		return fmt.Errorf("EventProducer - publish - ep.Writer.WriteMessages: %w", err)
	}

	return nil
}

func (ep *EventProducer) Close() error {
	err := ep.Producer.Close()
	if err != nil {
		return fmt.Errorf("EventProducer - Close: %w", err)
	}

	return nil
}
