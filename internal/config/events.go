package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/formify/form-service/internal/events"
)

// PublisherKind selects where response events go.
type PublisherKind string

const (
	PublisherKafka  PublisherKind = "kafka"
	PublisherMemory PublisherKind = "memory"
	PublisherMock   PublisherKind = "mock"
)

type EventConfig struct {
	Enabled        bool
	Publisher      PublisherKind
	KafkaBrokers   string // comma separated
	ResponsesTopic string
}

// Brokers splits KafkaBrokers, dropping blank entries.
func (c *EventConfig) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// CreateEventPublisher returns the publisher for the configured kind.
// Disabled or unknown kinds get the logging mock so submissions never fail
// on a missing broker.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	kind := c.Publisher
	if !c.Enabled {
		kind = PublisherMock
	}
	logger = logger.With("publisher", string(kind), "topic", c.ResponsesTopic)

	switch kind {
	case PublisherKafka:
		brokers := c.Brokers()
		if len(brokers) == 0 {
			return nil, fmt.Errorf("kafka publisher needs at least one broker")
		}
		logger.Info("Publishing response events to kafka", "brokers", brokers)
		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: brokers,
			TopicName:    c.ResponsesTopic,
			Logger:       logger,
		})
	case PublisherMemory:
		// nothing subscribes in-process, events are only logged by watermill
		publisher, _ := events.NewChannelEventPublisher(events.PublisherConfig{
			TopicName: c.ResponsesTopic,
			Logger:    logger,
		})
		return publisher, nil
	case PublisherMock:
	default:
		logger.Warn("Unknown event publisher, falling back to mock")
	}
	return events.NewMockEventPublisher(logger), nil
}
