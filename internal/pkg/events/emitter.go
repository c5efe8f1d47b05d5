package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/tradekart/tradekart/internal/pkg/env"
)

// Emitter publishes domain events at-least-once. Implementations must never
// block the request path beyond local buffering; callers log failures instead
// of surfacing them to the client.
type Emitter interface {
	EmitOrderCreated(event OrderCreatedEvent) error
	EmitPaymentSucceeded(event PaymentSucceededEvent) error
}

type kafkaEmitter struct {
	producer     sarama.SyncProducer
	logger       *zap.Logger
	orderTopic   string
	paymentTopic string
}

// NewKafkaEmitter wraps an existing producer. Topics fall back to the
// defaults when empty.
func NewKafkaEmitter(producer sarama.SyncProducer, logger *zap.Logger, orderTopic, paymentTopic string) Emitter {
	if orderTopic == "" {
		orderTopic = DefaultOrderCreatedTopic
	}
	if paymentTopic == "" {
		paymentTopic = DefaultPaymentSucceededTopic
	}
	return &kafkaEmitter{
		producer:     producer,
		logger:       logger,
		orderTopic:   orderTopic,
		paymentTopic: paymentTopic,
	}
}

// InitProducer creates the shared sync producer from the environment. Sends
// wait for full ISR acknowledgment and retry a bounded number of times before
// failing the publish.
func InitProducer(logger *zap.Logger) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	brokers := strings.Split(env.GetEnv("KAFKA_BROKERS", "localhost:9092"), ",")

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Info("Kafka producer initialized", zap.Strings("brokers", brokers))
	return producer, nil
}

func (e *kafkaEmitter) EmitOrderCreated(event OrderCreatedEvent) error {
	return e.publish(e.orderTopic, event.OrderID, event)
}

func (e *kafkaEmitter) EmitPaymentSucceeded(event PaymentSucceededEvent) error {
	return e.publish(e.paymentTopic, event.OrderID, event)
}

// publish serializes the event as JSON and sends it keyed by the order id so
// all events for one order land on the same partition.
func (e *kafkaEmitter) publish(topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	partition, offset, err := e.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	e.logger.Info("Event published",
		zap.String("topic", topic),
		zap.String("key", key),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

var (
	globalEmitter Emitter
	emitterOnce   sync.Once
)

// SetupEmitter wires the global emitter used by the HTTP layer. A broker
// outage is logged, not fatal: checkout must not fail because Kafka is down,
// so the emitter degrades to a logging no-op.
func SetupEmitter(logger *zap.Logger) {
	emitterOnce.Do(func() {
		producer, err := InitProducer(logger)
		if err != nil {
			logger.Warn("Kafka unavailable, events will be dropped", zap.Error(err))
			globalEmitter = &nopEmitter{logger: logger}
			return
		}
		globalEmitter = NewKafkaEmitter(
			producer,
			logger,
			env.GetEnv("KAFKA_TOPIC_ORDER_CREATED", DefaultOrderCreatedTopic),
			env.GetEnv("KAFKA_TOPIC_PAYMENT_SUCCEEDED", DefaultPaymentSucceededTopic),
		)
	})
}

// GetEmitter returns the global emitter instance.
func GetEmitter() Emitter {
	if globalEmitter == nil {
		panic("Event emitter not initialized. Call SetupEmitter first.")
	}
	return globalEmitter
}

type nopEmitter struct {
	logger *zap.Logger
}

func (n *nopEmitter) EmitOrderCreated(event OrderCreatedEvent) error {
	n.logger.Warn("dropping OrderCreated event, no broker", zap.String("order_id", event.OrderID))
	return nil
}

func (n *nopEmitter) EmitPaymentSucceeded(event PaymentSucceededEvent) error {
	n.logger.Warn("dropping PaymentSucceeded event, no broker", zap.String("order_id", event.OrderID))
	return nil
}
