package notify

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// KafkaSink publishes order-placed events to a Kafka topic, keyed by order
// ID so events for one order stay on one partition.
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaSink creates a sync producer against the given brokers.
func NewKafkaSink(brokers []string, topic string) (*KafkaSink, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1 // required for idempotent producing

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create kafka producer")
	}
	return &KafkaSink{producer: producer, topic: topic}, nil
}

// Deliver publishes one event.
func (k *KafkaSink) Deliver(_ context.Context, key string, payload []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := k.producer.SendMessage(msg); err != nil {
		return errors.Wrapf(err, "send to topic %s", k.topic)
	}
	return nil
}

// Close shuts down the underlying producer.
func (k *KafkaSink) Close() error {
	return k.producer.Close()
}

// LogSink writes events to the application log. It doubles as the admin
// notification sink and as the fallback when no brokers are configured.
type LogSink struct {
	lg *zap.Logger
}

// NewLogSink creates a LogSink on the given logger.
func NewLogSink(lg *zap.Logger) *LogSink {
	return &LogSink{lg: lg}
}

// Deliver logs the event payload.
func (l *LogSink) Deliver(_ context.Context, key string, payload []byte) error {
	l.lg.Info("order placed",
		zap.String("order_id", key),
		zap.ByteString("event", payload))
	return nil
}
