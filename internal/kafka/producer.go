package kafka

import (
	"context"
	"log/slog"
	"time"

	"candrive-backend/internal/metrics"

	"github.com/IBM/sarama"
)

// Producer publishes donation messages to a Kafka topic. It is the drop-in
// alternative to the NATS producer for schools already running Kafka.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewProducer(brokers []string, topic string, logger *slog.Logger, m *metrics.Metrics) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	logger.Info("kafka producer initialized", "brokers", brokers, "topic", topic)

	return &Producer{
		producer: producer,
		topic:    topic,
		logger:   logger,
		metrics:  m,
	}, nil
}

func (p *Producer) SendMessage(ctx context.Context, value []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(value),
	}

	start := time.Now()
	partition, offset, err := p.producer.SendMessage(msg)

	p.metrics.Messaging.RecordPublish(ctx, p.topic, time.Since(start), err)

	if err != nil {
		p.logger.Error("failed to send message to kafka", "error", err)
		return err
	}

	p.logger.Info("message sent to kafka", "topic", p.topic, "partition", partition, "offset", offset)
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
