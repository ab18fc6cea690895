package messaging

import (
	"context"
	"log/slog"
	"time"

	"candrive-backend/internal/metrics"

	"github.com/nats-io/nats.go"
)

// Producer publishes donation messages to a NATS subject.
type Producer struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewProducer(url string, subject string, logger *slog.Logger, m *metrics.Metrics) (*Producer, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}

	logger.Info("NATS producer initialized", "url", url, "subject", subject)

	return &Producer{
		conn:    nc,
		subject: subject,
		logger:  logger,
		metrics: m,
	}, nil
}

func (p *Producer) SendMessage(ctx context.Context, value []byte) error {
	start := time.Now()
	err := p.conn.Publish(p.subject, value)

	p.metrics.Messaging.RecordPublish(ctx, p.subject, time.Since(start), err)

	if err != nil {
		p.logger.Error("failed to send message to NATS", "error", err)
		return err
	}

	p.logger.Info("message sent to NATS", "subject", p.subject)
	return nil
}

func (p *Producer) Close() error {
	p.conn.Close()
	return nil
}
