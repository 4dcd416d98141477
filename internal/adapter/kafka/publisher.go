package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/perfect-day/internal/config"
	"github.com/couchcryptid/perfect-day/internal/report"
	"github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	publishAttempts    = 3
	publishBackoff     = 500 * time.Millisecond
	publishBackoffCeil = 5 * time.Second
)

// Publisher produces finished reports to a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured report topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaReportTopic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish writes one report, keyed by its run ID, retrying transient broker
// failures with exponential backoff.
func (p *Publisher) Publish(ctx context.Context, r report.Report) error {
	msg, err := serializeToMessage(r)
	if err != nil {
		return err
	}

	backoff := publishBackoff
	for attempt := 1; ; attempt++ {
		err = p.writer.WriteMessages(ctx, msg)
		if err == nil {
			break
		}
		if attempt == publishAttempts {
			return fmt.Errorf("publish report after %d attempts: %w", attempt, err)
		}
		p.logger.Warn("publish failed, retrying", "attempt", attempt, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return fmt.Errorf("publish report: %w", ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, publishBackoffCeil)
	}

	p.logger.Info("report published", "topic", p.writer.Topic, "run_id", r.RunID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a Report into a Kafka message.
func serializeToMessage(r report.Report) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(r.RunID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station", Value: []byte(r.Station)},
			{Key: "generated_at", Value: []byte(r.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
