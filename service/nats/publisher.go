package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/brojonat/solroast/service/metrics"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher defines the interface for publishing service events to NATS.
type Publisher interface {
	// PublishRoast publishes a roast event to JetStream on the subject
	// "roasts.{wallet}".
	PublishRoast(ctx context.Context, event *RoastEvent) error

	// PublishAnalysis publishes a refreshed-analysis event to JetStream
	// on the subject "analyses.{wallet}".
	PublishAnalysis(ctx context.Context, event *AnalysisEvent) error

	// Close closes the connection to NATS.
	Close() error
}

// JetStreamPublisher publishes roast events to NATS JetStream.
type JetStreamPublisher struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	logger  *slog.Logger
	metrics *metrics.Metrics
}

const (
	// StreamName is the name of the JetStream stream for roasts.
	StreamName = "ROASTS"

	// RoastSubjects is the subject pattern for roast events.
	RoastSubjects = "roasts.*"

	// AnalysisSubjects is the subject pattern for analysis refresh events.
	AnalysisSubjects = "analyses.*"

	// StreamRetention is how long messages are retained.
	StreamRetention = 30 * 24 * time.Hour
)

// NewPublisher creates a new JetStream publisher.
// It connects to NATS and ensures the stream exists.
func NewPublisher(natsURL string, logger *slog.Logger, m *metrics.Metrics) (*JetStreamPublisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("solroast-publisher"),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(1*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	publisher := &JetStreamPublisher{
		nc:      nc,
		js:      js,
		logger:  logger,
		metrics: m,
	}

	if err := publisher.ensureStream(); err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream exists: %w", err)
	}

	logger.Info("NATS publisher initialized",
		"url", natsURL,
		"stream", StreamName,
	)

	return publisher, nil
}

// ensureStream creates the JetStream stream if it doesn't exist.
func (p *JetStreamPublisher) ensureStream() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream, err := p.js.Stream(ctx, StreamName)
	if err == nil {
		info, err := stream.Info(ctx)
		if err == nil {
			p.logger.Debug("JetStream stream already exists",
				"stream", StreamName,
				"messages", info.State.Msgs,
			)
		}
		return nil
	}

	p.logger.Info("creating JetStream stream", "stream", StreamName)

	streamConfig := jetstream.StreamConfig{
		Name:        StreamName,
		Description: "Roast and analysis events for analyzed wallets",
		Subjects:    []string{RoastSubjects, AnalysisSubjects},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      StreamRetention,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	}

	if _, err := p.js.CreateStream(ctx, streamConfig); err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	p.logger.Info("JetStream stream created successfully", "stream", StreamName)
	return nil
}

// PublishRoast publishes a single roast event.
func (p *JetStreamPublisher) PublishRoast(ctx context.Context, event *RoastEvent) error {
	subject := fmt.Sprintf("roasts.%s", event.Wallet)
	if event.PublishedAt.IsZero() {
		event.PublishedAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal roast event: %w", err)
	}

	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		p.metrics.RecordNATSPublish("roasts", "error")
		return fmt.Errorf("failed to publish roast: %w", err)
	}
	p.metrics.RecordNATSPublish("roasts", "ok")

	p.logger.Debug("published roast event",
		"subject", subject,
		"wallet", event.Wallet,
		"persona", event.Persona,
	)

	return nil
}

// PublishAnalysis publishes a single analysis refresh event.
func (p *JetStreamPublisher) PublishAnalysis(ctx context.Context, event *AnalysisEvent) error {
	subject := fmt.Sprintf("analyses.%s", event.Wallet)
	if event.PublishedAt.IsZero() {
		event.PublishedAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis event: %w", err)
	}

	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		p.metrics.RecordNATSPublish("analyses", "error")
		return fmt.Errorf("failed to publish analysis: %w", err)
	}
	p.metrics.RecordNATSPublish("analyses", "ok")

	p.logger.Debug("published analysis event",
		"subject", subject,
		"wallet", event.Wallet,
	)

	return nil
}

// Close closes the NATS connection.
func (p *JetStreamPublisher) Close() error {
	p.nc.Close()
	return nil
}
