package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/safepath/internal/core/domain"
)

const (
	// StreamAnalyses holds every completed analysis for the archiver.
	StreamAnalyses = "SAFEPATH_ANALYSES"
	// SubjectAnalyses matches all analysis events; the WebSocket relay listens here.
	SubjectAnalyses = "safepath.analysis.>"
	// SubjectAnalysisCompleted carries the full analysis JSON.
	SubjectAnalysisCompleted = "safepath.analysis.completed"
	// SubjectAnalysisEmpty is used when no candidate route survived.
	SubjectAnalysisEmpty = "safepath.analysis.empty"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStream(js, &nats.StreamConfig{
		Name:      StreamAnalyses,
		Subjects:  []string{SubjectAnalyses},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}); err != nil {
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStream(js nats.JetStreamContext, cfg *nats.StreamConfig) error {
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist; try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// SubjectFor picks the subject an analysis is published on.
func SubjectFor(a *domain.Analysis) string {
	if len(a.Routes) == 0 {
		return SubjectAnalysisEmpty
	}
	return SubjectAnalysisCompleted
}

// PublishAnalysis publishes a finished analysis. The analysis ID doubles as
// the JetStream message ID so retried publishes are deduplicated.
func (p *Publisher) PublishAnalysis(ctx context.Context, a *domain.Analysis) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	_, err = p.js.Publish(SubjectFor(a), data, nats.MsgId(a.ID), nats.Context(ctx))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
