package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/safepath/internal/core/domain"
	"github.com/samirrijal/safepath/internal/pkg/logging"
)

// DurableArchiver is the consumer name used by the archiver.
const DurableArchiver = "analysis-archiver"

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
	subs    []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url, durable string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if durable == "" {
		durable = DurableArchiver
	}
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

// SubscribeAnalyses delivers every published analysis to handler. Messages
// that fail to decode or whose handler errors are negatively acknowledged and
// redelivered up to three times.
func (s *Subscriber) SubscribeAnalyses(ctx context.Context, handler func(ctx context.Context, a *domain.Analysis) error) error {
	sub, err := s.js.Subscribe(SubjectAnalyses, analysisHandler(ctx, handler),
		nats.Durable(s.durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// acker is the subset of *nats.Msg the handler needs.
type acker interface {
	Ack(opts ...nats.AckOpt) error
	Nak(opts ...nats.AckOpt) error
}

func analysisHandler(ctx context.Context, handler func(ctx context.Context, a *domain.Analysis) error) nats.MsgHandler {
	return func(msg *nats.Msg) {
		handleAnalysis(ctx, msg.Data, msg, handler)
	}
}

func handleAnalysis(ctx context.Context, data []byte, m acker, handler func(ctx context.Context, a *domain.Analysis) error) {
	var a domain.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "undecodable analysis event", "error", err)
		_ = m.Nak()
		return
	}
	if err := handler(ctx, &a); err != nil {
		_ = m.Nak()
		return
	}
	_ = m.Ack()
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
