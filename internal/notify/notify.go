// Package notify publishes build events so downstream systems (deploy hooks,
// cache purgers) can react to a regenerated site.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/gazette/internal/logfields"
)

// Publisher delivers build events.
type Publisher interface {
	PublishBuilt(ctx context.Context, event BuildEvent) error
	Close() error
}

// Noop discards events.
type Noop struct{}

func (Noop) PublishBuilt(context.Context, BuildEvent) error { return nil }
func (Noop) Close() error                                   { return nil }

// conn is the subset of *nats.Conn used by NATSPublisher.
type conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// NATSPublisher publishes JSON build events on a NATS subject.
type NATSPublisher struct {
	conn    conn
	subject string
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	if subject == "" {
		return nil, fmt.Errorf("nats subject is required")
	}
	nc, err := nats.Connect(url,
		nats.Name("gazette"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS publisher initialized", logfields.URL(url), "subject", subject)
	return &NATSPublisher{conn: nc, subject: subject}, nil
}

// PublishBuilt publishes event and waits for the server to acknowledge the flush.
func (p *NATSPublisher) PublishBuilt(ctx context.Context, event BuildEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	timeout := 5 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := p.conn.FlushTimeout(timeout); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}

	slog.Debug("Published build event", logfields.Site(event.Site), "subject", p.subject)
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}

// New returns a NATSPublisher when url is set, else Noop.
func New(url, subject string) (Publisher, error) {
	if url == "" {
		return Noop{}, nil
	}
	return NewNATSPublisher(url, subject)
}
