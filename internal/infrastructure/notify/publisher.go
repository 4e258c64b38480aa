package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/nats-io/nats.go"

	"github.com/rezkam/monodash/internal/domain"
)

// Message headers carrying the summary counts.
const (
	HeaderTotal     = "Monodash-Total"
	HeaderActive    = "Monodash-Active"
	HeaderCompleted = "Monodash-Completed"
	HeaderFilter    = "Monodash-Filter"
)

// SummarySource returns the current dashboard summary.
type SummarySource func() domain.DashboardSummary

// Publisher announces state changes on a NATS subject. Messages have an empty
// body; subscribers re-read state and may use the summary headers as a hint.
type Publisher struct {
	conn    *nats.Conn
	publish func(*nats.Msg) error
	subject string
	summary SummarySource
}

// NewPublisher connects to NATS.
func NewPublisher(url, subject string, summary SummarySource) (*Publisher, error) {
	if subject == "" {
		return nil, fmt.Errorf("notify subject is required")
	}

	conn, err := nats.Connect(url, nats.Name("monodash-notify"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS change publisher initialized", "url", url, "subject", subject)
	return &Publisher{conn: conn, publish: conn.PublishMsg, subject: subject, summary: summary}, nil
}

// Notify publishes one change message. It has the todo.Listener signature.
// The change is already committed when listeners run, so the message is sent
// even if the caller's context has been cancelled.
func (p *Publisher) Notify(ctx context.Context) error {
	if err := p.publish(buildMessage(p.subject, p.summary())); err != nil {
		return fmt.Errorf("failed to publish state change: %w", err)
	}
	slog.DebugContext(ctx, "published state change", "subject", p.subject)
	return nil
}

// Close drains the connection.
func (p *Publisher) Close() error {
	return p.conn.Drain()
}

func buildMessage(subject string, s domain.DashboardSummary) *nats.Msg {
	msg := nats.NewMsg(subject)
	msg.Header.Set(HeaderTotal, strconv.Itoa(s.Total))
	msg.Header.Set(HeaderActive, strconv.Itoa(s.Active))
	msg.Header.Set(HeaderCompleted, strconv.Itoa(s.Completed))
	msg.Header.Set(HeaderFilter, s.Filter.String())
	return msg
}
