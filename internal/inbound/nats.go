package inbound

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"searchmap/internal/metrics"
	"searchmap/internal/selection"
)

// Subscriber receives selection payloads published on a NATS subject.
type Subscriber struct {
	conn *nats.Conn
	subs []*nats.Subscription
}

// NewSubscriber connects to url, retrying in the background if the server
// is not up yet.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := nats.Connect(url,
		nats.Name("searchmap"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Subscriber{conn: conn}, nil
}

// Subscribe delivers every payload on subject to h.
func (s *Subscriber) Subscribe(subject string, h Handler) error {
	sub, err := s.conn.Subscribe(subject, natsHandler("nats", h))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Connected reports whether the connection is currently up.
func (s *Subscriber) Connected() bool { return s.conn.IsConnected() }

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}

func natsHandler(source string, h Handler) nats.MsgHandler {
	return func(m *nats.Msg) {
		msg, err := selection.Decode(m.Data)
		if err != nil {
			metrics.MessagesMalformed.WithLabelValues(source).Inc()
			slog.Warn("malformed selection payload", "source", source, "subject", m.Subject, "error", err)
			return
		}
		msg.Source = source
		h(msg)
	}
}

// Publish sends one selection to subject and flushes.
func Publish(url, subject string, selected []selection.Descriptor) error {
	data, err := selection.Encode(selected)
	if err != nil {
		return err
	}
	conn, err := nats.Connect(url, nats.Name("searchmap-publish"), nats.Timeout(5*time.Second))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer conn.Close()
	if err := conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return conn.Flush()
}
