// Package ingest receives capture events from the device-side pipeline over
// NATS.
package ingest

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"scamwatch/internal/capture"
)

// EventSink consumes decoded capture events.
type EventSink interface {
	Push(event capture.Event) error
}

// Config holds the NATS subscription parameters.
type Config struct {
	URL     string
	Subject string
	Queue   string
}

// NATSSubscriber consumes capture events via a queue subscription and
// forwards them to the sink.
type NATSSubscriber struct {
	nc  *nats.Conn
	sub *nats.Subscription
}

// NewNATSSubscriber connects and subscribes. Undecodable payloads are
// logged and dropped; they are never redelivered.
func NewNATSSubscriber(cfg Config, sink EventSink) (*NATSSubscriber, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect nats ingest: %w", err)
	}

	sub, err := nc.QueueSubscribe(cfg.Subject, cfg.Queue, func(message *nats.Msg) {
		event, decodeErr := capture.Decode(message.Data)
		if decodeErr != nil {
			logrus.WithError(decodeErr).WithField("subject", message.Subject).Warn("nats ingest decode failed")
			return
		}
		if pushErr := sink.Push(event); pushErr != nil {
			logrus.WithError(pushErr).WithField("subject", message.Subject).Error("nats ingest push failed")
		}
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("queue subscribe %q/%q: %w", cfg.Subject, cfg.Queue, err)
	}

	return &NATSSubscriber{nc: nc, sub: sub}, nil
}

// Close stops the subscription and closes the connection.
func (s *NATSSubscriber) Close() error {
	if s.sub != nil {
		if err := s.sub.Drain(); err != nil {
			s.nc.Close()
			return err
		}
	}
	s.nc.Close()
	return nil
}
