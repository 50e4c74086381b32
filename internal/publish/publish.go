// Package publish forwards a finished deployment summary to optional
// external stores. The file on disk is always the primary artifact; sinks
// only run after it has been written.
package publish

import (
	"context"
	"fmt"
	"strconv"

	"deploy-summary/internal/config"
	"deploy-summary/internal/errors"
)

// Message is what every sink receives.
type Message struct {
	RunID     string
	ChainID   int64
	ChainName string
	// Payload is the exact JSON written to the summary file.
	Payload []byte
}

// Key returns the chain id as a decimal string.
func (m Message) Key() string {
	return strconv.FormatInt(m.ChainID, 10)
}

// Sink delivers a summary to one destination.
type Sink interface {
	Name() string
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Publisher fans a message out to its sinks in order, stopping at the
// first failure.
type Publisher struct {
	sinks []Sink
}

// New builds a Publisher over sinks.
func New(sinks ...Sink) *Publisher {
	return &Publisher{sinks: sinks}
}

// Sinks returns the configured sink names.
func (p *Publisher) Sinks() []string {
	names := make([]string, 0, len(p.sinks))
	for _, s := range p.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Publish delivers msg to every sink.
func (p *Publisher) Publish(ctx context.Context, msg Message) error {
	for _, s := range p.sinks {
		if err := s.Publish(ctx, msg); err != nil {
			return errors.Wrap(errors.CodePublishFailure, err, "publish summary to "+s.Name(),
				errors.WithMetadata("sink", s.Name()))
		}
	}
	return nil
}

// Close closes all sinks.
func (p *Publisher) Close() error {
	var firstErr error
	for _, s := range p.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", s.Name(), err)
		}
	}
	return firstErr
}

// FromConfig connects every enabled sink. On error the sinks opened so far
// are closed.
func FromConfig(ctx context.Context, cfg config.PublishConfig) (*Publisher, error) {
	var sinks []Sink
	fail := func(err error) (*Publisher, error) {
		_ = New(sinks...).Close()
		return nil, err
	}

	if cfg.Redis.Enabled {
		sink, err := NewRedisSink(ctx, cfg.Redis)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.MySQL.Enabled {
		sink, err := NewMySQLSink(ctx, cfg.MySQL)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.RabbitMQ.Enabled {
		sink, err := NewRabbitMQSink(cfg.RabbitMQ)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, sink)
	}
	return New(sinks...), nil
}
