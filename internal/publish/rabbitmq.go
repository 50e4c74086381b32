package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"deploy-summary/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQSink publishes the summary as a persistent JSON message.
type RabbitMQSink struct {
	ch         amqpPublisher
	closers    []func() error
	exchange   string
	routingKey string
}

// NewRabbitMQSink dials the broker and opens a channel.
func NewRabbitMQSink(cfg config.RabbitMQConfig) (*RabbitMQSink, error) {
	if cfg.URL == "" {
		return nil, errors.New("RabbitMQ URL 不能为空")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("连接 RabbitMQ 失败: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("创建 RabbitMQ channel 失败: %w", err)
	}
	sink := newRabbitMQSink(ch, cfg.Exchange, cfg.RoutingKey)
	sink.closers = []func() error{ch.Close, conn.Close}
	return sink, nil
}

func newRabbitMQSink(ch amqpPublisher, exchange, routingKey string) *RabbitMQSink {
	return &RabbitMQSink{ch: ch, exchange: exchange, routingKey: routingKey}
}

// Name implements Sink.
func (s *RabbitMQSink) Name() string { return "rabbitmq" }

// Publish implements Sink.
func (s *RabbitMQSink) Publish(ctx context.Context, msg Message) error {
	err := s.ch.PublishWithContext(ctx, s.exchange, s.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.RunID,
		Timestamp:    time.Now(),
		Headers: amqp.Table{
			"chain_id":   msg.ChainID,
			"chain_name": msg.ChainName,
		},
		Body: msg.Payload,
	})
	if err != nil {
		return fmt.Errorf("RabbitMQ 发布摘要失败: %w", err)
	}
	return nil
}

// Close implements Sink.
func (s *RabbitMQSink) Close() error {
	if s == nil {
		return nil
	}
	var err error
	for _, c := range s.closers {
		err = errors.Join(err, c())
	}
	s.closers = nil
	return err
}
