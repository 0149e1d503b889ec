package mq

import (
	"b3flip/config"
	"context"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends JSON payloads to one durable queue. It is not safe for
// concurrent use; the driver owns it.
type Publisher struct {
	queue   string
	logger  *zap.Logger
	open    func() (channel, error)
	channel channel
}

type PublisherParams struct {
	fx.In

	Config   *config.AppConfig
	Logger   *zap.Logger
	RabbitMQ RabbitMQ
	Lc       fx.Lifecycle
}

func NewPublisher(p PublisherParams) *Publisher {
	pub := newPublisher(p.Config.MutationQueue, p.Logger, func() (channel, error) {
		ch, err := p.RabbitMQ.GetChannel()
		if err != nil {
			return nil, err
		}
		return ch, nil
	})
	p.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			pub.Close()
			return nil
		},
	})
	return pub
}

func newPublisher(queue string, logger *zap.Logger, open func() (channel, error)) *Publisher {
	return &Publisher{
		queue:  queue,
		logger: logger.Named("publisher").With(zap.String("queue", queue)),
		open:   open,
	}
}

// ensureChannel opens a channel and declares the queue the first time, and
// again after a failed publish dropped the previous channel.
func (p *Publisher) ensureChannel() (channel, error) {
	if p.channel != nil {
		return p.channel, nil
	}
	ch, err := p.open()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", p.queue, err)
	}
	p.channel = ch
	return ch, nil
}

// PublishJSON publishes body as a persistent JSON message.
func (p *Publisher) PublishJSON(ctx context.Context, body []byte) error {
	ch, err := p.ensureChannel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.New().String(),
		Body:         body,
	})
	if err != nil {
		p.logger.Warn("publish failed, dropping channel", zap.Error(err))
		ch.Close()
		p.channel = nil
		return fmt.Errorf("failed to publish to %s: %w", p.queue, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
}
