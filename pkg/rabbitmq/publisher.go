package rabbitmq

import (
	"context"
	"encoding/json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"videoflix-transcoder/config"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

type publisher struct {
	conn     *amqp.Connection
	cfg      *config.RabbitMQ
	exchange string
}

// NewPublisher declares the exchange once and publishes persistent JSON
// messages to it. The connection is injected, never looked up globally.
func NewPublisher(conn *amqp.Connection, cfg *config.RabbitMQ, exchange string) (Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, cfg.Kind, true, false, false, false, nil); err != nil {
		return nil, err
	}

	return &publisher{
		conn:     conn,
		cfg:      cfg,
		exchange: exchange,
	}, nil
}

func (p *publisher) Publish(ctx context.Context, routingKey string, message any) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("routing_key", routingKey).Msg("failed to publish message")
		return err
	}

	return nil
}
