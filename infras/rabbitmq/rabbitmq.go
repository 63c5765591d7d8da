package rabbitmq

import (
	"context"
	"courtside/config"
	"courtside/shared/constant"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const exchangeKind = "topic"

type Message struct {
	ID    string
	Key   string
	Value any
}

func (m *Message) ToPublishing() (amqp.Publishing, error) {
	body, err := json.Marshal(m.Value)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal message value to JSON")

		return amqp.Publishing{}, fmt.Errorf("failed to marshal message value to JSON: %w", err)
	}

	return amqp.Publishing{
		ContentType:  constant.ContentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    m.ID,
		Timestamp:    time.Now(),
		Body:         body,
	}, nil
}

type Client interface {
	Publish(ctx context.Context, messages ...Message) (err error)
	Close() error
}

type clientImpl struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	mu       sync.Mutex
}

// New dials the broker and declares the durable topic exchange events are published to.
func New(config *config.Config) Client {
	conn, err := amqp.Dial(config.Broker.RabbitMQ.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		log.Fatal().Err(err).Msg("Failed to open RabbitMQ channel")
	}

	exchange := config.Broker.RabbitMQ.Exchange
	if err = ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()

		log.Fatal().Err(err).Str("exchange", exchange).Msg("Failed to declare RabbitMQ exchange")
	}

	log.Info().Str("exchange", exchange).Msg("Connected to RabbitMQ")

	return &clientImpl{conn: conn, ch: ch, exchange: exchange}
}

func (c *clientImpl) Publish(ctx context.Context, messages ...Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, message := range messages {
		publishing, err := message.ToPublishing()
		if err != nil {
			return err
		}

		if err = c.ch.PublishWithContext(ctx, c.exchange, message.Key, false, false, publishing); err != nil {
			log.Error().Err(err).Str("key", message.Key).Msg("Failed to publish message")

			return fmt.Errorf("failed to publish message: %w", err)
		}
	}

	return nil
}

func (c *clientImpl) Close() error {
	if err := c.ch.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close RabbitMQ channel")
	}

	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close RabbitMQ connection: %w", err)
	}

	return nil
}
