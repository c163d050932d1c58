package pubsub

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"zapdesk/entity"
	"zapdesk/internal/lib/sl"
)

// Publisher mirrors dashboard notifications to a topic exchange so
// external consumers can follow the same stream the WebSocket clients see.
type Publisher struct {
	conn     *amqp091.Connection
	exchange string
	log      *slog.Logger
}

func New(url, exchange string, logger *slog.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(
		exchange, "topic", true, false, false, false, nil,
	); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{
		conn:     conn,
		exchange: exchange,
		log:      logger.With(sl.Module("pubsub")),
	}, nil
}

// Publish sends one notification with its event name as routing key. Fire
// and forget: broker trouble is logged and never propagates to the caller.
func (p *Publisher) Publish(event entity.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := p.conn.Channel()
	if err != nil {
		p.log.With(sl.Err(err)).Error("opening channel")
		return
	}
	defer ch.Close()

	body, err := json.Marshal(event)
	if err != nil {
		p.log.With(sl.Err(err)).Error("marshaling notification")
		return
	}

	err = ch.PublishWithContext(
		ctx, p.exchange, event.Event, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		p.log.With(slog.String("event", event.Event), sl.Err(err)).Error("publishing notification")
		return
	}
	p.log.With(slog.String("event", event.Event), slog.String("exchange", p.exchange)).Debug("published")
}

func (p *Publisher) Close() error {
	return p.conn.Close()
}
