// internal/events/publisher.go
package events

import (
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/openmall/shop-backend/internal/config"
)

// OrderEvent is published after an order mutation commits. Amounts travel
// as fixed-point decimal strings.
type OrderEvent struct {
	OrderID  string    `json:"order_id"`
	OrderNo  string    `json:"order_no"`
	UserID   string    `json:"user_id"`
	Type     string    `json:"type"` // created, paid, cancelled, status_updated
	Status   string    `json:"status"`
	Total    string    `json:"total"`
	Occurred time.Time `json:"occurred"`
}

// Publisher fans order events out through a durable fanout exchange.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(cfg config.RabbitMQConfig) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(
		cfg.OrderExchange,
		"fanout",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Publisher{
		conn:     conn,
		channel:  ch,
		exchange: cfg.OrderExchange,
	}, nil
}

func (p *Publisher) PublishOrderEvent(event OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.channel.Publish(
		p.exchange,
		"",
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			ContentType:  "application/json",
			Body:         body,
		},
	)
}

func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
