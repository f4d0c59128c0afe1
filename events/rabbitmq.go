package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, ch, err := openExchange(url, exchange)
	if err != nil {
		return nil, err
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         b,
	})
}

func (p *AMQPPublisher) Close() error {
	return closeAll(p.ch, p.conn)
}

type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// NewConsumer declares a durable queue bound to exchange for every routing key.
func NewConsumer(url, exchange, queue string, keys []string) (*Consumer, error) {
	conn, ch, err := openExchange(url, exchange)
	if err != nil {
		return nil, err
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		_ = closeAll(ch, conn)
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	for _, rk := range keys {
		if err := ch.QueueBind(q.Name, rk, exchange, false, nil); err != nil {
			_ = closeAll(ch, conn)
			return nil, fmt.Errorf("bind %s: %w", rk, err)
		}
	}
	return &Consumer{conn: conn, ch: ch, queue: q.Name}, nil
}

func (c *Consumer) Deliveries(ctx context.Context) (<-chan amqp.Delivery, error) {
	return c.ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
}

func (c *Consumer) Close() error {
	return closeAll(c.ch, c.conn)
}

// Handler processes one message body. Returning an error wrapping ErrDiscard
// drops the message, any other error requeues it.
type Handler func(ctx context.Context, routingKey string, body []byte) error

// Dispatch acks or nacks each delivery according to the handler result until
// the channel closes or ctx is done.
func Dispatch(ctx context.Context, deliveries <-chan amqp.Delivery, handle Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			err := handle(ctx, d.RoutingKey, d.Body)
			switch {
			case err == nil:
				_ = d.Ack(false)
			case errors.Is(err, ErrDiscard):
				log.Printf("[events] dropping %s: %v", d.RoutingKey, err)
				_ = d.Nack(false, false)
			default:
				log.Printf("[events] requeue %s: %v", d.RoutingKey, err)
				_ = d.Nack(false, true)
			}
		}
	}
}

func openExchange(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = closeAll(ch, conn)
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}
	return conn, ch, nil
}

func closeAll(ch *amqp.Channel, conn *amqp.Connection) error {
	if ch != nil {
		_ = ch.Close()
	}
	if conn != nil {
		return conn.Close()
	}
	return nil
}
