package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// AMQPPublisher publishes events to a topic exchange. The connection is shared; a channel
// is opened per publish.
type AMQPPublisher struct {
	url      string
	exchange string

	mu   sync.Mutex
	conn amqpConn
}

// amqpConn is the part of *amqp.Connection the publisher uses.
type amqpConn interface {
	Channel() (*amqp.Channel, error)
	IsClosed() bool
	Close() error
}

var dial = func(url string) (amqpConn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required")
	}
	if strings.TrimSpace(exchange) == "" {
		return nil, fmt.Errorf("events exchange is required")
	}
	p := &AMQPPublisher{url: url, exchange: exchange}
	conn, err := p.connection()
	if err != nil {
		return nil, err
	}
	if err := declareExchange(conn, exchange); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

func declareExchange(conn amqpConn, exchange string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("amqp declare exchange %s: %w", exchange, err)
	}
	return nil
}

// Publish sends evt with its type as routing key.
func (p *AMQPPublisher) Publish(ctx context.Context, evt Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := EncodeEvent(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	conn, err := p.connection()
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		p.reset()
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	err = ch.Publish(
		p.exchange,
		evt.Type,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			MessageId:    evt.ReportID + ":" + evt.Type,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("amqp publish %s: %w", evt.Type, err)
	}
	return nil
}

// Close closes the broker connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

// connection returns the live connection, redialing after the broker dropped it.
func (p *AMQPPublisher) connection() (amqpConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	conn, err := dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	p.conn = conn
	return conn, nil
}

func (p *AMQPPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

var _ Publisher = (*AMQPPublisher)(nil)
