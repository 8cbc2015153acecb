// Package events announces property changes on a RabbitMQ queue so that
// downstream indexers can keep their copy in sync.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/streadway/amqp"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// PropertyMessage is the body of every message on the properties queue.
type PropertyMessage struct {
	Action     string `json:"action"`
	PropertyID string `json:"property_id"`
}

// Publisher sends property change notifications.
type Publisher interface {
	PublishProperty(ctx context.Context, action string, propertyID uint) error
	Close() error
}

type RabbitMQPublisher struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
	logger    log.Logger

	// amqp channels are not safe for concurrent publishing
	mu sync.Mutex
}

// NewRabbitMQPublisher connects and declares the durable queue.
func NewRabbitMQPublisher(url, queueName string, logger log.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	logger = log.With(logger, "component", "publisher", "queue", queueName)
	level.Info(logger).Log("msg", "rabbitmq publisher ready")

	return &RabbitMQPublisher{conn: conn, channel: ch, queueName: queueName, logger: logger}, nil
}

func (p *RabbitMQPublisher) PublishProperty(ctx context.Context, action string, propertyID uint) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(PropertyMessage{
		Action:     action,
		PropertyID: strconv.FormatUint(uint64(propertyID), 10),
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.Publish(
		"",          // default exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s for property %d: %w", action, propertyID, err)
	}

	level.Debug(p.logger).Log("msg", "published", "action", action, "property_id", propertyID)
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// NoopPublisher is used when RABBITMQ_URL is not set.
type NoopPublisher struct{}

func (NoopPublisher) PublishProperty(context.Context, string, uint) error { return nil }
func (NoopPublisher) Close() error                                         { return nil }

// Recorder keeps every message in memory. Tests use it to assert on what a
// service announced.
type Recorder struct {
	mu       sync.Mutex
	Messages []PropertyMessage
}

func (r *Recorder) PublishProperty(_ context.Context, action string, propertyID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, PropertyMessage{Action: action, PropertyID: strconv.FormatUint(uint64(propertyID), 10)})
	return nil
}

func (r *Recorder) Close() error { return nil }
