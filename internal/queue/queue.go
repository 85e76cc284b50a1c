// Package queue publishes and consumes media cleanup events. After a
// successful upload the API defers local temp-file deletion to a worker
// consuming this queue.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/therealutkarshpriyadarshi/streamtube/internal/config"
)

const (
	CleanupQueueName = "media_cleanup"
	ExchangeName     = "streamtube"
)

// CleanupEvent asks the cleanup worker to remove a local temp file that has
// already been transferred to the media host.
type CleanupEvent struct {
	LocalPath string    `json:"local_path"`
	UserID    string    `json:"user_id"`
	QueuedAt  time.Time `json:"queued_at"`
}

// Queue provides message queue operations
type Queue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// New creates a new queue client
func New(cfg config.QueueConfig) (*Queue, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Vhost)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Declare exchange
	err = channel.ExchangeDeclare(
		ExchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	// Declare queue
	_, err = channel.QueueDeclare(
		CleanupQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	// Bind queue to exchange
	err = channel.QueueBind(
		CleanupQueueName,
		CleanupQueueName,
		ExchangeName,
		false,
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	return &Queue{
		conn:    conn,
		channel: channel,
	}, nil
}

// Close closes the queue connection
func (q *Queue) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

// PublishCleanup publishes a media cleanup event to the queue.
func (q *Queue) PublishCleanup(ctx context.Context, event *CleanupEvent) error {
	if event.QueuedAt.IsZero() {
		event.QueuedAt = time.Now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal cleanup event: %w", err)
	}

	err = q.channel.PublishWithContext(ctx,
		ExchangeName,
		CleanupQueueName,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish cleanup event: %w", err)
	}

	return nil
}

// ConsumeCleanup starts consuming cleanup events from the queue.
func (q *Queue) ConsumeCleanup(ctx context.Context, handler func(*CleanupEvent) error) error {
	// Set QoS to limit concurrent processing
	err := q.channel.Qos(
		1,     // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := q.channel.Consume(
		CleanupQueueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var event CleanupEvent
				if err := json.Unmarshal(msg.Body, &event); err != nil {
					msg.Nack(false, false)
					continue
				}

				if err := handler(&event); err != nil {
					// Hand the event to the retry queue instead of
					// requeueing it into a hot loop.
					retryCount := 0
					if val, ok := msg.Headers["x-retry-count"].(int32); ok {
						retryCount = int(val)
					}
					if err := q.PublishToRetryQueue(ctx, &event, retryCount); err != nil {
						msg.Nack(false, true)
						continue
					}
					msg.Ack(false)
				} else {
					msg.Ack(false)
				}
			}
		}
	}()

	return nil
}
