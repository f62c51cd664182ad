package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	// DefaultQueueName is the default queue name
	DefaultQueueName = "cleanplate_analysis_jobs"
	// DefaultDLQName is the default dead letter queue name
	DefaultDLQName = "cleanplate_analysis_jobs_dlq"
	// DefaultExchangeName is the default exchange name
	DefaultExchangeName = "cleanplate_jobs"
	// DefaultDelayedExchangeName is the default delayed exchange name (requires plugin)
	DefaultDelayedExchangeName = "cleanplate_jobs_delayed"
	// DefaultWaitQueueName holds delayed jobs until their TTL expires when the
	// delayed exchange is unavailable
	DefaultWaitQueueName = "cleanplate_analysis_jobs_wait"

	jobsRoutingKey = "jobs"
	dlqRoutingKey  = "dlq"
	waitRoutingKey = "wait"
)

// RabbitMQQueue implements JobQueue using RabbitMQ
type RabbitMQQueue struct {
	conn                *amqp.Connection
	channel             *amqp.Channel
	mu                  sync.Mutex // guards channel
	logger              *zap.Logger
	queueName           string
	dlqName             string
	waitQueueName       string
	exchangeName        string
	delayedExchangeName string
	delayedAvailable    bool
}

var (
	_ JobQueue  = (*RabbitMQQueue)(nil)
	_ DLQPurger = (*RabbitMQQueue)(nil)
)

// NewRabbitMQQueue creates a new RabbitMQ queue
func NewRabbitMQQueue(amqpURL string, logger *zap.Logger) (*RabbitMQQueue, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	queue := &RabbitMQQueue{
		conn:                conn,
		channel:             ch,
		logger:              logger,
		queueName:           DefaultQueueName,
		dlqName:             DefaultDLQName,
		waitQueueName:       DefaultWaitQueueName,
		exchangeName:        DefaultExchangeName,
		delayedExchangeName: DefaultDelayedExchangeName,
	}

	if err := queue.setup(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to setup queues: %w", err)
	}

	return queue, nil
}

// setup configures exchanges and queues
func (q *RabbitMQQueue) setup() error {
	// Declare delayed exchange (requires rabbitmq_delayed_message_exchange plugin)
	err := q.channel.ExchangeDeclare(
		q.delayedExchangeName,
		"x-delayed-message",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		amqp.Table{"x-delayed-type": "direct"},
	)
	if err != nil {
		// A failed declare closes the channel
		if q.channel.IsClosed() {
			newCh, openErr := q.conn.Channel()
			if openErr != nil {
				return fmt.Errorf("failed to reopen channel after delayed exchange error: %w", openErr)
			}
			q.channel = newCh
		}
		q.logger.Warn("delayed_exchange_unavailable",
			zap.String("exchange", q.delayedExchangeName),
			zap.Error(err),
		)
	} else {
		q.delayedAvailable = true
	}

	if err := q.channel.ExchangeDeclare(q.exchangeName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	if _, err := q.channel.QueueDeclare(q.dlqName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}
	if err := q.channel.QueueBind(q.dlqName, dlqRoutingKey, q.exchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind DLQ: %w", err)
	}

	// Nacked jobs without requeue land in the DLQ
	queueArgs := amqp.Table{
		"x-dead-letter-exchange":    q.exchangeName,
		"x-dead-letter-routing-key": dlqRoutingKey,
	}
	if _, err := q.channel.QueueDeclare(q.queueName, true, false, false, false, queueArgs); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := q.channel.QueueBind(q.queueName, jobsRoutingKey, q.exchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue to exchange: %w", err)
	}

	if q.delayedAvailable {
		if err := q.channel.QueueBind(q.queueName, jobsRoutingKey, q.delayedExchangeName, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue to delayed exchange: %w", err)
		}
		return nil
	}

	// Expired messages in the wait queue dead-letter back into the jobs queue
	waitArgs := amqp.Table{
		"x-dead-letter-exchange":    q.exchangeName,
		"x-dead-letter-routing-key": jobsRoutingKey,
	}
	if _, err := q.channel.QueueDeclare(q.waitQueueName, true, false, false, false, waitArgs); err != nil {
		return fmt.Errorf("failed to declare wait queue: %w", err)
	}
	if err := q.channel.QueueBind(q.waitQueueName, waitRoutingKey, q.exchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind wait queue: %w", err)
	}

	return nil
}

// publishRoute picks where a job is published. Jobs due in the future go
// through the delayed exchange, or through the wait queue with a per-message
// TTL when the plugin is missing.
func (q *RabbitMQQueue) publishRoute(job *Job, now time.Time) (exchange, routingKey string, headers amqp.Table, expiration string) {
	exchange, routingKey = q.exchangeName, jobsRoutingKey
	if job.NotAfter != nil {
		if ttl := job.NotAfter.Sub(now); ttl > 0 {
			expiration = strconv.FormatInt(ttl.Milliseconds(), 10)
		}
	}

	if job.NotBefore == nil {
		return exchange, routingKey, nil, expiration
	}
	delay := job.NotBefore.Sub(now)
	if delay <= 0 {
		return exchange, routingKey, nil, expiration
	}

	if q.delayedAvailable {
		return q.delayedExchangeName, jobsRoutingKey, amqp.Table{"x-delay": delay.Milliseconds()}, expiration
	}
	return q.exchangeName, waitRoutingKey, nil, strconv.FormatInt(delay.Milliseconds(), 10)
}

// Enqueue adds a job to the queue
func (q *RabbitMQQueue) Enqueue(ctx context.Context, job *Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	jobJSON, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         jobJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID.String(),
		Timestamp:    job.CreatedAt,
	}
	if job.RequestID != "" {
		publishing.CorrelationId = job.RequestID
	}

	exchangeName, routingKey, headers, expiration := q.publishRoute(job, time.Now())
	publishing.Headers = headers
	publishing.Expiration = expiration

	q.mu.Lock()
	err = q.channel.PublishWithContext(ctx, exchangeName, routingKey, false, false, publishing)
	q.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}

	return nil
}

// Consume returns a channel of messages from the queue using async delivery
func (q *RabbitMQQueue) Consume(ctx context.Context, prefetchCount int) (<-chan MessageInterface, <-chan error, error) {
	if prefetchCount <= 0 {
		prefetchCount = 1
	}

	// Consumers get their own channel
	consumeCh, err := q.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create consumer channel: %w", err)
	}

	if err := consumeCh.Qos(prefetchCount, 0, false); err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := consumeCh.Consume(
		q.queueName,
		"",    // consumer tag (empty = auto-generate)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = consumeCh.Close()
		return nil, nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	msgChan := make(chan MessageInterface, prefetchCount)
	errChan := make(chan error, 1)

	go func() {
		defer close(msgChan)
		defer close(errChan)
		defer func() { _ = consumeCh.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					errChan <- fmt.Errorf("delivery channel closed")
					return
				}

				var job Job
				if err := json.Unmarshal(delivery.Body, &job); err != nil {
					// Undecodable, send to DLQ
					_ = delivery.Nack(false, false)
					q.logger.Warn("job_unmarshal_failed",
						zap.String("message_id", delivery.MessageId),
						zap.Error(err),
					)
					continue
				}

				if job.IsExpired() {
					_ = delivery.Nack(false, false)
					continue
				}

				msg := &Message{
					Job:         &job,
					DeliveryTag: delivery.DeliveryTag,
					Channel:     consumeCh,
				}

				select {
				case <-ctx.Done():
					_ = delivery.Nack(false, true)
					return
				case msgChan <- msg:
				}
			}
		}
	}()

	return msgChan, errChan, nil
}

// PurgeOlderThan drops DLQ messages published more than retention ago.
// Messages are inspected in arrival order and the scan stops at the first
// message still within retention.
func (q *RabbitMQQueue) PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	cutoff := time.Now().Add(-retention)
	purged := 0
	for {
		if err := ctx.Err(); err != nil {
			return purged, err
		}

		msg, ok, err := q.channel.Get(q.dlqName, false)
		if err != nil {
			return purged, fmt.Errorf("failed to read DLQ: %w", err)
		}
		if !ok {
			return purged, nil
		}

		if msg.Timestamp.IsZero() || msg.Timestamp.After(cutoff) {
			_ = msg.Nack(false, true)
			return purged, nil
		}
		if err := msg.Ack(false); err != nil {
			return purged, fmt.Errorf("failed to ack DLQ message: %w", err)
		}
		purged++
	}
}

// HealthCheck verifies the queue connection is healthy
func (q *RabbitMQQueue) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if q.conn == nil || q.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection closed")
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.channel == nil || q.channel.IsClosed() {
		return fmt.Errorf("rabbitmq channel closed")
	}
	if _, err := q.channel.QueueDeclarePassive(q.queueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue %s unavailable: %w", q.queueName, err)
	}
	return nil
}

// Close closes the queue connection
func (q *RabbitMQQueue) Close() error {
	var err error
	if q.channel != nil {
		err = q.channel.Close()
	}
	if q.conn != nil {
		if closeErr := q.conn.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}
