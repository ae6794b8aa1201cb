package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"feedback-platform/internal/domain"
	"feedback-platform/internal/infra/metrics"
)

// RabbitFollowUpQueue реализует domain.FollowUpQueue поверх AMQP.
// Сообщения публикуются с признаком Persistent, потребитель подтверждает
// их вручную, так что доставка получается at-least-once.
type RabbitFollowUpQueue struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	log   zerolog.Logger
}

var _ domain.FollowUpQueue = (*RabbitFollowUpQueue)(nil)

// NewRabbitFollowUpQueue подключается к брокеру и объявляет долговечную очередь.
func NewRabbitFollowUpQueue(amqpURL, queueName string, logger zerolog.Logger) (*RabbitFollowUpQueue, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queueName == "" {
		return nil, errors.New("queue name is empty")
	}
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &RabbitFollowUpQueue{conn: conn, ch: ch, queue: queueName, log: logger}, nil
}

// Publish отправляет событие в очередь.
func (q *RabbitFollowUpQueue) Publish(ctx context.Context, event domain.FollowUpEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	start := time.Now()
	err = q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	})
	metrics.ObserveNetworkRequest("rabbitmq", "publish", q.queue, start, err)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Consume читает события и передаёт их обработчику. Подтверждение
// отправляется только после успешной обработки; при ошибке обработчика
// сообщение возвращается в очередь. Нечитаемый payload отбрасывается:
// повторная доставка его не исправит.
func (q *RabbitFollowUpQueue) Consume(ctx context.Context, handler func(context.Context, domain.FollowUpEvent) error) error {
	if err := q.ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := q.ch.Consume(q.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			var event domain.FollowUpEvent
			if err := json.Unmarshal(delivery.Body, &event); err != nil {
				q.log.Error().Err(err).Msg("queue: не удалось разобрать сообщение")
				_ = delivery.Nack(false, false)
				continue
			}
			if err := handler(ctx, event); err != nil {
				q.log.Error().Err(err).Str("feedback_id", event.FeedbackID).Msg("queue: обработка события не удалась")
				_ = delivery.Nack(false, true)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

// Close закрывает канал и соединение.
func (q *RabbitFollowUpQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		_ = q.conn.Close()
		return err
	}
	return q.conn.Close()
}
