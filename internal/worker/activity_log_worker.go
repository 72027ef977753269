package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"chatbot-platform/internal/model"
)

// ActivityLogWorker drains the activity queue into structured logs.
type ActivityLogWorker struct {
	conn      *amqp.Connection
	queueName string
	log       *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewActivityLogWorker(conn *amqp.Connection, queueName string, log *zap.Logger) *ActivityLogWorker {
	return &ActivityLogWorker{
		conn:      conn,
		queueName: queueName,
		log:       log.Named("activity"),
	}
}

func (w *ActivityLogWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(d.Body); err != nil {
					w.log.Warn("drop malformed activity event", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *ActivityLogWorker) handle(body []byte) error {
	var event model.ActivityEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode activity event failed: %w", err)
	}
	if event.Type == "" {
		return fmt.Errorf("activity event has no type")
	}
	w.log.Info("activity",
		zap.String("type", event.Type),
		zap.Uint("user_id", event.UserID),
		zap.Uint("project_id", event.ProjectID),
		zap.Uint("resource_id", event.ResourceID),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}

// Close stops consuming and waits for the in-flight delivery.
func (w *ActivityLogWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
