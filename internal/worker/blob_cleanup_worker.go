// Package worker hosts the background consumers that drain the queues the
// request path publishes to.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"docuchat/internal/blob"
	"docuchat/internal/platform/rabbitmq"
)

// BlobCleanupWorker consumes blob keys from the cleanup queue and removes
// the objects. Failed deletes are nacked without requeue: blob cleanup is
// best-effort and a poisoned key must not wedge the queue.
type BlobCleanupWorker struct {
	conn      *amqp.Connection
	blobs     blob.Store
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewBlobCleanupWorker(conn *amqp.Connection, blobs blob.Store, queueName string, logger *zap.Logger) *BlobCleanupWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlobCleanupWorker{
		conn:      conn,
		blobs:     blobs,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *BlobCleanupWorker) Start(ctx context.Context) error {
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

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
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

				var msg rabbitmq.BlobDeleteMessage
				if err := json.Unmarshal(d.Body, &msg); err != nil {
					w.logger.Warn("decode cleanup message failed", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				if err := w.blobs.Delete(workerCtx, msg.Key); err != nil {
					w.logger.Warn("blob delete failed",
						zap.String("blob_key", msg.Key), zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				w.logger.Debug("blob deleted", zap.String("blob_key", msg.Key))
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *BlobCleanupWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
