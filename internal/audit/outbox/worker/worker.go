// Package worker polls the audit outbox and publishes pending entries to
// Kafka. It runs as a background goroutine alongside the HTTP server.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"caseseal/internal/audit/outbox"
	"caseseal/internal/platform/kafka/producer"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultBatchSize    = 50
)

// Worker drains the outbox into a Kafka topic.
type Worker struct {
	store    outbox.Store
	producer *producer.Producer
	logger   *slog.Logger

	topic        string
	pollInterval time.Duration
	batchSize    int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures the worker.
type Option func(*Worker)

// WithPollInterval sets how often the worker checks for pending entries.
func WithPollInterval(d time.Duration) Option {
	return func(w *Worker) { w.pollInterval = d }
}

// WithBatchSize sets the maximum number of entries fetched per poll.
func WithBatchSize(n int) Option {
	return func(w *Worker) { w.batchSize = n }
}

// New creates an outbox worker publishing to the given topic.
func New(store outbox.Store, prod *producer.Producer, topic string, logger *slog.Logger, opts ...Option) *Worker {
	w := &Worker{
		store:        store,
		producer:     prod,
		logger:       logger,
		topic:        topic,
		pollInterval: defaultPollInterval,
		batchSize:    defaultBatchSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the poll loop. Call Stop to shut it down.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

// Stop cancels the poll loop and waits for the in-flight batch to finish.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				w.logger.ErrorContext(ctx, "drain audit outbox", "error", err)
			}
		}
	}
}

// drain processes one batch of pending entries in order. The store claims
// the batch for the duration of the call; entries that fail to publish stay
// pending and are retried on the next poll.
func (w *Worker) drain(ctx context.Context) error {
	_, err := w.store.Drain(ctx, w.batchSize, func(ctx context.Context, entry *outbox.Entry) error {
		msg := &producer.Message{
			Topic: w.topic,
			Key:   []byte(entry.AggregateID),
			Value: entry.Payload,
			Headers: map[string]string{
				"event_type":     entry.EventType,
				"aggregate_type": entry.AggregateType,
			},
		}

		if err := w.producer.Produce(ctx, msg); err != nil {
			w.logger.ErrorContext(ctx, "publish outbox entry",
				"error", err,
				"entry_id", entry.ID,
			)
			return err
		}
		return nil
	})
	return err
}
