package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/query-reformulator/pkg/postgres"
)

const defaultBatchSize = 100

// EventPublisher is satisfied by *kafka.Producer.
type EventPublisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
	Close() error
}

// KeyValueStore is satisfied by *redis.Client.
type KeyValueStore interface {
	SetMany(ctx context.Context, values map[string]string, ttl time.Duration) error
	Close() error
}

// RowStore is satisfied by *postgres.Client.
type RowStore interface {
	UpsertRows(ctx context.Context, rows []postgres.Row) error
	Close() error
}

// batcher buffers entries and hands them to flushFn when a full batch is
// waiting or on Flush. A full batch is sent before the next entry is
// buffered, so a failed Write leaves the entry out and may be retried.
type batcher struct {
	name      string
	batchSize int
	pending   []Entry
	flushFn   func(ctx context.Context, batch []Entry) error
	closeFn   func() error
}

func (b *batcher) Name() string { return b.name }

func (b *batcher) Write(ctx context.Context, e Entry) error {
	if len(b.pending) >= b.batchSize {
		if err := b.Flush(ctx); err != nil {
			return err
		}
	}
	b.pending = append(b.pending, e)
	return nil
}

// Flush keeps the pending batch on failure so a retry resends it.
func (b *batcher) Flush(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}
	if err := b.flushFn(ctx, b.pending); err != nil {
		return err
	}
	b.pending = b.pending[:0]
	return nil
}

func (b *batcher) Close() error {
	return b.closeFn()
}

// NewKafka publishes entries keyed by query index.
func NewKafka(p EventPublisher, batchSize int) Sink {
	return &batcher{
		name:      "kafka",
		batchSize: normalizeBatch(batchSize),
		flushFn: func(ctx context.Context, batch []Entry) error {
			events := make([]kafka.Event, len(batch))
			for i, e := range batch {
				events[i] = kafka.Event{Key: e.Index, Value: e}
			}
			return p.PublishBatch(ctx, events)
		},
		closeFn: p.Close,
	}
}

// NewRedis stores each entry's structured query under keyPrefix+index.
func NewRedis(store KeyValueStore, keyPrefix string, ttl time.Duration, batchSize int) Sink {
	return &batcher{
		name:      "redis",
		batchSize: normalizeBatch(batchSize),
		flushFn: func(ctx context.Context, batch []Entry) error {
			values := make(map[string]string, len(batch))
			for _, e := range batch {
				values[keyPrefix+e.Index] = e.Structured
			}
			return store.SetMany(ctx, values, ttl)
		},
		closeFn: store.Close,
	}
}

// NewPostgres upserts entries into the mirror table, one transaction per
// batch.
func NewPostgres(store RowStore, batchSize int) Sink {
	return &batcher{
		name:      "postgres",
		batchSize: normalizeBatch(batchSize),
		flushFn: func(ctx context.Context, batch []Entry) error {
			rows := make([]postgres.Row, len(batch))
			for i, e := range batch {
				rows[i] = postgres.Row{Index: e.Index, Query: e.Query, Structured: e.Structured}
			}
			if err := store.UpsertRows(ctx, rows); err != nil {
				return fmt.Errorf("upserting %d rows: %w", len(rows), err)
			}
			return nil
		},
		closeFn: store.Close,
	}
}

func normalizeBatch(n int) int {
	if n <= 0 {
		return defaultBatchSize
	}
	return n
}
