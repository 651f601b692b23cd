package broker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"

	"bookstore/internal/bookstate"
)

const readRetryDelay = time.Second

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Dispatcher is the part of the books store the consumer drives.
type Dispatcher interface {
	Dispatch(ctx context.Context, action bookstate.Action) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// CatalogEvent is the optional body of a catalog change message. The
// consumer only logs it; any message triggers a full refetch.
type CatalogEvent struct {
	Action string `json:"action"`
	ISBN   string `json:"isbn"`
}

// CatalogConsumer dispatches BooksGet for every catalog change message.
type CatalogConsumer struct {
	reader messageReader
	store  Dispatcher
}

func NewCatalogConsumer(brokers []string, groupID, topic string, store Dispatcher) *CatalogConsumer {
	return &CatalogConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}),
		store: store,
	}
}

// Run consumes until ctx is done. Read and dispatch failures are logged and
// consumption continues.
func (c *CatalogConsumer) Run(ctx context.Context) error {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			slog.Warn("kafka read error", slog.Any("error", err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(readRetryDelay):
			}
			continue
		}

		event := decodeEvent(m.Value)
		slog.Info("catalog change consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("action", event.Action),
			slog.String("isbn", event.ISBN),
		)

		if err := c.store.Dispatch(ctx, bookstate.BooksGet{}); err != nil {
			slog.Warn("books refetch after catalog change failed", slog.Any("error", err))
		}
	}
}

func (c *CatalogConsumer) Close() error {
	return c.reader.Close()
}

func decodeEvent(value []byte) CatalogEvent {
	var event CatalogEvent
	if err := json.Unmarshal(value, &event); err != nil || event.Action == "" {
		event.Action = "unknown"
	}
	return event
}
