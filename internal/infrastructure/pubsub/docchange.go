package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/harborline/internal/shared/goroutine"
	"github.com/orris-inc/harborline/internal/shared/logger"
)

// DocChangeOp is the kind of document mutation announced on the bus
type DocChangeOp string

const (
	DocChangeCreate DocChangeOp = "create"
	DocChangeUpdate DocChangeOp = "update"
	DocChangeDelete DocChangeOp = "delete"
)

// DocChangeEvent announces a mutation in one document collection so every
// watcher of that collection can reload it
type DocChangeEvent struct {
	Collection string      `json:"collection"`
	DocumentID string      `json:"document_id"`
	Op         DocChangeOp `json:"op"`
	Timestamp  int64       `json:"timestamp"`
}

// DocChangeHandler is called in delivery order on the subscription goroutine
type DocChangeHandler func(event DocChangeEvent)

const docChangeChannelPrefix = "harborline:docs:"

// ChannelFor returns the Pub/Sub channel carrying changes of a collection
func ChannelFor(collection string) string {
	return docChangeChannelPrefix + collection
}

// RedisDocChangeBus publishes and subscribes to per-collection change events
// over Redis Pub/Sub
type RedisDocChangeBus struct {
	client *redis.Client
	logger logger.Interface
}

// NewRedisDocChangeBus creates a new Redis-based document change bus
func NewRedisDocChangeBus(client *redis.Client, logger logger.Interface) *RedisDocChangeBus {
	return &RedisDocChangeBus{
		client: client,
		logger: logger,
	}
}

// Publish announces a change to a document in collection
func (b *RedisDocChangeBus) Publish(ctx context.Context, collection, documentID string, op DocChangeOp) error {
	event := DocChangeEvent{
		Collection: collection,
		DocumentID: documentID,
		Op:         op,
		Timestamp:  time.Now().Unix(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, ChannelFor(collection), data).Err(); err != nil {
		b.logger.Errorw("failed to publish document change event",
			"collection", collection,
			"document_id", documentID,
			"op", op,
			"error", err,
		)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debugw("document change event published",
		"collection", collection,
		"document_id", documentID,
		"op", op,
	)
	return nil
}

// DocChangeSubscription is an active subscription to one collection
type DocChangeSubscription struct {
	pubsub *redis.PubSub
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Close stops delivery and waits for the handler loop to exit
func (s *DocChangeSubscription) Close() error {
	var err error
	s.once.Do(func() {
		s.cancel()
		err = s.pubsub.Close()
		<-s.done
	})
	return err
}

// Subscribe registers on the collection channel and returns once Redis has
// confirmed the subscription, so no change published afterwards is missed.
// handler runs sequentially; onClosed is called if the channel ends for any
// reason other than Close or ctx cancellation.
func (b *RedisDocChangeBus) Subscribe(ctx context.Context, collection string, handler DocChangeHandler, onClosed func(error)) (*DocChangeSubscription, error) {
	channel := ChannelFor(collection)
	pubsub := b.client.Subscribe(ctx, channel)

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	b.logger.Debugw("subscribed to document change events", "channel", channel)

	loopCtx, cancel := context.WithCancel(ctx)
	sub := &DocChangeSubscription{
		pubsub: pubsub,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	ch := pubsub.Channel()
	goroutine.SafeGo(b.logger, "pubsub.docchange."+collection, func() {
		defer close(sub.done)

		for {
			select {
			case <-loopCtx.Done():
				return

			case msg, ok := <-ch:
				if !ok {
					if loopCtx.Err() == nil && onClosed != nil {
						b.logger.Warnw("document change channel closed", "channel", channel)
						onClosed(fmt.Errorf("change feed for %s closed", collection))
					}
					return
				}

				var event DocChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Warnw("failed to unmarshal document change event",
						"payload", msg.Payload,
						"error", err,
					)
					continue
				}

				handler(event)
			}
		}
	})

	return sub, nil
}
