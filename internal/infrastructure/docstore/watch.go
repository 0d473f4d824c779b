package docstore

import (
	"context"
	"sync"

	"github.com/orris-inc/harborline/internal/infrastructure/permission"
	"github.com/orris-inc/harborline/internal/infrastructure/pubsub"
)

// Watch delivers the full ordered collection once at start and again after
// every announced change.
type Watch struct {
	sub *pubsub.DocChangeSubscription

	mu     sync.Mutex
	failed bool
	closed bool
}

// Close stops delivery. No callback runs after Close returns.
func (w *Watch) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return w.sub.Close()
}

// Watch subscribes to collection changes and delivers the initial snapshot
// before returning. A failure to read the initial snapshot is returned; later
// failures go to onError, after which no further callbacks run. Access is
// checked again on every reload, so a revoked principal gets a forbidden
// error on the next change.
func (s *Store) Watch(ctx context.Context, principal, collection string, onSnapshot func([]Document), onError func(error)) (*Watch, error) {
	if err := s.authorize(principal, collection, permission.ActionRead); err != nil {
		return nil, err
	}

	w := &Watch{}

	// Listing under w.mu keeps deliveries ordered: a reload that starts later
	// never delivers before one that started earlier.
	reload := func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.failed || w.closed {
			return
		}

		docs, err := s.reload(ctx, principal, collection)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.failed = true
			s.logger.Warnw("watch reload failed", "collection", collection, "principal", principal, "error", err)
			onError(err)
			return
		}
		onSnapshot(docs)
	}

	fail := func(err error) {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.failed || w.closed {
			return
		}
		w.failed = true
		onError(err)
	}

	// Subscribe before the first read so no change between the two is lost.
	sub, err := s.notifier.Subscribe(ctx, collection, func(pubsub.DocChangeEvent) { reload() }, fail)
	if err != nil {
		return nil, err
	}
	w.sub = sub

	w.mu.Lock()
	docs, err := s.list(ctx, collection)
	if err != nil {
		w.failed = true
		w.mu.Unlock()
		_ = sub.Close()
		return nil, err
	}
	onSnapshot(docs)
	w.mu.Unlock()

	return w, nil
}

func (s *Store) reload(ctx context.Context, principal, collection string) ([]Document, error) {
	if err := s.authorize(principal, collection, permission.ActionRead); err != nil {
		return nil, err
	}
	return s.list(ctx, collection)
}
