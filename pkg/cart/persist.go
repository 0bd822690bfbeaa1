package cart

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/foodcart/pkg/models"
)

// SnapshotStore is durable key-value storage for encoded carts. LoadSnapshot
// returns nil data and a nil error when the key holds nothing.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, key string, data []byte) error
	LoadSnapshot(ctx context.Context, key string) ([]byte, error)
}

// SnapshotDeleter is optionally implemented by a SnapshotStore. When it is, an
// emptied cart removes its key instead of writing an empty snapshot.
type SnapshotDeleter interface {
	DeleteSnapshot(ctx context.Context, key string) error
}

// Persister writes the full cart after every transition. Write failures are
// logged and reported through OnError; the in-memory state stays authoritative.
type Persister struct {
	store   SnapshotStore
	key     string
	timeout time.Duration
	logger  *zap.Logger

	OnError func(error)
}

func NewPersister(store SnapshotStore, key string, timeout time.Duration, logger *zap.Logger) *Persister {
	return &Persister{
		store:   store,
		key:     key,
		timeout: timeout,
		logger:  logger,
	}
}

// Listen is a Listener.
func (p *Persister) Listen(ev Event) {
	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if deleter, ok := p.store.(SnapshotDeleter); ok && ev.State.IsEmpty() {
		if err := deleter.DeleteSnapshot(ctx, p.key); err != nil {
			p.fail(ev, err)
		}
		return
	}

	data, err := Encode(ev.State)
	if err != nil {
		p.fail(ev, err)
		return
	}
	if err := p.store.SaveSnapshot(ctx, p.key, data); err != nil {
		p.fail(ev, err)
	}
}

func (p *Persister) fail(ev Event, err error) {
	p.logger.Warn("Failed to persist cart snapshot",
		zap.String("key", p.key),
		zap.String("action", string(ev.Action)),
		zap.Error(err))
	if p.OnError != nil {
		p.OnError(err)
	}
}

// Restore loads the snapshot under key. Missing, unreadable or outdated snapshots
// yield an empty cart.
func Restore(ctx context.Context, store SnapshotStore, key string, logger *zap.Logger) models.CartState {
	data, err := store.LoadSnapshot(ctx, key)
	if err != nil {
		logger.Warn("Failed to load cart snapshot", zap.String("key", key), zap.Error(err))
		return models.NewCartState()
	}
	if data == nil {
		return models.NewCartState()
	}

	state, err := Decode(data)
	if err != nil {
		logger.Info("Discarding cart snapshot", zap.String("key", key), zap.Error(err))
	}
	return state
}
