package actors

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"github.com/example/foodcart/pkg/cart"
	"github.com/example/foodcart/pkg/config"
)

// Registry maps cart ids to their actors, spawning them on first use.
type Registry struct {
	system    *actor.ActorSystem
	snapshots cart.SnapshotStore
	audit     AuditStore
	cfg       config.CartConfig
	logger    *zap.Logger

	mu    sync.Mutex
	carts map[string]*actor.PID
}

// NewRegistry creates an empty registry. audit may be nil.
func NewRegistry(system *actor.ActorSystem, snapshots cart.SnapshotStore, audit AuditStore, cfg config.CartConfig, logger *zap.Logger) *Registry {
	return &Registry{
		system:    system,
		snapshots: snapshots,
		audit:     audit,
		cfg:       cfg,
		logger:    logger.Named("cart-registry"),
		carts:     make(map[string]*actor.PID),
	}
}

// Ask sends msg to the actor of cartID and waits for its reply, bounded by the
// configured ask timeout and ctx's deadline. A cart whose actor passivated while
// the request was in flight is respawned once.
func (r *Registry) Ask(ctx context.Context, cartID string, msg interface{}) (*CartReply, error) {
	if cartID == "" {
		return nil, fmt.Errorf("%w: empty cart id", ErrInvalidCommand)
	}

	for attempt := 0; attempt < 2; attempt++ {
		timeout, err := r.askTimeout(ctx)
		if err != nil {
			return nil, err
		}

		pid := r.pidFor(cartID)
		res, err := r.system.Root.RequestFuture(pid, msg, timeout).Result()
		if errors.Is(err, actor.ErrDeadLetter) {
			r.forget(cartID, pid)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("cart %s: %w", cartID, err)
		}

		reply, ok := res.(*CartReply)
		if !ok {
			return nil, fmt.Errorf("cart %s: unexpected reply %T", cartID, res)
		}
		if reply.Err != nil {
			return nil, reply.Err
		}
		return reply, nil
	}
	return nil, fmt.Errorf("cart %s: %w", cartID, ErrCartUnavailable)
}

// Active returns the number of carts currently held by an actor.
func (r *Registry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

// Shutdown drains and stops every cart actor.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	pids := make([]*actor.PID, 0, len(r.carts))
	for _, pid := range r.carts {
		pids = append(pids, pid)
	}
	r.carts = make(map[string]*actor.PID)
	r.mu.Unlock()

	for _, pid := range pids {
		if err := r.system.Root.PoisonFuture(pid).Wait(); err != nil {
			r.logger.Warn("Cart actor did not stop cleanly", zap.String("pid", pid.Id), zap.Error(err))
		}
	}
	r.logger.Info("Cart actors stopped", zap.Int("count", len(pids)))
}

func (r *Registry) pidFor(cartID string) *actor.PID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pid, ok := r.carts[cartID]; ok {
		return pid
	}
	props := actor.PropsFromProducer(func() actor.Actor {
		return newCartActor(cartID, r)
	})
	pid := r.system.Root.Spawn(props)
	r.carts[cartID] = pid
	return pid
}

// forget drops cartID only if it still maps to pid.
func (r *Registry) forget(cartID string, pid *actor.PID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.carts[cartID]; ok && current.Id == pid.Id && current.Address == pid.Address {
		delete(r.carts, cartID)
	}
}

func (r *Registry) askTimeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	timeout := r.cfg.AskTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return 0, context.DeadlineExceeded
	}
	return timeout, nil
}
