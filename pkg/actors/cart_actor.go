package actors

import (
	"context"
	"fmt"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"

	"github.com/example/foodcart/pkg/cart"
	"github.com/example/foodcart/pkg/metrics"
)

// CartActor owns the Store of one cart. Every read and write of that cart goes
// through its mailbox.
type CartActor struct {
	cartID   string
	registry *Registry
	logger   *zap.Logger

	vm          *cart.ViewModel
	unsubscribe []func()
}

func newCartActor(cartID string, registry *Registry) *CartActor {
	return &CartActor{
		cartID:   cartID,
		registry: registry,
		logger:   registry.logger.With(zap.String("cart_id", cartID)),
	}
}

func (a *CartActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		a.start(ctx)

	case *actor.ReceiveTimeout:
		a.logger.Debug("Cart idle, passivating")
		a.registry.forget(a.cartID, ctx.Self())
		ctx.Stop(ctx.Self())

	case *actor.Stopped:
		for _, unsubscribe := range a.unsubscribe {
			unsubscribe()
		}
		metrics.CartActorStopped()
		a.logger.Debug("Cart actor stopped")

	case *actor.Stopping, *actor.Restarting:

	default:
		reply := a.handle(msg)
		if ctx.Sender() != nil {
			ctx.Respond(reply)
		} else if reply.Err != nil {
			a.logger.Warn("Dropped cart command", zap.Error(reply.Err))
		}
	}
}

func (a *CartActor) start(ctx actor.Context) {
	cfg := a.registry.cfg
	store := cart.NewStore()
	a.vm = cart.NewViewModel(store)

	loadCtx, cancel := context.Background(), context.CancelFunc(func() {})
	if cfg.PersistTimeout > 0 {
		loadCtx, cancel = context.WithTimeout(loadCtx, cfg.PersistTimeout)
	}
	state := cart.Restore(loadCtx, a.registry.snapshots, cfg.SnapshotKey(a.cartID), a.logger)
	cancel()
	if !state.IsEmpty() {
		store.Hydrate(state)
	}

	persister := cart.NewPersister(a.registry.snapshots, cfg.SnapshotKey(a.cartID), cfg.PersistTimeout, a.logger)
	persister.OnError = func(error) { metrics.RecordPersistFailure() }
	a.unsubscribe = append(a.unsubscribe,
		store.Subscribe(persister.Listen),
		store.Subscribe(func(ev cart.Event) { metrics.RecordCartMutation(string(ev.Action)) }),
	)
	if a.registry.audit != nil {
		au := &auditor{cartID: a.cartID, store: a.registry.audit, timeout: cfg.PersistTimeout, logger: a.logger}
		a.unsubscribe = append(a.unsubscribe, store.Subscribe(au.listen))
	}

	if cfg.IdleTimeout > 0 {
		ctx.SetReceiveTimeout(cfg.IdleTimeout)
	}
	metrics.CartActorStarted()
	a.logger.Debug("Cart actor started", zap.Int("items", len(state.Items)))
}

func (a *CartActor) handle(msg interface{}) *CartReply {
	reply := &CartReply{}
	switch m := msg.(type) {
	case *GetCart:

	case *AddItem:
		if m.Request == nil {
			reply.Err = fmt.Errorf("%w: add without item", ErrInvalidCommand)
			break
		}
		if m.KeepOtherRestaurants {
			a.vm.AddToCartKeepingRestaurants(m.Request)
		} else {
			a.vm.AddToCartReplacingOnConflict(m.Request)
		}

	case *RemoveItem:
		a.vm.RemoveFromCart(m.Ref)

	case *UpdateQuantity:
		a.vm.UpdateItemQuantity(m.Ref, m.Quantity)

	case *DecreaseItem:
		a.vm.DecreaseItem(m.ProductID)

	case *RemoveAllVariants:
		a.vm.RemoveAllVariants(m.ProductID)

	case *UpdateOptions:
		a.vm.UpdateItemOptions(m.CartEntryID, m.BasePrice, m.Options, m.Quantity)

	case *GetQuantity:
		reply.Quantity = a.vm.GetCartQuantity(m.ProductID)

	case *GetGroups:
		reply.Groups = a.vm.GetItemsGroupedByRestaurant()

	case *CheckConflict:
		reply.Conflict = a.vm.IsFromDifferentRestaurant(m.RestaurantID)

	case *ClearCart:
		a.vm.Store().Clear()

	default:
		reply.Err = fmt.Errorf("%w: %T", ErrUnknownCommand, msg)
	}
	reply.State = a.vm.State()
	return reply
}
