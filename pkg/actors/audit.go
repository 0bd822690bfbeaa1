package actors

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/example/foodcart/pkg/cart"
	"github.com/example/foodcart/pkg/repository"
)

const auditService = "cart"

// AuditStore receives one entry per cart mutation.
type AuditStore interface {
	CreateAuditLog(ctx context.Context, log *repository.AuditLog) error
}

type auditor struct {
	cartID  string
	store   AuditStore
	timeout time.Duration
	logger  *zap.Logger
}

// listen is a cart.Listener. Hydration only replays stored state and is not
// recorded.
func (a *auditor) listen(ev cart.Event) {
	if ev.Action == cart.ActionHydrate {
		return
	}

	ctx := context.Background()
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	err := a.store.CreateAuditLog(ctx, &repository.AuditLog{
		Service:  auditService,
		Action:   string(ev.Action),
		EntityID: a.cartID,
		Data: bson.M{
			"entry_id":          ev.EntryID,
			"item_count":        len(ev.State.Items),
			"total":             ev.State.Total,
			"active_restaurant": ev.State.ActiveRestaurantID,
		},
	})
	if err != nil {
		a.logger.Warn("Failed to write cart audit log",
			zap.String("cart_id", a.cartID),
			zap.String("action", string(ev.Action)),
			zap.Error(err))
	}
}
