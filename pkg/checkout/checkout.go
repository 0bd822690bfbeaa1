// Package checkout turns a cart into persisted orders, one per restaurant.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/example/foodcart/pkg/actors"
	"github.com/example/foodcart/pkg/cart"
	"github.com/example/foodcart/pkg/metrics"
	"github.com/example/foodcart/pkg/models"
	"github.com/example/foodcart/pkg/pricing"
	"github.com/example/foodcart/pkg/repository"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrPaymentNotCaptured = errors.New("payment was not captured")
)

type PaymentStatus string

const (
	PaymentCaptured PaymentStatus = "captured"
	PaymentDeclined PaymentStatus = "declined"
	PaymentPending  PaymentStatus = "pending"
)

// PaymentOutcome is the result reported by the external payment flow.
type PaymentOutcome struct {
	Status    PaymentStatus `json:"status"`
	Reference string        `json:"reference"`
}

// Carts is the slice of actors.Registry checkout needs.
type Carts interface {
	Ask(ctx context.Context, cartID string, msg interface{}) (*actors.CartReply, error)
}

type OrderStore interface {
	CreateOrders(ctx context.Context, orders []*models.Order) error
}

type AuditStore interface {
	CreateAuditLog(ctx context.Context, log *repository.AuditLog) error
}

// Summary is the cart as shown on the checkout page.
type Summary struct {
	Groups    []models.RestaurantGroup `json:"groups"`
	Total     float64                  `json:"total"`
	ItemCount int                      `json:"itemCount"`
}

// Summarize groups state by restaurant in the same order the cart shows them.
func Summarize(state models.CartState) Summary {
	store := cart.NewStore()
	store.Hydrate(state)
	vm := cart.NewViewModel(store)

	s := Summary{Groups: vm.GetItemsGroupedByRestaurant()}
	for _, item := range store.State().Items {
		s.ItemCount += item.Quantity
		s.Total += item.Subtotal()
	}
	return s
}

// Receipt lists the orders created by a successful checkout.
type Receipt struct {
	CartID string          `json:"cartId"`
	Orders []*models.Order `json:"orders"`
	Total  float64         `json:"total"`
}

type Service struct {
	carts  Carts
	orders OrderStore
	audit  AuditStore
	logger *zap.Logger
}

// NewService wires checkout to its collaborators. audit may be nil.
func NewService(carts Carts, orders OrderStore, audit AuditStore, logger *zap.Logger) *Service {
	return &Service{
		carts:  carts,
		orders: orders,
		audit:  audit,
		logger: logger.Named("checkout"),
	}
}

// Place converts the cart into one order per restaurant and then empties it. The
// cart is left untouched when any order fails to persist.
func (s *Service) Place(ctx context.Context, cartID, userID string, payment PaymentOutcome) (*Receipt, error) {
	reply, err := s.carts.Ask(ctx, cartID, &actors.GetCart{})
	if err != nil {
		metrics.RecordCheckout("error")
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if reply.State.IsEmpty() {
		metrics.RecordCheckout("empty_cart")
		return nil, ErrEmptyCart
	}
	if payment.Status != PaymentCaptured {
		metrics.RecordCheckout("payment_not_captured")
		return nil, fmt.Errorf("%w: status %q", ErrPaymentNotCaptured, payment.Status)
	}

	summary := Summarize(reply.State)
	orders := make([]*models.Order, 0, len(summary.Groups))
	for _, group := range summary.Groups {
		order, err := newOrder(cartID, userID, payment.Reference, group)
		if err != nil {
			metrics.RecordCheckout("error")
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := s.orders.CreateOrders(ctx, orders); err != nil {
		metrics.RecordCheckout("error")
		s.logger.Error("Failed to create orders", zap.String("cart_id", cartID), zap.Error(err))
		return nil, fmt.Errorf("failed to create orders: %w", err)
	}

	s.recordAudit(ctx, cartID, userID, orders, summary.Total)

	if _, err := s.carts.Ask(ctx, cartID, &actors.ClearCart{}); err != nil {
		s.logger.Warn("Orders placed but cart not cleared", zap.String("cart_id", cartID), zap.Error(err))
	}

	metrics.RecordCheckout("placed")
	s.logger.Info("Checkout completed",
		zap.String("cart_id", cartID),
		zap.String("user_id", userID),
		zap.Int("orders", len(orders)),
		zap.Float64("total", summary.Total))

	return &Receipt{CartID: cartID, Orders: orders, Total: summary.Total}, nil
}

func newOrder(cartID, userID, paymentRef string, group models.RestaurantGroup) (*models.Order, error) {
	items := make([]models.OrderItem, len(group.Items))
	for i, item := range group.Items {
		items[i] = models.OrderItem{
			CartEntryID: item.CartEntryID,
			ProductID:   item.ProductID,
			ProductName: item.Name,
			AddOnIDs:    pricing.AddOnIDs(item.SelectedAddOns),
			Quantity:    item.Quantity,
			Price:       item.UnitPrice,
		}
		if item.SelectedSize != nil {
			items[i].SizeID = item.SelectedSize.ID
		}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize items: %w", err)
	}

	return &models.Order{
		ID:               uuid.New().String(),
		CartID:           cartID,
		UserID:           userID,
		RestaurantID:     group.RestaurantID,
		RestaurantName:   group.RestaurantName,
		Items:            string(itemsJSON),
		TotalAmount:      group.Subtotal,
		PaymentReference: paymentRef,
		Status:           models.OrderStatusPlaced,
	}, nil
}

func (s *Service) recordAudit(ctx context.Context, cartID, userID string, orders []*models.Order, total float64) {
	if s.audit == nil {
		return
	}
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	err := s.audit.CreateAuditLog(ctx, &repository.AuditLog{
		Service:  "checkout",
		Action:   "place_order",
		EntityID: cartID,
		Data:     bson.M{"user_id": userID, "order_ids": ids, "total_amount": total},
	})
	if err != nil {
		s.logger.Warn("Failed to write checkout audit log", zap.String("cart_id", cartID), zap.Error(err))
	}
}
