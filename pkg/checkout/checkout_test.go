package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/foodcart/pkg/actors"
	"github.com/example/foodcart/pkg/cart"
	"github.com/example/foodcart/pkg/models"
	"github.com/example/foodcart/pkg/repository"
)

type fakeCarts struct {
	vm       *cart.ViewModel
	clears   int
	clearErr error
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{vm: cart.NewViewModel(cart.NewStore())}
}

func (f *fakeCarts) Ask(_ context.Context, _ string, msg interface{}) (*actors.CartReply, error) {
	switch msg.(type) {
	case *actors.GetCart:
	case *actors.ClearCart:
		f.clears++
		if f.clearErr != nil {
			return nil, f.clearErr
		}
		f.vm.Store().Clear()
	default:
		return nil, actors.ErrUnknownCommand
	}
	return &actors.CartReply{State: f.vm.State()}, nil
}

type fakeOrders struct {
	created []*models.Order
	err     error
}

func (f *fakeOrders) CreateOrders(_ context.Context, orders []*models.Order) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, orders...)
	return nil
}

type fakeAudit struct {
	logs []*repository.AuditLog
}

func (f *fakeAudit) CreateAuditLog(_ context.Context, log *repository.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

var captured = PaymentOutcome{Status: PaymentCaptured, Reference: "pay_123"}

func twoRestaurantCart() *fakeCarts {
	carts := newFakeCarts()
	carts.vm.AddToCart(cart.CustomizedItem{
		ID: "P1", Name: "Pizza", BasePrice: 300, Quantity: 1,
		Size:         &models.Size{ID: "L", Name: "Large", PriceDelta: 50},
		AddOns:       []models.AddOn{{ID: "cheese", Name: "Cheese", Price: 30}},
		RestaurantID: "R1", RestaurantName: "Pizzeria",
	})
	carts.vm.AddToCartKeepingRestaurants(cart.SimpleItem{ID: "P2", Name: "Sushi", Price: 160, Quantity: 2, RestaurantID: "R2", RestaurantName: "Sushi Bar"})
	return carts
}

func TestSummarizeGroupsByTouchOrder(t *testing.T) {
	s := Summarize(twoRestaurantCart().vm.State())

	require.Len(t, s.Groups, 2)
	assert.Equal(t, "R2", s.Groups[0].RestaurantID)
	assert.Equal(t, 320.0, s.Groups[0].Subtotal)
	assert.Equal(t, 380.0, s.Groups[1].Subtotal)
	assert.Equal(t, 700.0, s.Total)
	assert.Equal(t, 3, s.ItemCount)
}

func TestPlaceCreatesOneOrderPerRestaurant(t *testing.T) {
	carts := twoRestaurantCart()
	orders := &fakeOrders{}
	audit := &fakeAudit{}
	svc := NewService(carts, orders, audit, zap.NewNop())

	receipt, err := svc.Place(context.Background(), "c1", "u1", captured)
	require.NoError(t, err)

	require.Len(t, receipt.Orders, 2)
	assert.Equal(t, 700.0, receipt.Total)
	assert.Equal(t, orders.created, receipt.Orders)

	pizza := receipt.Orders[1]
	assert.Equal(t, "R1", pizza.RestaurantID)
	assert.Equal(t, "u1", pizza.UserID)
	assert.Equal(t, "pay_123", pizza.PaymentReference)
	assert.Equal(t, models.OrderStatusPlaced, pizza.Status)
	assert.NotEqual(t, receipt.Orders[0].ID, pizza.ID)

	var items []models.OrderItem
	require.NoError(t, json.Unmarshal([]byte(pizza.Items), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "L", items[0].SizeID)
	assert.Equal(t, []string{"cheese"}, items[0].AddOnIDs)
	assert.Equal(t, 380.0, items[0].Price)

	assert.True(t, carts.vm.State().IsEmpty())
	require.Len(t, audit.logs, 1)
	assert.Equal(t, "place_order", audit.logs[0].Action)
}

func TestPlaceRejectsEmptyCart(t *testing.T) {
	orders := &fakeOrders{}
	svc := NewService(newFakeCarts(), orders, nil, zap.NewNop())

	_, err := svc.Place(context.Background(), "c1", "u1", captured)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, orders.created)
}

func TestPlaceRequiresCapturedPayment(t *testing.T) {
	for _, status := range []PaymentStatus{PaymentDeclined, PaymentPending, ""} {
		carts := twoRestaurantCart()
		orders := &fakeOrders{}
		svc := NewService(carts, orders, nil, zap.NewNop())

		_, err := svc.Place(context.Background(), "c1", "u1", PaymentOutcome{Status: status})
		assert.ErrorIs(t, err, ErrPaymentNotCaptured, "status %q", status)
		assert.Empty(t, orders.created)
		assert.Len(t, carts.vm.State().Items, 2)
	}
}

func TestPlaceKeepsCartWhenOrdersFail(t *testing.T) {
	carts := twoRestaurantCart()
	svc := NewService(carts, &fakeOrders{err: errors.New("db down")}, nil, zap.NewNop())

	_, err := svc.Place(context.Background(), "c1", "u1", captured)
	require.Error(t, err)
	assert.Zero(t, carts.clears)
	assert.Len(t, carts.vm.State().Items, 2)
}

func TestPlaceSucceedsWhenClearFails(t *testing.T) {
	carts := twoRestaurantCart()
	carts.clearErr = errors.New("timeout")
	svc := NewService(carts, &fakeOrders{}, nil, zap.NewNop())

	receipt, err := svc.Place(context.Background(), "c1", "u1", captured)
	require.NoError(t, err)
	assert.Len(t, receipt.Orders, 2)
	assert.Equal(t, 1, carts.clears)
}
