package actors

import (
	"errors"

	"github.com/example/foodcart/pkg/cart"
	"github.com/example/foodcart/pkg/models"
)

var (
	ErrUnknownCommand  = errors.New("unknown cart command")
	ErrInvalidCommand  = errors.New("invalid cart command")
	ErrCartUnavailable = errors.New("cart actor unavailable")
)

// Commands. Each is answered with a *CartReply.

type GetCart struct{}

type AddItem struct {
	Request              cart.AddRequest
	KeepOtherRestaurants bool
}

// RemoveItem removes the entry whose id, or else whose product id, is Ref.
type RemoveItem struct {
	Ref string
}

type UpdateQuantity struct {
	Ref      string
	Quantity int
}

type DecreaseItem struct {
	ProductID string
}

type RemoveAllVariants struct {
	ProductID string
}

type UpdateOptions struct {
	CartEntryID string
	BasePrice   float64
	Options     cart.Options
	Quantity    *int
}

type GetQuantity struct {
	ProductID string
}

type GetGroups struct{}

type CheckConflict struct {
	RestaurantID string
}

type ClearCart struct{}

// CartReply carries the cart after the command was applied. Quantity, Groups and
// Conflict are set only by the queries that compute them.
type CartReply struct {
	State    models.CartState
	Quantity int
	Groups   []models.RestaurantGroup
	Conflict bool
	Err      error
}
