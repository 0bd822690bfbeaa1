package models

// Size is a selectable portion size of a catalog item. PriceDelta may be negative.
type Size struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	PriceDelta float64 `json:"priceDelta"`
}

// AddOn is an optional extra that can be selected on top of a catalog item.
type AddOn struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// LineItem is one product configuration in a cart. CartEntryID, not ProductID,
// is the identity key.
type LineItem struct {
	CartEntryID    string  `json:"cartEntryId"`
	ProductID      string  `json:"productId"`
	Name           string  `json:"name"`
	UnitPrice      float64 `json:"unitPrice"`
	Quantity       int     `json:"quantity"`
	SelectedSize   *Size   `json:"selectedSize,omitempty"`
	SelectedAddOns []AddOn `json:"selectedAddOns,omitempty"`
	RestaurantID   string  `json:"restaurantId,omitempty"`
	RestaurantName string  `json:"restaurantName,omitempty"`
	Image          string  `json:"image,omitempty"`
}

func (i LineItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Clone returns a copy that shares no slices or pointers with i.
func (i LineItem) Clone() LineItem {
	c := i
	if i.SelectedSize != nil {
		size := *i.SelectedSize
		c.SelectedSize = &size
	}
	if i.SelectedAddOns != nil {
		c.SelectedAddOns = append([]AddOn(nil), i.SelectedAddOns...)
	}
	return c
}

// CartState is the aggregate root of a cart.
type CartState struct {
	Items                []LineItem `json:"items"`
	Total                float64    `json:"total"`
	ActiveRestaurantID   string     `json:"activeRestaurantId,omitempty"`
	ActiveRestaurantName string     `json:"activeRestaurantName,omitempty"`
	RestaurantTouchOrder []string   `json:"restaurantTouchOrder"`
}

func NewCartState() CartState {
	return CartState{
		Items:                []LineItem{},
		RestaurantTouchOrder: []string{},
	}
}

func (s CartState) IsEmpty() bool {
	return len(s.Items) == 0
}

func (s CartState) Clone() CartState {
	c := CartState{
		Items:                make([]LineItem, len(s.Items)),
		Total:                s.Total,
		ActiveRestaurantID:   s.ActiveRestaurantID,
		ActiveRestaurantName: s.ActiveRestaurantName,
		RestaurantTouchOrder: append([]string{}, s.RestaurantTouchOrder...),
	}
	for i, item := range s.Items {
		c.Items[i] = item.Clone()
	}
	return c
}

// RestaurantGroup is the checkout view of the items belonging to one restaurant.
type RestaurantGroup struct {
	RestaurantID   string     `json:"restaurantId"`
	RestaurantName string     `json:"restaurantName"`
	Items          []LineItem `json:"items"`
	Subtotal       float64    `json:"subtotal"`
}
