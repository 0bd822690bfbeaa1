package cart

import (
	"strings"

	"github.com/example/foodcart/pkg/models"
	"github.com/example/foodcart/pkg/pricing"
)

const defaultSizeID = "default"

// AddRequest is an add-to-cart intent. It is implemented by SimpleItem and
// CustomizedItem.
type AddRequest interface {
	lineItem() models.LineItem
}

// SimpleItem is the shape sent by listing "+1" buttons: a final price and no
// variant structure.
type SimpleItem struct {
	ID             string
	Name           string
	Price          float64
	Quantity       int
	RestaurantID   string
	RestaurantName string
	Image          string
}

func (r SimpleItem) lineItem() models.LineItem {
	return models.LineItem{
		CartEntryID:    entryID(r.ID, nil, nil),
		ProductID:      r.ID,
		Name:           r.Name,
		UnitPrice:      r.Price,
		Quantity:       defaultQuantity(r.Quantity),
		RestaurantID:   r.RestaurantID,
		RestaurantName: r.RestaurantName,
		Image:          r.Image,
	}
}

// CustomizedItem is the shape produced by the size/add-on picker.
type CustomizedItem struct {
	ID             string
	Name           string
	BasePrice      float64
	Quantity       int
	Size           *models.Size
	AddOns         []models.AddOn
	RestaurantID   string
	RestaurantName string
	Image          string
}

func (r CustomizedItem) lineItem() models.LineItem {
	addOns := pricing.NormalizeAddOns(r.AddOns)
	var size *models.Size
	if r.Size != nil {
		s := *r.Size
		size = &s
	}
	return models.LineItem{
		CartEntryID:    entryID(r.ID, size, addOns),
		ProductID:      r.ID,
		Name:           r.Name,
		UnitPrice:      pricing.UnitPrice(r.BasePrice, size, addOns),
		Quantity:       defaultQuantity(r.Quantity),
		SelectedSize:   size,
		SelectedAddOns: addOns,
		RestaurantID:   r.RestaurantID,
		RestaurantName: r.RestaurantName,
		Image:          r.Image,
	}
}

// FromCustomization turns the current picker selection into an add request.
func FromCustomization(c *pricing.Customization) CustomizedItem {
	item := c.Item()
	return CustomizedItem{
		ID:             item.ID,
		Name:           item.Name,
		BasePrice:      item.BasePrice,
		Quantity:       c.Quantity(),
		Size:           c.Size(),
		AddOns:         c.AddOns(),
		RestaurantID:   item.RestaurantID,
		RestaurantName: item.RestaurantName,
		Image:          item.Image,
	}
}

// Options is a changed variant selection for an existing entry.
type Options struct {
	Size   *models.Size
	AddOns []models.AddOn
}

// entryID is the only place a cart entry id is built:
// "<productId>::<sizeId|default>::<sorted add-on ids joined by comma>".
func entryID(productID string, size *models.Size, addOns []models.AddOn) string {
	sizeID := defaultSizeID
	if size != nil {
		sizeID = size.ID
	}
	return productID + "::" + sizeID + "::" + strings.Join(pricing.AddOnIDs(addOns), ",")
}

func defaultQuantity(q int) int {
	if q <= 0 {
		return 1
	}
	return q
}

// ViewModel wraps a Store with the operations the UI works in terms of.
type ViewModel struct {
	store *Store
}

func NewViewModel(store *Store) *ViewModel {
	return &ViewModel{store: store}
}

func (vm *ViewModel) Store() *Store {
	return vm.store
}

func (vm *ViewModel) State() models.CartState {
	return vm.store.State()
}

// AddToCart normalizes req into a line item and adds it with the default policy:
// items from another restaurant are replaced.
func (vm *ViewModel) AddToCart(req AddRequest) {
	vm.store.AddLineItem(req.lineItem())
}

// AddToCartKeepingRestaurants adds req without discarding other restaurants'
// items. It backs the explicit "keep both" choice.
func (vm *ViewModel) AddToCartKeepingRestaurants(req AddRequest) {
	vm.store.AddLineItemAllowingMultipleRestaurants(req.lineItem())
}

// AddToCartReplacingOnConflict replaces the cart only when req's restaurant is
// not in it yet, which is exactly when IsFromDifferentRestaurant reports a
// conflict. Adding to a restaurant already present in a multi-restaurant cart
// keeps every other restaurant.
func (vm *ViewModel) AddToCartReplacingOnConflict(req AddRequest) {
	entry := req.lineItem()
	if vm.IsFromDifferentRestaurant(entry.RestaurantID) {
		vm.store.AddLineItem(entry)
		return
	}
	vm.store.AddLineItemAllowingMultipleRestaurants(entry)
}

// RemoveFromCart removes the entry with id ref, or else the first entry whose
// product id is ref.
func (vm *ViewModel) RemoveFromCart(ref string) {
	if item, ok := vm.resolve(ref); ok {
		vm.store.RemoveLineItem(item.CartEntryID)
	}
}

// UpdateItemQuantity resolves ref like RemoveFromCart.
func (vm *ViewModel) UpdateItemQuantity(ref string, quantity int) {
	item, ok := vm.resolve(ref)
	if !ok {
		return
	}
	if quantity <= 0 {
		vm.store.RemoveLineItem(item.CartEntryID)
		return
	}
	vm.store.SetQuantity(item.CartEntryID, quantity)
}

// DecreaseItem takes one unit off the first entry of productID, removing the
// entry when it reaches zero.
func (vm *ViewModel) DecreaseItem(productID string) {
	item, ok := vm.firstOfProduct(productID)
	if !ok {
		return
	}
	if item.Quantity > 1 {
		vm.store.SetQuantity(item.CartEntryID, item.Quantity-1)
		return
	}
	vm.store.RemoveLineItem(item.CartEntryID)
}

// RemoveAllVariants removes every entry of productID.
func (vm *ViewModel) RemoveAllVariants(productID string) {
	for _, item := range vm.store.State().Items {
		if item.ProductID == productID {
			vm.store.RemoveLineItem(item.CartEntryID)
		}
	}
}

// UpdateItemOptions applies a new size/add-on selection to an existing entry.
// When the selection changes the entry's identity the old entry is replaced and
// merges into any entry that already has the new identity. A nil quantity keeps
// the current one.
func (vm *ViewModel) UpdateItemOptions(cartEntryID string, basePrice float64, opts Options, quantity *int) {
	state := vm.store.State()
	idx := indexOfEntry(state.Items, cartEntryID)
	if idx < 0 {
		return
	}
	existing := state.Items[idx]

	q := existing.Quantity
	if quantity != nil {
		q = *quantity
	}
	if q <= 0 {
		vm.store.RemoveLineItem(cartEntryID)
		return
	}

	req := CustomizedItem{
		ID:             existing.ProductID,
		Name:           existing.Name,
		BasePrice:      basePrice,
		Quantity:       q,
		Size:           opts.Size,
		AddOns:         opts.AddOns,
		RestaurantID:   existing.RestaurantID,
		RestaurantName: existing.RestaurantName,
		Image:          existing.Image,
	}
	entry := req.lineItem()
	if entry.CartEntryID == cartEntryID {
		vm.store.SetQuantity(cartEntryID, q)
		return
	}

	vm.store.RemoveLineItem(cartEntryID)
	// The entry already belonged to the cart, so other restaurants are kept.
	vm.store.AddLineItemAllowingMultipleRestaurants(entry)
}

// GetCartQuantity sums the quantity of every entry of productID.
func (vm *ViewModel) GetCartQuantity(productID string) int {
	var total int
	for _, item := range vm.store.State().Items {
		if item.ProductID == productID {
			total += item.Quantity
		}
	}
	return total
}

// GetItemsGroupedByRestaurant partitions the items by restaurant, most recently
// touched restaurant first. Restaurants missing from the touch order, including
// the restaurant-less group, follow in order of first appearance.
func (vm *ViewModel) GetItemsGroupedByRestaurant() []models.RestaurantGroup {
	state := vm.store.State()

	groups := make(map[string]*models.RestaurantGroup)
	var appearance []string
	for _, item := range state.Items {
		g, ok := groups[item.RestaurantID]
		if !ok {
			g = &models.RestaurantGroup{
				RestaurantID:   item.RestaurantID,
				RestaurantName: item.RestaurantName,
				Items:          []models.LineItem{},
			}
			groups[item.RestaurantID] = g
			appearance = append(appearance, item.RestaurantID)
		}
		g.Items = append(g.Items, item)
		g.Subtotal += item.Subtotal()
	}

	out := make([]models.RestaurantGroup, 0, len(groups))
	for _, id := range state.RestaurantTouchOrder {
		if g, ok := groups[id]; ok {
			out = append(out, *g)
			delete(groups, id)
		}
	}
	for _, id := range appearance {
		if g, ok := groups[id]; ok {
			out = append(out, *g)
		}
	}
	return out
}

// IsFromDifferentRestaurant reports whether adding an item of restaurantID would
// bring a new restaurant into a non-empty cart.
func (vm *ViewModel) IsFromDifferentRestaurant(restaurantID string) bool {
	if restaurantID == "" {
		return false
	}
	state := vm.store.State()
	if state.IsEmpty() {
		return false
	}
	for _, item := range state.Items {
		if item.RestaurantID == restaurantID {
			return false
		}
	}
	return true
}

func (vm *ViewModel) resolve(ref string) (models.LineItem, bool) {
	items := vm.store.State().Items
	if idx := indexOfEntry(items, ref); idx >= 0 {
		return items[idx], true
	}
	return vm.firstOfProduct(ref)
}

func (vm *ViewModel) firstOfProduct(productID string) (models.LineItem, bool) {
	for _, item := range vm.store.State().Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return models.LineItem{}, false
}
