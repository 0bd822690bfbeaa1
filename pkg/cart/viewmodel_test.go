package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/foodcart/pkg/models"
	"github.com/example/foodcart/pkg/pricing"
)

var (
	medium = &models.Size{ID: "m", Name: "Medium", PriceDelta: 40}
	half   = &models.Size{ID: "h", Name: "Half", PriceDelta: -80}
	cheese = models.AddOn{ID: "a1", Name: "Cheese", Price: 60}
	dip    = models.AddOn{ID: "a2", Name: "Dip", Price: 20}
)

func paneer(qty int, addOns ...models.AddOn) CustomizedItem {
	return CustomizedItem{
		ID:             "P1",
		Name:           "Paneer Tikka",
		BasePrice:      280,
		Quantity:       qty,
		Size:           medium,
		AddOns:         addOns,
		RestaurantID:   "R1",
		RestaurantName: "Spice Route",
	}
}

func TestCheckoutScenario(t *testing.T) {
	vm := NewViewModel(NewStore())

	vm.AddToCart(paneer(1, cheese))
	state := vm.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 380.0, state.Items[0].UnitPrice)
	assert.Equal(t, 380.0, state.Total)
	assert.Equal(t, "P1::m::a1", state.Items[0].CartEntryID)

	vm.AddToCart(paneer(1, cheese))
	state = vm.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 2, state.Items[0].Quantity)
	assert.Equal(t, 760.0, state.Total)

	vm.AddToCart(SimpleItem{ID: "P2", Name: "Dal Makhani", Price: 320, RestaurantID: "R2", RestaurantName: "Dhaba"})
	state = vm.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "P2", state.Items[0].ProductID)
	assert.Equal(t, 1, state.Items[0].Quantity)
	assert.Equal(t, 320.0, state.Total)
	assert.Equal(t, "R2", state.ActiveRestaurantID)

	vm.Store().SetQuantity(state.Items[0].CartEntryID, 0)
	state = vm.State()
	assert.Empty(t, state.Items)
	assert.Equal(t, 0.0, state.Total)
	assert.Empty(t, state.ActiveRestaurantID)
}

func TestHalfSizeReducesPrice(t *testing.T) {
	vm := NewViewModel(NewStore())
	vm.AddToCart(CustomizedItem{ID: "P3", Name: "Biryani", BasePrice: 320, Size: half})

	state := vm.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 240.0, state.Items[0].UnitPrice)
	assert.Equal(t, "P3::h::", state.Items[0].CartEntryID)
}

func TestLegacyEntryID(t *testing.T) {
	vm := NewViewModel(NewStore())
	vm.AddToCart(SimpleItem{ID: "P2", Price: 320, Quantity: 3})

	state := vm.State()
	assert.Equal(t, "P2::default::", state.Items[0].CartEntryID)
	assert.Equal(t, 320.0, state.Items[0].UnitPrice)
	assert.Equal(t, 3, state.Items[0].Quantity)
}

func TestAddOnOrderDoesNotAffectIdentity(t *testing.T) {
	vm := NewViewModel(NewStore())
	vm.AddToCart(paneer(1, cheese, dip))
	vm.AddToCart(paneer(2, dip, cheese, dip))

	state := vm.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "P1::m::a1,a2", state.Items[0].CartEntryID)
	assert.Equal(t, 3, state.Items[0].Quantity)
	assert.Equal(t, 400.0, state.Items[0].UnitPrice)
	assert.Equal(t, 3, vm.GetCartQuantity("P1"))
}

func TestGetCartQuantityAggregatesVariants(t *testing.T) {
	vm := NewViewModel(NewStore())
	vm.AddToCart(paneer(2))
	vm.AddToCart(paneer(1, cheese))
	vm.AddToCart(SimpleItem{ID: "P1", Price: 280, RestaurantID: "R1"})

	assert.Len(t, vm.State().Items, 3)
	assert.Equal(t, 4, vm.GetCartQuantity("P1"))
	assert.Zero(t, vm.GetCartQuantity("nope"))
}

func TestRemoveFromCartResolvesEntryThenProduct(t *testing.T) {
	vm := NewViewModel(NewStore())
	vm.AddToCart(paneer(1))
	vm.AddToCart(paneer(1, cheese))

	vm.RemoveFromCart("P1::m::a1")
	state := vm.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "P1::m::", state.Items[0].CartEntryID)

	vm.RemoveFromCart("P1")
	assert.Empty(t, vm.State().Items)

	vm.RemoveFromCart("P1")
}

func TestUpdateItemQuantity(t *testing.T) {
	vm := NewViewModel(NewStore())
	vm.AddToCart(paneer(1))

	vm.UpdateItemQuantity("P1", 4)
	assert.Equal(t, 4, vm.State().Items[0].Quantity)

	vm.UpdateItemQuantity("P1::m::", 2)
	assert.Equal(t, 2, vm.State().Items[0].Quantity)
	assert.Equal(t, 640.0, vm.State().Total)

	vm.UpdateItemQuantity("P1", -3)
	assert.Empty(t, vm.State().Items)

	vm.UpdateItemQuantity("P1", 5)
	assert.Empty(t, vm.State().Items)
}

func TestDecreaseItem(t *testing.T) {
	vm := NewViewModel(NewStore())
	vm.AddToCart(paneer(2))

	vm.DecreaseItem("P1")
	assert.Equal(t, 1, vm.State().Items[0].Quantity)

	vm.DecreaseItem("P1")
	assert.Empty(t, vm.State().Items)
	assert.Empty(t, vm.State().ActiveRestaurantID)

	vm.DecreaseItem("P1")
}

func TestRemoveAllVariants(t *testing.T) {
	vm := NewViewModel(NewStore())
	vm.AddToCart(paneer(1))
	vm.AddToCart(paneer(1, cheese))
	vm.AddToCart(SimpleItem{ID: "P9", Price: 10, RestaurantID: "R1"})

	vm.RemoveAllVariants("P1")
	state := vm.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "P9", state.Items[0].ProductID)
}

func TestUpdateItemOptionsSameIdentityUpdatesQuantity(t *testing.T) {
	vm := NewViewModel(NewStore())
	vm.AddToCart(paneer(1, cheese))

	qty := 3
	vm.UpdateItemOptions("P1::m::a1", 280, Options{Size: medium, AddOns: []models.AddOn{cheese}}, &qty)

	state := vm.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 3, state.Items[0].Quantity)
	assert.Equal(t, 1140.0, state.Total)
}

func TestUpdateItemOptionsReclassifies(t *testing.T) {
	vm := NewViewModel(NewStore())
	vm.AddToCart(paneer(2))

	vm.UpdateItemOptions("P1::m::", 280, Options{Size: half, AddOns: []models.AddOn{dip}}, nil)

	state := vm.State()
	require.Len(t, state.Items, 1)
	item := state.Items[0]
	assert.Equal(t, "P1::h::a2", item.CartEntryID)
	assert.Equal(t, 220.0, item.UnitPrice)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "Paneer Tikka", item.Name)
	assert.Equal(t, "R1", item.RestaurantID)
	assert.Equal(t, 440.0, state.Total)
}

func TestUpdateItemOptionsMergesIntoExistingIdentity(t *testing.T) {
	vm := NewViewModel(NewStore())
	vm.AddToCart(paneer(2))
	vm.AddToCart(paneer(1, cheese))

	vm.UpdateItemOptions("P1::m::", 280, Options{Size: medium, AddOns: []models.AddOn{cheese}}, nil)

	state := vm.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "P1::m::a1", state.Items[0].CartEntryID)
	assert.Equal(t, 3, state.Items[0].Quantity)
}

func TestUpdateItemOptionsKeepsOtherRestaurants(t *testing.T) {
	vm := NewViewModel(NewStore())
	vm.AddToCart(paneer(1))
	vm.AddToCartKeepingRestaurants(SimpleItem{ID: "P2", Price: 320, RestaurantID: "R2"})

	vm.UpdateItemOptions("P1::m::", 280, Options{Size: half}, nil)

	state := vm.State()
	assert.Len(t, state.Items, 2)
	assert.Equal(t, []string{"R1", "R2"}, state.RestaurantTouchOrder)
}

func TestUpdateItemOptionsUnknownEntry(t *testing.T) {
	vm := NewViewModel(NewStore())
	vm.AddToCart(paneer(1))
	vm.UpdateItemOptions("nope", 280, Options{}, nil)
	assert.Len(t, vm.State().Items, 1)
}

func TestGroupedByRestaurantFollowsTouchOrder(t *testing.T) {
	vm := NewViewModel(NewStore())
	vm.AddToCart(SimpleItem{ID: "A", Price: 100, RestaurantID: "R1", RestaurantName: "One"})
	vm.AddToCartKeepingRestaurants(SimpleItem{ID: "B", Price: 50, Quantity: 2, RestaurantID: "R2", RestaurantName: "Two"})
	vm.AddToCartKeepingRestaurants(SimpleItem{ID: "C", Price: 30, RestaurantID: "R1", RestaurantName: "One"})
	vm.AddToCart(SimpleItem{ID: "ride", Price: 75})

	groups := vm.GetItemsGroupedByRestaurant()
	require.Len(t, groups, 3)

	assert.Equal(t, "R1", groups[0].RestaurantID)
	assert.Equal(t, "One", groups[0].RestaurantName)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, 130.0, groups[0].Subtotal)

	assert.Equal(t, "R2", groups[1].RestaurantID)
	assert.Equal(t, 100.0, groups[1].Subtotal)

	assert.Empty(t, groups[2].RestaurantID)
	assert.Equal(t, 75.0, groups[2].Subtotal)
}

func TestGroupedByRestaurantAfterReplace(t *testing.T) {
	vm := NewViewModel(NewStore())
	vm.AddToCart(SimpleItem{ID: "A", Price: 100, RestaurantID: "R1"})
	vm.AddToCart(SimpleItem{ID: "B", Price: 50, RestaurantID: "R2"})
	vm.AddToCart(SimpleItem{ID: "C", Price: 30, RestaurantID: "R1"})

	groups := vm.GetItemsGroupedByRestaurant()
	require.Len(t, groups, 1)
	assert.Equal(t, "R1", groups[0].RestaurantID)
	assert.Equal(t, "C", groups[0].Items[0].ProductID)
}

func TestGroupedByRestaurantWithStaleTouchOrder(t *testing.T) {
	store := NewStore()
	store.Hydrate(models.CartState{
		Items: []models.LineItem{
			line("x", "X", "R3", 10, 1),
			line("y", "Y", "R4", 20, 1),
		},
		RestaurantTouchOrder: []string{"R4"},
	})

	groups := NewViewModel(store).GetItemsGroupedByRestaurant()
	require.Len(t, groups, 2)
	assert.Equal(t, "R4", groups[0].RestaurantID)
	assert.Equal(t, "R3", groups[1].RestaurantID)
}

func TestIsFromDifferentRestaurant(t *testing.T) {
	vm := NewViewModel(NewStore())
	assert.False(t, vm.IsFromDifferentRestaurant("R1"), "empty cart")

	vm.AddToCart(paneer(1))
	assert.False(t, vm.IsFromDifferentRestaurant("R1"))
	assert.False(t, vm.IsFromDifferentRestaurant(""))
	assert.True(t, vm.IsFromDifferentRestaurant("R2"))
}

func TestAddToCartReplacingOnConflict(t *testing.T) {
	vm := NewViewModel(NewStore())
	vm.AddToCart(SimpleItem{ID: "A", Price: 100, RestaurantID: "R1"})
	vm.AddToCartKeepingRestaurants(SimpleItem{ID: "B", Price: 50, RestaurantID: "R2"})
	require.Equal(t, "R2", vm.State().ActiveRestaurantID)

	// R1 is already in the cart, so no prompt is shown and nothing is dropped.
	require.False(t, vm.IsFromDifferentRestaurant("R1"))
	vm.AddToCartReplacingOnConflict(SimpleItem{ID: "C", Price: 30, RestaurantID: "R1"})

	state := vm.State()
	assert.Len(t, state.Items, 3)
	assert.Equal(t, 180.0, state.Total)
	assert.Equal(t, "R1", state.ActiveRestaurantID)
	assert.Equal(t, []string{"R1", "R2"}, state.RestaurantTouchOrder)

	require.True(t, vm.IsFromDifferentRestaurant("R3"))
	vm.AddToCartReplacingOnConflict(SimpleItem{ID: "D", Price: 10, RestaurantID: "R3"})
	state = vm.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "R3", state.ActiveRestaurantID)
}

func TestFromCustomization(t *testing.T) {
	picker := pricing.NewCustomization(pricing.CatalogItem{
		ID:           "P1",
		Name:         "Paneer Tikka",
		BasePrice:    280,
		Sizes:        []models.Size{*half, *medium},
		AddOns:       []models.AddOn{cheese, dip},
		RestaurantID: "R1",
	})
	require.NoError(t, picker.SelectSize("m"))
	require.NoError(t, picker.ToggleAddOn("a1"))
	picker.SetQuantity(2)

	vm := NewViewModel(NewStore())
	vm.AddToCart(FromCustomization(picker))

	state := vm.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, picker.UnitPrice(), state.Items[0].UnitPrice)
	assert.Equal(t, picker.LineTotal(), state.Total)
	assert.Equal(t, "P1::m::a1", state.Items[0].CartEntryID)
}
