package cart

import (
	"github.com/example/foodcart/pkg/models"
)

type conflictPolicy int

const (
	// replaceOtherRestaurants empties the cart when an entry from a restaurant other
	// than the anchor is added.
	replaceOtherRestaurants conflictPolicy = iota
	keepOtherRestaurants
)

// The functions below are pure: they never modify their input and always return a
// settled state.

func addLineItem(s models.CartState, entry models.LineItem, policy conflictPolicy) models.CartState {
	next := s.Clone()
	if policy == replaceOtherRestaurants &&
		next.ActiveRestaurantID != "" &&
		entry.RestaurantID != "" &&
		entry.RestaurantID != next.ActiveRestaurantID {
		next = models.NewCartState()
	}

	if entry.RestaurantID != "" {
		next.ActiveRestaurantID = entry.RestaurantID
		next.ActiveRestaurantName = entry.RestaurantName
		next.RestaurantTouchOrder = touch(next.RestaurantTouchOrder, entry.RestaurantID)
	}

	if idx := indexOfEntry(next.Items, entry.CartEntryID); idx >= 0 {
		next.Items[idx].Quantity += entry.Quantity
	} else {
		next.Items = append(next.Items, entry.Clone())
	}
	return settle(next)
}

func removeLineItem(s models.CartState, entryID string) (models.CartState, bool) {
	idx := indexOfEntry(s.Items, entryID)
	if idx < 0 {
		return s, false
	}
	next := s.Clone()
	next.Items = append(next.Items[:idx], next.Items[idx+1:]...)
	return settle(next), true
}

func setQuantity(s models.CartState, entryID string, quantity int) (models.CartState, bool) {
	if quantity <= 0 {
		return removeLineItem(s, entryID)
	}
	idx := indexOfEntry(s.Items, entryID)
	if idx < 0 {
		return s, false
	}
	next := s.Clone()
	next.Items[idx].Quantity = quantity
	return settle(next), true
}

// settle re-establishes every derived field of s: non-positive quantities are
// dropped, the total is recomputed, the touch order only names restaurants that
// still have items and the anchor follows the most recently touched restaurant left.
func settle(s models.CartState) models.CartState {
	items := make([]models.LineItem, 0, len(s.Items))
	present := make(map[string]struct{})
	for _, item := range s.Items {
		if item.Quantity <= 0 {
			continue
		}
		items = append(items, item)
		if item.RestaurantID != "" {
			present[item.RestaurantID] = struct{}{}
		}
	}
	s.Items = items
	s.Total = computeTotal(items)

	order := make([]string, 0, len(s.RestaurantTouchOrder))
	seen := make(map[string]struct{}, len(s.RestaurantTouchOrder))
	for _, id := range s.RestaurantTouchOrder {
		if _, ok := present[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		order = append(order, id)
	}
	s.RestaurantTouchOrder = order

	if len(items) == 0 {
		s.ActiveRestaurantID = ""
		s.ActiveRestaurantName = ""
		return s
	}
	if _, ok := present[s.ActiveRestaurantID]; s.ActiveRestaurantID != "" && !ok {
		s.ActiveRestaurantID = ""
		s.ActiveRestaurantName = ""
		if len(order) > 0 {
			s.ActiveRestaurantID = order[0]
			s.ActiveRestaurantName = restaurantName(items, order[0])
		}
	}
	return s
}

func computeTotal(items []models.LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

func touch(order []string, restaurantID string) []string {
	out := make([]string, 0, len(order)+1)
	out = append(out, restaurantID)
	for _, id := range order {
		if id != restaurantID {
			out = append(out, id)
		}
	}
	return out
}

func indexOfEntry(items []models.LineItem, entryID string) int {
	for i, item := range items {
		if item.CartEntryID == entryID {
			return i
		}
	}
	return -1
}

func restaurantName(items []models.LineItem, restaurantID string) string {
	for _, item := range items {
		if item.RestaurantID == restaurantID {
			return item.RestaurantName
		}
	}
	return ""
}
