// Package pricing derives unit prices for catalog items configured with a size and
// a set of add-ons.
package pricing

import (
	"sort"

	"github.com/example/foodcart/pkg/models"
)

// UnitPrice returns basePrice plus the size delta plus every add-on price. Add-ons
// are de-duplicated by id before summing. The result is not clamped; a negative
// price is passed through to the caller.
func UnitPrice(basePrice float64, size *models.Size, addOns []models.AddOn) float64 {
	price := basePrice
	if size != nil {
		price += size.PriceDelta
	}
	for _, addOn := range NormalizeAddOns(addOns) {
		price += addOn.Price
	}
	return price
}

// NormalizeAddOns drops repeated ids (the first occurrence wins) and orders the
// result by id. It returns nil for an empty selection.
func NormalizeAddOns(addOns []models.AddOn) []models.AddOn {
	if len(addOns) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(addOns))
	out := make([]models.AddOn, 0, len(addOns))
	for _, addOn := range addOns {
		if _, ok := seen[addOn.ID]; ok {
			continue
		}
		seen[addOn.ID] = struct{}{}
		out = append(out, addOn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddOnIDs returns the sorted, de-duplicated ids of addOns.
func AddOnIDs(addOns []models.AddOn) []string {
	normalized := NormalizeAddOns(addOns)
	ids := make([]string, len(normalized))
	for i, addOn := range normalized {
		ids[i] = addOn.ID
	}
	return ids
}
