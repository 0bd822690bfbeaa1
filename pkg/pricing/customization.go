package pricing

import (
	"errors"
	"fmt"

	"github.com/example/foodcart/pkg/models"
)

var (
	ErrUnknownSize  = errors.New("unknown size")
	ErrUnknownAddOn = errors.New("unknown add-on")
)

// CatalogItem is the menu entry the customization picker is opened for.
type CatalogItem struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	BasePrice      float64        `json:"basePrice"`
	Sizes          []models.Size  `json:"sizes,omitempty"`
	AddOns         []models.AddOn `json:"addons,omitempty"`
	RestaurantID   string         `json:"restaurantId,omitempty"`
	RestaurantName string         `json:"restaurantName,omitempty"`
	Image          string         `json:"image,omitempty"`
}

func (c CatalogItem) size(id string) (models.Size, bool) {
	for _, s := range c.Sizes {
		if s.ID == id {
			return s, true
		}
	}
	return models.Size{}, false
}

func (c CatalogItem) addOn(id string) (models.AddOn, bool) {
	for _, a := range c.AddOns {
		if a.ID == id {
			return a, true
		}
	}
	return models.AddOn{}, false
}

// Customization holds the selection state of a size/add-on picker for one catalog item.
type Customization struct {
	item     CatalogItem
	size     *models.Size
	selected map[string]struct{}
	quantity int
}

// NewCustomization opens a picker for item. When the item offers sizes the first
// one is preselected.
func NewCustomization(item CatalogItem) *Customization {
	c := &Customization{
		item:     item,
		selected: make(map[string]struct{}),
		quantity: 1,
	}
	if len(item.Sizes) > 0 {
		size := item.Sizes[0]
		c.size = &size
	}
	return c
}

// FromLineItem reopens the picker for an entry that is already in the cart.
func FromLineItem(item CatalogItem, line models.LineItem) (*Customization, error) {
	c := NewCustomization(item)
	c.size = nil
	if line.SelectedSize != nil {
		if err := c.SelectSize(line.SelectedSize.ID); err != nil {
			return nil, err
		}
	}
	for _, addOn := range NormalizeAddOns(line.SelectedAddOns) {
		if err := c.ToggleAddOn(addOn.ID); err != nil {
			return nil, err
		}
	}
	c.SetQuantity(line.Quantity)
	return c, nil
}

func (c *Customization) Item() CatalogItem {
	return c.item
}

func (c *Customization) SelectSize(id string) error {
	size, ok := c.item.size(id)
	if !ok {
		return fmt.Errorf("%w: %q for item %s", ErrUnknownSize, id, c.item.ID)
	}
	c.size = &size
	return nil
}

func (c *Customization) ClearSize() {
	c.size = nil
}

// Size returns the selected size, or nil.
func (c *Customization) Size() *models.Size {
	if c.size == nil {
		return nil
	}
	size := *c.size
	return &size
}

// ToggleAddOn selects the add-on if it is not selected and deselects it otherwise.
func (c *Customization) ToggleAddOn(id string) error {
	if _, ok := c.item.addOn(id); !ok {
		return fmt.Errorf("%w: %q for item %s", ErrUnknownAddOn, id, c.item.ID)
	}
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
	} else {
		c.selected[id] = struct{}{}
	}
	return nil
}

func (c *Customization) IsSelected(id string) bool {
	_, ok := c.selected[id]
	return ok
}

// AddOns returns the selected add-ons ordered by id.
func (c *Customization) AddOns() []models.AddOn {
	addOns := make([]models.AddOn, 0, len(c.selected))
	for id := range c.selected {
		addOn, _ := c.item.addOn(id)
		addOns = append(addOns, addOn)
	}
	return NormalizeAddOns(addOns)
}

// SetQuantity sets the picker quantity; values below one become one.
func (c *Customization) SetQuantity(n int) {
	if n < 1 {
		n = 1
	}
	c.quantity = n
}

func (c *Customization) Quantity() int {
	return c.quantity
}

func (c *Customization) UnitPrice() float64 {
	return UnitPrice(c.item.BasePrice, c.size, c.AddOns())
}

func (c *Customization) LineTotal() float64 {
	return c.UnitPrice() * float64(c.quantity)
}
