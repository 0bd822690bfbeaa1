package gateway

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/foodcart/pkg/actors"
	"github.com/example/foodcart/pkg/cart"
	"github.com/example/foodcart/pkg/checkout"
	"github.com/example/foodcart/pkg/models"
)

var errMissingPrice = errors.New("price or basePrice is required")

// addItemRequest accepts both the legacy listing shape (price) and the picker
// shape (basePrice, size, addons).
type addItemRequest struct {
	ID                   string         `json:"id" binding:"required"`
	Name                 string         `json:"name"`
	Price                *float64       `json:"price"`
	BasePrice            *float64       `json:"basePrice"`
	Quantity             int            `json:"quantity"`
	Size                 *models.Size   `json:"size"`
	AddOns               []models.AddOn `json:"addons"`
	RestaurantID         string         `json:"restaurantId"`
	RestaurantName       string         `json:"restaurantName"`
	Image                string         `json:"image"`
	KeepOtherRestaurants bool           `json:"keepOtherRestaurants"`
}

func (r addItemRequest) toAddRequest() (cart.AddRequest, error) {
	if r.BasePrice != nil || r.Size != nil || len(r.AddOns) > 0 {
		base := r.BasePrice
		if base == nil {
			base = r.Price
		}
		if base == nil {
			return nil, errMissingPrice
		}
		return cart.CustomizedItem{
			ID:             r.ID,
			Name:           r.Name,
			BasePrice:      *base,
			Quantity:       r.Quantity,
			Size:           r.Size,
			AddOns:         r.AddOns,
			RestaurantID:   r.RestaurantID,
			RestaurantName: r.RestaurantName,
			Image:          r.Image,
		}, nil
	}
	if r.Price == nil {
		return nil, errMissingPrice
	}
	return cart.SimpleItem{
		ID:             r.ID,
		Name:           r.Name,
		Price:          *r.Price,
		Quantity:       r.Quantity,
		RestaurantID:   r.RestaurantID,
		RestaurantName: r.RestaurantName,
		Image:          r.Image,
	}, nil
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type optionsRequest struct {
	BasePrice *float64       `json:"basePrice" binding:"required"`
	Size      *models.Size   `json:"size"`
	AddOns    []models.AddOn `json:"addons"`
	Quantity  *int           `json:"quantity"`
}

type checkoutRequest struct {
	UserID  string                  `json:"userId" binding:"required"`
	Payment checkout.PaymentOutcome `json:"payment"`
}

func (g *Gateway) createCart(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"cartId": uuid.New().String()})
}

func (g *Gateway) getCart(c *gin.Context) {
	g.reply(c, &actors.GetCart{})
}

func (g *Gateway) clearCart(c *gin.Context) {
	g.reply(c, &actors.ClearCart{})
}

func (g *Gateway) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := req.toAddRequest()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g.reply(c, &actors.AddItem{Request: item, KeepOtherRestaurants: req.KeepOtherRestaurants})
}

func (g *Gateway) removeItem(c *gin.Context) {
	g.reply(c, &actors.RemoveItem{Ref: c.Param("ref")})
}

func (g *Gateway) updateQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g.reply(c, &actors.UpdateQuantity{Ref: c.Param("ref"), Quantity: *req.Quantity})
}

func (g *Gateway) decreaseItem(c *gin.Context) {
	g.reply(c, &actors.DecreaseItem{ProductID: c.Param("ref")})
}

func (g *Gateway) updateOptions(c *gin.Context) {
	var req optionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	g.reply(c, &actors.UpdateOptions{
		CartEntryID: c.Param("ref"),
		BasePrice:   *req.BasePrice,
		Options:     cart.Options{Size: req.Size, AddOns: req.AddOns},
		Quantity:    req.Quantity,
	})
}

func (g *Gateway) removeAllVariants(c *gin.Context) {
	g.reply(c, &actors.RemoveAllVariants{ProductID: c.Param("productId")})
}

func (g *Gateway) getQuantity(c *gin.Context) {
	productID := c.Param("productId")
	reply, ok := g.ask(c, &actors.GetQuantity{ProductID: productID})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": productID, "quantity": reply.Quantity})
}

func (g *Gateway) getGroups(c *gin.Context) {
	reply, ok := g.ask(c, &actors.GetGroups{})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": reply.Groups, "total": reply.State.Total})
}

func (g *Gateway) checkConflict(c *gin.Context) {
	reply, ok := g.ask(c, &actors.CheckConflict{RestaurantID: c.Query("restaurantId")})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"conflict":             reply.Conflict,
		"activeRestaurantId":   reply.State.ActiveRestaurantID,
		"activeRestaurantName": reply.State.ActiveRestaurantName,
	})
}

func (g *Gateway) placeOrder(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt, err := g.checkout.Place(c.Request.Context(), c.Param("cartId"), req.UserID, req.Payment)
	if err != nil {
		g.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, receipt)
}

// reply runs msg against the cart and writes the resulting state.
func (g *Gateway) reply(c *gin.Context, msg interface{}) {
	reply, ok := g.ask(c, msg)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, reply.State)
}

func (g *Gateway) ask(c *gin.Context, msg interface{}) (*actors.CartReply, bool) {
	reply, err := g.carts.Ask(c.Request.Context(), c.Param("cartId"), msg)
	if err != nil {
		g.fail(c, err)
		return nil, false
	}
	return reply, true
}

func (g *Gateway) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, actors.ErrInvalidCommand):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrPaymentNotCaptured):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		g.logger.Error("Cart request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
