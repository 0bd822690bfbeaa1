package gateway

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/foodcart/pkg/models"
	"github.com/example/foodcart/pkg/repository"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

func (g *Gateway) getAuditLog(c *gin.Context) {
	if g.audit == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit log unavailable"})
		return
	}

	limit := int64(defaultAuditLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxAuditLimit)
	}

	cartID := c.Param("cartId")
	logs, err := g.audit.GetAuditLogs(c.Request.Context(), cartID, limit)
	if err != nil {
		g.logger.Error("Failed to read audit log", zap.String("cart_id", cartID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if logs == nil {
		logs = []*repository.AuditLog{}
	}
	c.JSON(http.StatusOK, gin.H{"cartId": cartID, "entries": logs})
}

func (g *Gateway) listUserOrders(c *gin.Context) {
	userID := c.Param("userId")
	orders, err := g.orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		g.logger.Error("Failed to list orders", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
}
