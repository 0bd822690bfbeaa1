package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/example/foodcart/pkg/actors"
	"github.com/example/foodcart/pkg/checkout"
	"github.com/example/foodcart/pkg/config"
	"github.com/example/foodcart/pkg/metrics"
	"github.com/example/foodcart/pkg/models"
	"github.com/example/foodcart/pkg/repository"
)

// CartService is implemented by actors.Registry.
type CartService interface {
	Ask(ctx context.Context, cartID string, msg interface{}) (*actors.CartReply, error)
}

// CheckoutService is implemented by checkout.Service.
type CheckoutService interface {
	Place(ctx context.Context, cartID, userID string, payment checkout.PaymentOutcome) (*checkout.Receipt, error)
}

// AuditReader is implemented by repository.MongoRepository.
type AuditReader interface {
	GetAuditLogs(ctx context.Context, entityID string, limit int64) ([]*repository.AuditLog, error)
}

// OrderReader is implemented by repository.OrderRepository.
type OrderReader interface {
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
}

type Gateway struct {
	config   *config.Config
	carts    CartService
	checkout CheckoutService
	audit    AuditReader
	orders   OrderReader
	logger   *zap.Logger
	router   *gin.Engine
	server   *http.Server
}

// NewGateway builds the router. audit may be nil, in which case the audit route
// answers 503.
func NewGateway(cfg *config.Config, logger *zap.Logger, carts CartService, co CheckoutService, audit AuditReader, orders OrderReader) *Gateway {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware(logger))
	router.Use(metrics.GinMiddleware())
	if len(cfg.Gateway.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: cfg.Gateway.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	return &Gateway{
		config:   cfg,
		carts:    carts,
		checkout: co,
		audit:    audit,
		orders:   orders,
		logger:   logger,
		router:   router,
	}
}

func (g *Gateway) SetupRoutes() {
	g.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	g.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := g.router.Group("/api/v1")
	{
		carts := v1.Group("/carts")
		{
			carts.POST("", g.createCart)
			carts.GET("/:cartId", g.getCart)
			carts.DELETE("/:cartId", g.clearCart)

			carts.POST("/:cartId/items", g.addItem)
			carts.DELETE("/:cartId/items/:ref", g.removeItem)
			carts.PUT("/:cartId/items/:ref/quantity", g.updateQuantity)
			carts.POST("/:cartId/items/:ref/decrease", g.decreaseItem)
			carts.PUT("/:cartId/items/:ref/options", g.updateOptions)
			carts.DELETE("/:cartId/products/:productId", g.removeAllVariants)

			carts.GET("/:cartId/quantity/:productId", g.getQuantity)
			carts.GET("/:cartId/groups", g.getGroups)
			carts.GET("/:cartId/conflict", g.checkConflict)
			carts.POST("/:cartId/checkout", g.placeOrder)
			carts.GET("/:cartId/audit", g.getAuditLog)
		}

		v1.GET("/users/:userId/orders", g.listUserOrders)
	}

	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Handler exposes the router, mainly for tests.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

// Start serves until Shutdown is called.
func (g *Gateway) Start() error {
	addr := fmt.Sprintf("%s:%d", g.config.Gateway.Host, g.config.Gateway.Port)
	g.server = &http.Server{
		Addr:              addr,
		Handler:           g.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.logger.Info("Gateway starting", zap.String("address", addr))

	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	return g.server.Shutdown(ctx)
}

func loggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		logger.Info("HTTP request", fields...)
	}
}
