// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/openmall/shop-backend/internal/config"
	"github.com/openmall/shop-backend/internal/handlers"
	"github.com/openmall/shop-backend/internal/middleware"
	"github.com/openmall/shop-backend/internal/services"
	"github.com/openmall/shop-backend/internal/utils"
)

// Initialize wires services, handlers and routes. The db handle is
// constructed once in main and injected here; services never reach for a
// process-global connection.
func Initialize(db *gorm.DB, cfg *config.Config, publisher services.OrderEventPublisher) *gin.Engine {
	// Initialize services
	inventoryService := services.NewInventoryService(db)
	cartService := services.NewCartService(db)
	authService := services.NewAuthService(db, cfg)
	addressService := services.NewAddressService(db)
	productService := services.NewProductService(db, inventoryService)
	orderService := services.NewOrderService(db, inventoryService, cartService, publisher)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	addressHandler := handlers.NewAddressHandler(addressService)
	orderHandler := handlers.NewOrderHandler(orderService)
	adminHandler := handlers.NewAdminHandler(productService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.PrometheusMiddleware())
	r.Use(middleware.GeneralRateLimit())

	// Health check and metrics
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Catalog (public)
		v1.GET("/products", productHandler.ListProducts)
		v1.GET("/products/:id", productHandler.GetProduct)
		v1.GET("/categories", productHandler.ListCategories)

		// Cart
		cart := v1.Group("/cart")
		cart.Use(middleware.AuthRequired())
		{
			cart.GET("", cartHandler.List)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:id", cartHandler.UpdateItem)
			cart.DELETE("/items/:id", cartHandler.RemoveItem)
			cart.DELETE("", cartHandler.Clear)
		}

		// Addresses
		addresses := v1.Group("/addresses")
		addresses.Use(middleware.AuthRequired())
		{
			addresses.GET("", addressHandler.List)
			addresses.POST("", addressHandler.Create)
			addresses.PUT("/:id", addressHandler.Update)
			addresses.POST("/:id/default", addressHandler.SetDefault)
			addresses.DELETE("/:id", addressHandler.Delete)
		}

		// Orders
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", middleware.CheckoutRateLimit(), orderHandler.CreateOrder)
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/pay", orderHandler.PayOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
		}

		// Admin
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.POST("/products", adminHandler.CreateProduct)
			admin.PUT("/products/:id", adminHandler.UpdateProduct)
			admin.PUT("/products/:id/stock", adminHandler.SetStock)
			admin.DELETE("/products/:id", adminHandler.DeleteProduct)
			admin.POST("/categories", adminHandler.CreateCategory)
			admin.DELETE("/categories/:id", adminHandler.DeleteCategory)
			admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)
		}
	}

	return r
}
