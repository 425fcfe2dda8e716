package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/AgustinBertolini/e-commerce-daw/auth"
	"github.com/AgustinBertolini/e-commerce-daw/config"
	"github.com/AgustinBertolini/e-commerce-daw/controllers"
	"github.com/AgustinBertolini/e-commerce-daw/logger"
	"github.com/AgustinBertolini/e-commerce-daw/middleware"
	"github.com/AgustinBertolini/e-commerce-daw/monitoring"
	"github.com/AgustinBertolini/e-commerce-daw/services"
	"github.com/AgustinBertolini/e-commerce-daw/session"
)

// Register wires middleware, controllers and routes onto the engine.
func Register(r *gin.Engine, manager *session.Manager, throttle *auth.Throttle, cfg config.Config) {
	authService := services.NewAuthService(throttle, logger.Log)
	catalogService := services.NewCatalogService(logger.Log)
	checkoutService := services.NewCheckoutService(logger.Log)
	favoritesService := services.NewFavoritesService(logger.Log)

	authController := controllers.NewAuthController(authService)
	cartController := controllers.NewCartController(catalogService, checkoutService)
	catalogController := controllers.NewCatalogController(catalogService, favoritesService)

	r.Use(logger.RequestLogger())
	r.Use(monitoring.Middleware())
	r.Use(middleware.SecurityHeaders())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/")
	api.Use(middleware.ResolveSession(manager, int(cfg.SessionTTL.Seconds())))
	{
		// Coarse per-IP limit on credential endpoints; the per-account
		// lockout is enforced separately inside the login flow.
		authLimiter := middleware.NewRateLimiter(rate.Every(time.Minute/30), 10, 5*time.Minute)
		api.POST("/login", authLimiter.Middleware(), authController.Login)
		api.POST("/register", authLimiter.Middleware(), authController.Register)
		api.POST("/logout", authController.Logout)
		api.GET("/session", authController.Session)

		api.GET("/cart", cartController.Get)
		api.POST("/cart/items", cartController.AddItem)
		api.POST("/cart/items/:id/increase", cartController.Increase)
		api.POST("/cart/items/:id/decrease", cartController.Decrease)
		api.DELETE("/cart/items/:id", cartController.RemoveItem)
		api.DELETE("/cart", cartController.Clear)
		api.POST("/checkout", cartController.Checkout)
		api.GET("/purchases", cartController.Purchases)

		api.GET("/products", catalogController.ListProducts)
		api.GET("/products/:id", catalogController.GetProduct)
		api.POST("/products", catalogController.CreateProduct)
		api.PUT("/products/:id", catalogController.UpdateProduct)
		api.DELETE("/products/:id", catalogController.DeleteProduct)
		api.GET("/categories", catalogController.ListCategories)

		api.GET("/favorites", catalogController.ListFavorites)
		api.POST("/favorites", catalogController.AddFavorite)
		api.DELETE("/favorites/:id", catalogController.RemoveFavorite)
	}
}
