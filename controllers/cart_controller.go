package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AgustinBertolini/e-commerce-daw/apperrors"
	"github.com/AgustinBertolini/e-commerce-daw/middleware"
	"github.com/AgustinBertolini/e-commerce-daw/monitoring"
	"github.com/AgustinBertolini/e-commerce-daw/services"
)

type CartController struct {
	catalog  *services.CatalogService
	checkout *services.CheckoutService
}

func NewCartController(catalog *services.CatalogService, checkout *services.CheckoutService) *CartController {
	return &CartController{catalog: catalog, checkout: checkout}
}

// Get returns the cart lines and the recomputed total.
func (ct *CartController) Get(c *gin.Context) {
	entry := middleware.Entry(c)
	c.JSON(http.StatusOK, gin.H{
		"items": entry.Cart.Items(),
		"total": entry.Cart.Total(),
	})
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// AddItem fetches the product snapshot from the backend and merges it
// into the cart, stock permitting.
func (ct *CartController) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	entry := middleware.Entry(c)
	product, err := ct.catalog.GetProduct(c.Request.Context(), entry.API, req.ProductID)
	if err != nil {
		apperrors.HandleGin(c, err)
		return
	}

	if err := entry.Cart.Add(product, req.Quantity); err != nil {
		apperrors.HandleGin(c, err)
		return
	}

	monitoring.CartMutationsTotal.WithLabelValues("add").Inc()
	c.JSON(http.StatusOK, gin.H{"items": entry.Cart.Items(), "total": entry.Cart.Total()})
}

// Increase bumps a line's quantity by one.
func (ct *CartController) Increase(c *gin.Context) {
	entry := middleware.Entry(c)
	if err := entry.Cart.IncreaseQuantity(c.Param("id")); err != nil {
		apperrors.HandleGin(c, err)
		return
	}
	monitoring.CartMutationsTotal.WithLabelValues("increase").Inc()
	c.JSON(http.StatusOK, gin.H{"items": entry.Cart.Items(), "total": entry.Cart.Total()})
}

// Decrease lowers a line's quantity by one, dropping the line at zero.
func (ct *CartController) Decrease(c *gin.Context) {
	entry := middleware.Entry(c)
	if err := entry.Cart.DecreaseQuantity(c.Param("id")); err != nil {
		apperrors.HandleGin(c, err)
		return
	}
	monitoring.CartMutationsTotal.WithLabelValues("decrease").Inc()
	c.JSON(http.StatusOK, gin.H{"items": entry.Cart.Items(), "total": entry.Cart.Total()})
}

// RemoveItem deletes a line.
func (ct *CartController) RemoveItem(c *gin.Context) {
	entry := middleware.Entry(c)
	entry.Cart.Remove(c.Param("id"))
	monitoring.CartMutationsTotal.WithLabelValues("remove").Inc()
	c.JSON(http.StatusOK, gin.H{"items": entry.Cart.Items(), "total": entry.Cart.Total()})
}

// Clear empties the cart.
func (ct *CartController) Clear(c *gin.Context) {
	entry := middleware.Entry(c)
	entry.Cart.Clear()
	monitoring.CartMutationsTotal.WithLabelValues("clear").Inc()
	c.JSON(http.StatusOK, gin.H{"items": entry.Cart.Items(), "total": 0})
}

// Checkout posts the cart as a purchase and clears it on success.
func (ct *CartController) Checkout(c *gin.Context) {
	entry := middleware.Entry(c)
	purchase, err := ct.checkout.Checkout(c.Request.Context(), entry.API, entry.Auth, entry.Cart)
	if err != nil {
		apperrors.HandleGin(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

// Purchases lists the session user's purchase history.
func (ct *CartController) Purchases(c *gin.Context) {
	entry := middleware.Entry(c)
	purchases, err := ct.checkout.ListPurchases(c.Request.Context(), entry.API)
	if err != nil {
		apperrors.HandleGin(c, err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}
