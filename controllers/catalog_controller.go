package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AgustinBertolini/e-commerce-daw/apperrors"
	"github.com/AgustinBertolini/e-commerce-daw/middleware"
	"github.com/AgustinBertolini/e-commerce-daw/services"
)

type CatalogController struct {
	catalog   *services.CatalogService
	favorites *services.FavoritesService
}

func NewCatalogController(catalog *services.CatalogService, favorites *services.FavoritesService) *CatalogController {
	return &CatalogController{catalog: catalog, favorites: favorites}
}

func (ct *CatalogController) ListProducts(c *gin.Context) {
	entry := middleware.Entry(c)
	products, err := ct.catalog.ListProducts(c.Request.Context(), entry.API, c.Request.URL.Query())
	if err != nil {
		apperrors.HandleGin(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (ct *CatalogController) GetProduct(c *gin.Context) {
	entry := middleware.Entry(c)
	product, err := ct.catalog.GetProduct(c.Request.Context(), entry.API, c.Param("id"))
	if err != nil {
		apperrors.HandleGin(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (ct *CatalogController) CreateProduct(c *gin.Context) {
	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry := middleware.Entry(c)
	product, err := ct.catalog.CreateProduct(c.Request.Context(), entry.API, input)
	if err != nil {
		apperrors.HandleGin(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (ct *CatalogController) UpdateProduct(c *gin.Context) {
	var input services.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry := middleware.Entry(c)
	product, err := ct.catalog.UpdateProduct(c.Request.Context(), entry.API, c.Param("id"), input)
	if err != nil {
		apperrors.HandleGin(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (ct *CatalogController) DeleteProduct(c *gin.Context) {
	entry := middleware.Entry(c)
	if err := ct.catalog.DeleteProduct(c.Request.Context(), entry.API, c.Param("id")); err != nil {
		apperrors.HandleGin(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (ct *CatalogController) ListCategories(c *gin.Context) {
	entry := middleware.Entry(c)
	categories, err := ct.catalog.ListCategories(c.Request.Context(), entry.API)
	if err != nil {
		apperrors.HandleGin(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (ct *CatalogController) ListFavorites(c *gin.Context) {
	entry := middleware.Entry(c)
	favorites, err := ct.favorites.List(c.Request.Context(), entry.API)
	if err != nil {
		apperrors.HandleGin(c, err)
		return
	}
	c.JSON(http.StatusOK, favorites)
}

type addFavoriteRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

func (ct *CatalogController) AddFavorite(c *gin.Context) {
	var req addFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}
	entry := middleware.Entry(c)
	favorite, err := ct.favorites.Add(c.Request.Context(), entry.API, req.ProductID)
	if err != nil {
		apperrors.HandleGin(c, err)
		return
	}
	c.JSON(http.StatusCreated, favorite)
}

func (ct *CatalogController) RemoveFavorite(c *gin.Context) {
	entry := middleware.Entry(c)
	if err := ct.favorites.Remove(c.Request.Context(), entry.API, c.Param("id")); err != nil {
		apperrors.HandleGin(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}
