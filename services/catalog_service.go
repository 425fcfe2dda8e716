package services

import (
	"context"
	"encoding/json"
	"net/url"

	"go.uber.org/zap"

	"github.com/AgustinBertolini/e-commerce-daw/clients"
	"github.com/AgustinBertolini/e-commerce-daw/models"
)

// mustJSON marshals values known to be encodable.
func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

// CatalogService wraps the backend's product and category endpoints.
// Raw payloads are normalized into canonical types here, at the edge.
type CatalogService struct {
	log *zap.Logger
}

func NewCatalogService(log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{log: log}
}

// ListProducts fetches the catalog, passing the query through (search,
// pagination, filters) untouched.
func (s *CatalogService) ListProducts(ctx context.Context, api *clients.BackendClient, query url.Values) ([]models.Product, error) {
	var raws []models.RawProduct
	if err := api.GetJSON(ctx, "/api/productos", query, &raws); err != nil {
		return nil, err
	}
	return models.NormalizeProducts(raws), nil
}

// GetProduct fetches one product by id.
func (s *CatalogService) GetProduct(ctx context.Context, api *clients.BackendClient, id string) (models.Product, error) {
	var raw models.RawProduct
	if err := api.GetJSON(ctx, "/api/productos/"+id, nil, &raw); err != nil {
		return models.Product{}, err
	}
	return models.NormalizeProduct(raw), nil
}

// ProductInput is the admin-facing create/update payload, using the
// backend's native field names.
type ProductInput struct {
	Name        string  `json:"nombre" binding:"required"`
	Description string  `json:"descripcion"`
	Price       float64 `json:"precio" binding:"required"`
	Stock       int     `json:"stock"`
	CategoryID  string  `json:"categoria"`
	Image       string  `json:"image"`
}

// CreateProduct creates a product (admin CRUD).
func (s *CatalogService) CreateProduct(ctx context.Context, api *clients.BackendClient, input ProductInput) (models.Product, error) {
	var raw models.RawProduct
	if err := api.PostJSON(ctx, "/api/productos", input, &raw); err != nil {
		return models.Product{}, err
	}
	return models.NormalizeProduct(raw), nil
}

// UpdateProduct updates a product (admin CRUD).
func (s *CatalogService) UpdateProduct(ctx context.Context, api *clients.BackendClient, id string, input ProductInput) (models.Product, error) {
	var raw models.RawProduct
	if err := api.PutJSON(ctx, "/api/productos/"+id, input, &raw); err != nil {
		return models.Product{}, err
	}
	return models.NormalizeProduct(raw), nil
}

// DeleteProduct removes a product (admin CRUD).
func (s *CatalogService) DeleteProduct(ctx context.Context, api *clients.BackendClient, id string) error {
	return api.Delete(ctx, "/api/productos/"+id)
}

// ListCategories fetches the category list.
func (s *CatalogService) ListCategories(ctx context.Context, api *clients.BackendClient) ([]models.Category, error) {
	var raws []models.RawCategory
	if err := api.GetJSON(ctx, "/api/categorias", nil, &raws); err != nil {
		return nil, err
	}
	categories := make([]models.Category, 0, len(raws))
	for _, raw := range raws {
		categories = append(categories, models.NormalizeCategory(raw))
	}
	return categories, nil
}
