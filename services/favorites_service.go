package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/AgustinBertolini/e-commerce-daw/clients"
	"github.com/AgustinBertolini/e-commerce-daw/models"
)

// FavoritesService wraps the backend's favorites endpoints.
type FavoritesService struct {
	log *zap.Logger
}

func NewFavoritesService(log *zap.Logger) *FavoritesService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FavoritesService{log: log}
}

type rawFavorite struct {
	ID        string `json:"_id"`
	UserID    string `json:"usuario"`
	ProductID string `json:"producto"`
}

// List fetches the session user's favorites.
func (s *FavoritesService) List(ctx context.Context, api *clients.BackendClient) ([]models.Favorite, error) {
	var raws []rawFavorite
	if err := api.GetJSON(ctx, "/api/favoritos", nil, &raws); err != nil {
		return nil, err
	}
	favorites := make([]models.Favorite, 0, len(raws))
	for _, raw := range raws {
		favorites = append(favorites, models.Favorite{
			ID:        raw.ID,
			UserID:    raw.UserID,
			ProductID: raw.ProductID,
		})
	}
	return favorites, nil
}

// Add marks a product as favorite.
func (s *FavoritesService) Add(ctx context.Context, api *clients.BackendClient, productID string) (models.Favorite, error) {
	var raw rawFavorite
	if err := api.PostJSON(ctx, "/api/favoritos", map[string]string{"producto": productID}, &raw); err != nil {
		return models.Favorite{}, err
	}
	return models.Favorite{ID: raw.ID, UserID: raw.UserID, ProductID: raw.ProductID}, nil
}

// Remove deletes a favorite by its id.
func (s *FavoritesService) Remove(ctx context.Context, api *clients.BackendClient, favoriteID string) error {
	return api.Delete(ctx, "/api/favoritos/"+favoriteID)
}
