package services

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/AgustinBertolini/e-commerce-daw/apperrors"
	"github.com/AgustinBertolini/e-commerce-daw/auth"
	"github.com/AgustinBertolini/e-commerce-daw/cart"
	"github.com/AgustinBertolini/e-commerce-daw/clients"
	"github.com/AgustinBertolini/e-commerce-daw/models"
)

// Shipping is flat-rate for now; the backend recalculates the final
// amount either way.
const shippingCost = 0.0

// CheckoutService turns the session cart into a backend purchase and
// clears the cart wholesale on success.
type CheckoutService struct {
	log *zap.Logger
}

func NewCheckoutService(log *zap.Logger) *CheckoutService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckoutService{log: log}
}

type purchaseLine struct {
	ProductID string `json:"producto"`
	Quantity  int    `json:"cantidad"`
}

type purchasePayload struct {
	UserID   string         `json:"usuario"`
	Total    float64        `json:"total"`
	Shipping float64        `json:"envio"`
	Products []purchaseLine `json:"productos"`
}

type purchaseResponse struct {
	ID     string  `json:"_id"`
	Total  float64 `json:"total"`
	Status string  `json:"estado"`
}

// Checkout posts the cart as a purchase. The cart is cleared only
// after the backend confirms the purchase.
func (s *CheckoutService) Checkout(ctx context.Context, api *clients.BackendClient, sess *auth.Session, store *cart.Store) (models.Purchase, error) {
	items := store.Items()
	if len(items) == 0 {
		return models.Purchase{}, apperrors.New(http.StatusBadRequest, "Cart is empty", nil)
	}
	userID := sess.UserID()
	if userID == "" {
		return models.Purchase{}, apperrors.ErrNoCredential
	}

	payload := purchasePayload{
		UserID:   userID,
		Total:    store.Total(),
		Shipping: shippingCost,
		Products: make([]purchaseLine, 0, len(items)),
	}
	for _, line := range items {
		payload.Products = append(payload.Products, purchaseLine{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		})
	}

	var created purchaseResponse
	if err := api.PostJSON(ctx, "/api/compras", payload, &created); err != nil {
		return models.Purchase{}, err
	}

	store.Clear()
	s.log.Info("Checkout completed",
		zap.String("purchase_id", created.ID),
		zap.String("user_id", userID),
		zap.Float64("total", payload.Total),
	)

	purchase := models.Purchase{
		ID:       created.ID,
		UserID:   userID,
		Total:    payload.Total,
		Shipping: payload.Shipping,
		Status:   created.Status,
	}
	for _, line := range payload.Products {
		purchase.Items = append(purchase.Items, models.PurchaseItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return purchase, nil
}

// ListPurchases fetches the purchase history for the session user.
func (s *CheckoutService) ListPurchases(ctx context.Context, api *clients.BackendClient) ([]map[string]any, error) {
	var purchases []map[string]any
	if err := api.GetJSON(ctx, "/api/compras", nil, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}
