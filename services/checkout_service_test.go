package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AgustinBertolini/e-commerce-daw/auth"
	"github.com/AgustinBertolini/e-commerce-daw/cart"
	"github.com/AgustinBertolini/e-commerce-daw/clients"
	"github.com/AgustinBertolini/e-commerce-daw/models"
)

func authedFixture(t *testing.T, handler http.HandlerFunc) (*clients.BackendClient, *auth.Session) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sess := auth.NewSession(auth.NewMemoryMarkerStore(nil), time.Hour, nil)
	sess.Establish(context.Background(), models.Credential{AccessToken: "T1", UserID: "u1"})
	return clients.NewBackendClient(clients.Config{BaseURL: server.URL}, sess, nil), sess
}

func TestCheckout(t *testing.T) {
	t.Run("Posts Cart And Clears It", func(t *testing.T) {
		var payload map[string]any
		client, sess := authedFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/compras", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			json.NewDecoder(r.Body).Decode(&payload)
			json.NewEncoder(w).Encode(map[string]any{"_id": "c1", "estado": "pendiente"})
		})

		store := cart.NewStore()
		require.NoError(t, store.Add(models.Product{ID: "p1", Price: 10, Stock: 5}, 2))
		require.NoError(t, store.Add(models.Product{ID: "p2", Price: 5, Stock: 5}, 1))

		purchase, err := NewCheckoutService(nil).Checkout(context.Background(), client, sess, store)

		require.NoError(t, err)
		assert.Equal(t, "c1", purchase.ID)
		assert.Equal(t, "pendiente", purchase.Status)
		assert.InDelta(t, 25.0, purchase.Total, 1e-9)
		assert.Len(t, purchase.Items, 2)

		assert.Equal(t, "u1", payload["usuario"])
		assert.InDelta(t, 25.0, payload["total"].(float64), 1e-9)
		products := payload["productos"].([]any)
		require.Len(t, products, 2)
		first := products[0].(map[string]any)
		assert.Equal(t, "p1", first["producto"])
		assert.Equal(t, 2.0, first["cantidad"])

		assert.Equal(t, 0, store.Len(), "cart cleared after confirmed purchase")
	})

	t.Run("Empty Cart", func(t *testing.T) {
		client, sess := authedFixture(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("backend must not be contacted for an empty cart")
		})

		_, err := NewCheckoutService(nil).Checkout(context.Background(), client, sess, cart.NewStore())

		assert.Error(t, err)
	})

	t.Run("Backend Failure Keeps Cart", func(t *testing.T) {
		client, sess := authedFixture(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})

		store := cart.NewStore()
		require.NoError(t, store.Add(models.Product{ID: "p1", Price: 10, Stock: 5}, 1))

		_, err := NewCheckoutService(nil).Checkout(context.Background(), client, sess, store)

		assert.Error(t, err)
		assert.Equal(t, 1, store.Len(), "cart kept when the purchase did not go through")
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		client, _ := authedFixture(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("backend must not be contacted without a session user")
		})
		anonymous := auth.NewSession(nil, 0, nil)

		store := cart.NewStore()
		require.NoError(t, store.Add(models.Product{ID: "p1", Price: 10, Stock: 5}, 1))

		_, err := NewCheckoutService(nil).Checkout(context.Background(), client, anonymous, store)

		assert.Error(t, err)
		assert.Equal(t, 1, store.Len())
	})
}

func TestCatalogService(t *testing.T) {
	t.Run("ListProducts Normalizes", func(t *testing.T) {
		client, _ := authedFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/productos", r.URL.Path)
			assert.Equal(t, "gorra", r.URL.Query().Get("search"))
			w.Write([]byte(`[{"_id":"p1","nombre":"Gorra","precio":15.5,"stock":3}]`))
		})

		products, err := NewCatalogService(nil).ListProducts(context.Background(), client, map[string][]string{"search": {"gorra"}})

		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, models.Product{ID: "p1", Name: "Gorra", Price: 15.5, Stock: 3}, products[0])
	})

	t.Run("GetProduct", func(t *testing.T) {
		client, _ := authedFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/productos/p1", r.URL.Path)
			w.Write([]byte(`{"id":"p1","name":"Cap","price":12,"stock":9}`))
		})

		p, err := NewCatalogService(nil).GetProduct(context.Background(), client, "p1")

		require.NoError(t, err)
		assert.Equal(t, "Cap", p.Name)
		assert.Equal(t, 12.0, p.Price)
	})

	t.Run("DeleteProduct", func(t *testing.T) {
		client, _ := authedFixture(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/api/productos/p1", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		})

		assert.NoError(t, NewCatalogService(nil).DeleteProduct(context.Background(), client, "p1"))
	})
}

func TestFavoritesService(t *testing.T) {
	client, _ := authedFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.Write([]byte(`[{"_id":"f1","usuario":"u1","producto":"p1"}]`))
		case r.Method == http.MethodPost:
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(map[string]string{"_id": "f2", "usuario": "u1", "producto": body["producto"]})
		case r.Method == http.MethodDelete:
			assert.Equal(t, "/api/favoritos/f1", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}
	})
	service := NewFavoritesService(nil)
	ctx := context.Background()

	favorites, err := service.List(ctx, client)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, models.Favorite{ID: "f1", UserID: "u1", ProductID: "p1"}, favorites[0])

	added, err := service.Add(ctx, client, "p9")
	require.NoError(t, err)
	assert.Equal(t, "p9", added.ProductID)

	assert.NoError(t, service.Remove(ctx, client, "f1"))
}
