package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProduct(t *testing.T) {
	t.Run("Spanish Fields", func(t *testing.T) {
		raw := RawProduct{
			ID:          "p1",
			Nombre:      "Zapatillas",
			Descripcion: "Running",
			Precio:      59.99,
			Stock:       4,
			Categoria:   RawCategory{ID: "c1", Nombre: "Calzado"},
		}

		p := NormalizeProduct(raw)

		assert.Equal(t, "p1", p.ID)
		assert.Equal(t, "Zapatillas", p.Name)
		assert.Equal(t, "Running", p.Description)
		assert.Equal(t, 59.99, p.Price)
		assert.Equal(t, 4, p.Stock)
		assert.Equal(t, Category{ID: "c1", Name: "Calzado"}, p.Category)
	})

	t.Run("English Fields", func(t *testing.T) {
		raw := RawProduct{
			AltID:       "p2",
			Name:        "Sneakers",
			Description: "Trail",
			Price:       80,
			Stock:       2,
			Category:    RawCategory{AltID: "c2", Name: "Shoes"},
		}

		p := NormalizeProduct(raw)

		assert.Equal(t, "p2", p.ID)
		assert.Equal(t, "Sneakers", p.Name)
		assert.Equal(t, 80.0, p.Price)
		assert.Equal(t, Category{ID: "c2", Name: "Shoes"}, p.Category)
	})

	t.Run("Spanish Wins When Both Present", func(t *testing.T) {
		raw := RawProduct{ID: "p3", Name: "Shirt", Nombre: "Camisa", Price: 10, Precio: 12}

		p := NormalizeProduct(raw)

		assert.Equal(t, "Camisa", p.Name)
		assert.Equal(t, 12.0, p.Price)
	})
}

func TestParseProduct(t *testing.T) {
	data := []byte(`{"_id":"abc","nombre":"Gorra","precio":15.5,"stock":7,"category":{"_id":"c9","nombre":"Accesorios"}}`)

	p, err := ParseProduct(data)

	assert.NoError(t, err)
	assert.Equal(t, "abc", p.ID)
	assert.Equal(t, "Gorra", p.Name)
	assert.Equal(t, 15.5, p.Price)
	assert.Equal(t, 7, p.Stock)
	assert.Equal(t, "Accesorios", p.Category.Name)
}

func TestCartLineSubtotal(t *testing.T) {
	line := CartLine{Product: Product{Price: 19.9}, Quantity: 3}
	assert.InDelta(t, 59.7, line.Subtotal(), 1e-9)
}
