package models

import "encoding/json"

// The backend mixes Spanish and English field names and two id
// spellings depending on the endpoint. RawProduct accepts every
// observed variant; NormalizeProduct picks the populated one so the
// rest of the service only ever sees the canonical Product.
type RawProduct struct {
	ID          string      `json:"_id"`
	AltID       string      `json:"id"`
	Name        string      `json:"name"`
	Nombre      string      `json:"nombre"`
	Description string      `json:"description"`
	Descripcion string      `json:"descripcion"`
	Price       float64     `json:"price"`
	Precio      float64     `json:"precio"`
	Stock       int         `json:"stock"`
	Image       string      `json:"image"`
	Category    RawCategory `json:"category"`
	Categoria   RawCategory `json:"categoria"`
}

type RawCategory struct {
	ID     string `json:"_id"`
	AltID  string `json:"id"`
	Name   string `json:"name"`
	Nombre string `json:"nombre"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// NormalizeProduct converts a raw backend payload into the canonical
// Product type.
func NormalizeProduct(raw RawProduct) Product {
	price := raw.Precio
	if price == 0 {
		price = raw.Price
	}
	return Product{
		ID:          firstNonEmpty(raw.ID, raw.AltID),
		Name:        firstNonEmpty(raw.Nombre, raw.Name),
		Description: firstNonEmpty(raw.Descripcion, raw.Description),
		Price:       price,
		Stock:       raw.Stock,
		Image:       raw.Image,
		Category:    normalizeCategory(raw.Category, raw.Categoria),
	}
}

// NormalizeCategory converts a raw category payload.
func NormalizeCategory(raw RawCategory) Category {
	return Category{
		ID:   firstNonEmpty(raw.ID, raw.AltID),
		Name: firstNonEmpty(raw.Nombre, raw.Name),
	}
}

func normalizeCategory(variants ...RawCategory) Category {
	for _, raw := range variants {
		c := Category{
			ID:   firstNonEmpty(raw.ID, raw.AltID),
			Name: firstNonEmpty(raw.Nombre, raw.Name),
		}
		if c.ID != "" || c.Name != "" {
			return c
		}
	}
	return Category{}
}

// NormalizeProducts maps a raw list payload.
func NormalizeProducts(raws []RawProduct) []Product {
	products := make([]Product, 0, len(raws))
	for _, raw := range raws {
		products = append(products, NormalizeProduct(raw))
	}
	return products
}

// ParseProduct decodes and normalizes a single raw product document.
func ParseProduct(data []byte) (Product, error) {
	var raw RawProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return Product{}, err
	}
	return NormalizeProduct(raw), nil
}
