package model

import "time"

// Product represents a bakery product in the read-only catalogue.
// Prices are whole Chilean pesos; CLP has no minor unit.
type Product struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Price     int64     `json:"price" db:"price"`
	Category  string    `json:"category" db:"category"`
	ImageURL  string    `json:"imageUrl,omitempty" db:"image_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CatalogQuery selects a page of the catalogue. An empty Category lists
// every category.
type CatalogQuery struct {
	Category string
	Limit    int
	Offset   int
}
