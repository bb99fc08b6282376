package repository

import (
	"context"

	"dulce-kart/internal/kvstore"
	"dulce-kart/internal/model"
)

// ProductRepository defines the read-only catalog queries.
type ProductRepository interface {
	// List retrieves products ordered by category and name.
	List(ctx context.Context, q model.CatalogQuery) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. It returns nil, nil
	// when the product does not exist.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Categories lists the distinct product categories in name order.
	Categories(ctx context.Context) ([]string, error)
}

var _ kvstore.Store = (*KVRepository)(nil)
