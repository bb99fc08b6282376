package service

import (
	"context"
	"fmt"
	"strings"

	"dulce-kart/internal/model"
	"dulce-kart/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// productService implements ProductService.
type productService struct {
	repo   repository.ProductRepository
	logger zerolog.Logger
}

// NewProductService creates a new catalog service.
func NewProductService(repo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		repo:   repo,
		logger: logger.With().Str("service", "product").Logger(),
	}
}

// List returns a page of the catalog. The page size is clamped to
// 1..maxPageSize and category names are matched in lower case.
func (s *productService) List(ctx context.Context, q model.CatalogQuery) ([]model.Product, error) {
	q.Category = strings.ToLower(strings.TrimSpace(q.Category))
	switch {
	case q.Limit <= 0:
		q.Limit = defaultPageSize
	case q.Limit > maxPageSize:
		q.Limit = maxPageSize
	}
	q.Offset = max(q.Offset, 0)

	products, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	s.logger.Debug().
		Str("category", q.Category).
		Int("count", len(products)).
		Msg("catalog page served")

	return products, nil
}

// GetByID resolves one catalog item. Blank and unknown ids both yield
// model.ErrProductNotFound.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.ErrProductNotFound
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", id, err)
	}
	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not in catalog")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Categories lists the catalog categories.
func (s *productService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
