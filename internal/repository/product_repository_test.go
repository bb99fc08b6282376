package repository

import (
	"context"
	"testing"
	"time"

	"dulce-kart/internal/database"
	"dulce-kart/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer, applies the migrations and
// returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// seedProducts replaces the catalog with products.
func seedProducts(t *testing.T, pool *pgxpool.Pool, products []model.Product) {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `TRUNCATE products`)
	require.NoError(t, err)

	query := `
		INSERT INTO products (id, name, price, category, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, p := range products {
		_, err := pool.Exec(ctx, query, p.ID, p.Name, p.Price, p.Category, p.ImageURL, p.CreatedAt)
		require.NoError(t, err)
	}
}

func TestProductRepository_SeededCatalog(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())

	products, err := repo.List(context.Background(), model.CatalogQuery{Limit: 100})

	require.NoError(t, err)
	assert.NotEmpty(t, products)
	for _, p := range products {
		assert.Greater(t, p.Price, int64(0))
	}

	categories, err := repo.Categories(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, categories)
	assert.IsIncreasing(t, categories)
}

func TestProductRepository_List(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())

	now := time.Now()
	seedProducts(t, pool, []model.Product{
		{ID: "P001", Name: "Alfajor", Price: 1500, Category: "galletas", CreatedAt: now},
		{ID: "P002", Name: "Brazo de reina", Price: 9990, Category: "tortas", CreatedAt: now},
		{ID: "P003", Name: "Chilenito", Price: 900, Category: "galletas", CreatedAt: now},
		{ID: "P004", Name: "Kuchen", Price: 11490, Category: "tartas", CreatedAt: now},
		{ID: "P005", Name: "Selva negra", Price: 21990, Category: "tortas", CreatedAt: now},
	})

	tests := []struct {
		name     string
		query    model.CatalogQuery
		expected int
	}{
		{
			name:     "Whole catalog",
			query:    model.CatalogQuery{Limit: 10},
			expected: 5,
		},
		{
			name:     "First page",
			query:    model.CatalogQuery{Limit: 2},
			expected: 2,
		},
		{
			name:     "Last page",
			query:    model.CatalogQuery{Limit: 2, Offset: 4},
			expected: 1,
		},
		{
			name:     "Offset beyond results",
			query:    model.CatalogQuery{Limit: 10, Offset: 10},
			expected: 0,
		},
		{
			name:     "One category",
			query:    model.CatalogQuery{Category: "galletas", Limit: 10},
			expected: 2,
		},
		{
			name:     "Unknown category",
			query:    model.CatalogQuery{Category: "empanadas", Limit: 10},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := repo.List(context.Background(), tt.query)

			require.NoError(t, err)
			require.NotNil(t, products)
			assert.Len(t, products, tt.expected)
			for _, p := range products {
				if tt.query.Category != "" {
					assert.Equal(t, tt.query.Category, p.Category)
				}
			}

			for i := 1; i < len(products); i++ {
				prev, cur := products[i-1], products[i]
				assert.True(t, prev.Category < cur.Category ||
					(prev.Category == cur.Category && prev.Name <= cur.Name))
			}
		})
	}

	categories, err := repo.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"galletas", "tartas", "tortas"}, categories)
}

func TestProductRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())

	testProduct := model.Product{
		ID:        "P001",
		Name:      "Torta tres leches",
		Price:     18990,
		Category:  "tortas",
		ImageURL:  "/img/tres-leches.jpg",
		CreatedAt: time.Now(),
	}
	seedProducts(t, pool, []model.Product{testProduct})

	product, err := repo.GetByID(context.Background(), "P001")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, testProduct.Name, product.Name)
	assert.Equal(t, testProduct.Price, product.Price)
	assert.Equal(t, testProduct.ImageURL, product.ImageURL)

	missing, err := repo.GetByID(context.Background(), "P999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProductRepository_ErrorPaths(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(pool, zerolog.Nop())

	// Close the pool to simulate database errors
	pool.Close()

	products, err := repo.List(context.Background(), model.CatalogQuery{Limit: 10})
	require.Error(t, err)
	assert.Nil(t, products)

	categories, err := repo.Categories(context.Background())
	require.Error(t, err)
	assert.Nil(t, categories)

	product, err := repo.GetByID(context.Background(), "P001")
	require.Error(t, err)
	assert.Nil(t, product)
}
