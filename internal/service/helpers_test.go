package service

import (
	"context"
	"testing"
	"time"

	"dulce-kart/internal/checkout"
	"dulce-kart/internal/coupon"
	"dulce-kart/internal/kvstore"
	"dulce-kart/internal/model"
	"dulce-kart/internal/pricing"
	"dulce-kart/internal/tracking"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, q model.CatalogQuery) ([]model.Product, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Categories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockOrderClient is a mock of the order service client.
type MockOrderClient struct {
	mock.Mock
}

func (m *MockOrderClient) CreateOrder(ctx context.Context, req *model.CreateOrderRequest) (*model.CreateOrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CreateOrderResponse), args.Error(1)
}

func (m *MockOrderClient) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderClient) GetUserOrders(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func testCalculator() *pricing.Calculator {
	return pricing.NewCalculator(pricing.DefaultZoneTable(), coupon.NewStaticTable(coupon.DefaultRates()))
}

type testEnv struct {
	storage  *kvstore.Memory
	orders   *MockOrderClient
	cache    *tracking.LastOrderCache
	sessions *SessionRegistry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	storage := kvstore.NewMemory()
	orders := new(MockOrderClient)
	cache := tracking.NewLastOrderCache(storage)
	sessions := NewSessionRegistry(storage, checkout.Deps{
		Orders:     orders,
		Pricing:    testCalculator(),
		LastOrders: cache,
		Location:   time.UTC,
		Now:        func() time.Time { return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC) },
		Logger:     zerolog.Nop(),
	}, zerolog.Nop())
	return &testEnv{storage: storage, orders: orders, cache: cache, sessions: sessions}
}

var (
	tresLeches = &model.Product{ID: "torta-tres-leches", Name: "Torta tres leches", Price: 18990, Category: "tortas"}
	alfajores  = &model.Product{ID: "alfajores-caja-12", Name: "Alfajores (caja de 12)", Price: 7990, Category: "galletas"}
)
