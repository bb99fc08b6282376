package service

import (
	"context"

	"dulce-kart/internal/checkout"
	"dulce-kart/internal/model"
	"dulce-kart/internal/tracking"
)

// ProductService defines the catalog queries.
type ProductService interface {
	// List retrieves a page of the catalog.
	List(ctx context.Context, q model.CatalogQuery) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Categories lists the catalog categories.
	Categories(ctx context.Context) ([]string, error)
}

// CartService defines the cart operations of a browsing session.
type CartService interface {
	// Get returns the cart with a price preview for the optional zone and
	// coupon.
	Get(ctx context.Context, sessionID string, preview QuotePreview) (*CartView, error)

	// AddItem adds one unit of a catalog product.
	AddItem(ctx context.Context, sessionID, productID string) (*CartView, error)

	// Decrement removes one unit of a product, dropping the line at zero.
	Decrement(ctx context.Context, sessionID, productID string) (*CartView, error)

	// RemoveItem drops a product line regardless of quantity.
	RemoveItem(ctx context.Context, sessionID, productID string) (*CartView, error)

	// Clear empties the cart.
	Clear(ctx context.Context, sessionID string) (*CartView, error)
}

// CheckoutService drives the checkout wizard of a session. Every method
// returns the session's view after the call; a non-nil error explains why
// the action was rejected and the view then still reflects the kept input.
type CheckoutService interface {
	View(ctx context.Context, sessionID string) (*checkout.View, error)
	SubmitIdentity(ctx context.Context, sessionID string, form checkout.IdentityForm) (*checkout.View, error)
	SubmitDelivery(ctx context.Context, sessionID string, form checkout.DeliveryForm) (*checkout.View, error)
	Back(ctx context.Context, sessionID string) (*checkout.View, error)
	AcceptTerms(ctx context.Context, sessionID string, accepted bool) (*checkout.View, error)
	ApplyCoupon(ctx context.Context, sessionID, code string) (*checkout.View, error)

	// Submit places the order. The identity in ctx decides where the last
	// order id is remembered.
	Submit(ctx context.Context, sessionID string) (*checkout.View, error)

	// Reset starts a new checkout.
	Reset(ctx context.Context, sessionID string) (*checkout.View, error)
}

// OrderService answers order tracking queries.
type OrderService interface {
	// Track returns the tracking view of an order. An empty orderID means the
	// last order placed under scope.
	Track(ctx context.Context, orderID, scope string) (*tracking.View, error)

	// History lists the caller's orders.
	History(ctx context.Context) ([]tracking.Summary, error)
}
