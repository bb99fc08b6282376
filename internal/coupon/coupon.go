package coupon

import (
	"context"

	"github.com/shopspring/decimal"
)

// Table resolves coupon codes to discount rates.
type Table interface {
	// Rate returns the discount rate for a code. Lookup is case-insensitive.
	// Unknown codes report false and are not an error.
	Rate(code string) (decimal.Decimal, bool)

	// Size returns the number of known codes.
	Size() int

	// Close releases resources held by the table.
	Close() error
}

// CouponSet represents a set of coupon codes with their rates.
type CouponSet interface {
	// Rate returns the rate stored for an already-normalised code.
	Rate(code string) (decimal.Decimal, bool)

	// Size returns the number of coupons in the set.
	Size() int

	// Each calls fn for every coupon in the set.
	Each(fn func(code string, rate decimal.Decimal))
}

// Loader defines the interface for loading coupon files.
type Loader interface {
	// Load reads a gzipped coupon file and returns a CouponSet.
	Load(ctx context.Context, filePath string) (CouponSet, error)
}
