package coupon

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var maxRate = decimal.NewFromInt(1)

// mapCouponSet implements CouponSet using a map for O(1) lookups.
type mapCouponSet struct {
	coupons map[string]decimal.Decimal
}

// NewMapCouponSet creates a new map-based coupon set.
func NewMapCouponSet(capacity int) CouponSet {
	return &mapCouponSet{
		coupons: make(map[string]decimal.Decimal, capacity),
	}
}

// Rate returns the rate stored for a code.
func (s *mapCouponSet) Rate(code string) (decimal.Decimal, bool) {
	rate, exists := s.coupons[code]
	return rate, exists
}

// Size returns the number of coupons in the set.
func (s *mapCouponSet) Size() int {
	return len(s.coupons)
}

// Each calls fn for every coupon in the set.
func (s *mapCouponSet) Each(fn func(code string, rate decimal.Decimal)) {
	for code, rate := range s.coupons {
		fn(code, rate)
	}
}

// Add stores a coupon. Codes are upper-cased; the rate must lie in [0,1).
func (s *mapCouponSet) Add(code string, rate decimal.Decimal) error {
	code = NormaliseCode(code)
	if code == "" {
		return fmt.Errorf("coupon code is empty")
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(maxRate) {
		return fmt.Errorf("coupon %s: rate %s outside [0,1)", code, rate.String())
	}
	s.coupons[code] = rate
	return nil
}

// NormaliseCode trims and upper-cases a coupon code.
func NormaliseCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
