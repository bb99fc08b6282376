package pricing

import (
	"strings"

	"dulce-kart/internal/coupon"
	"dulce-kart/internal/model"

	"github.com/shopspring/decimal"
)

// CouponRates resolves a coupon code to its discount rate.
type CouponRates interface {
	Rate(code string) (decimal.Decimal, bool)
}

// Options carries the optional pricing inputs. An empty Zone means no
// delivery fee is charged (pre-checkout estimate).
type Options struct {
	Zone       string
	CouponCode string
}

// Calculator computes order totals. It holds no mutable state and is safe
// for concurrent use.
type Calculator struct {
	zones   ZoneTable
	coupons CouponRates
}

// NewCalculator creates a calculator. coupons may be nil, in which case no
// code ever applies.
func NewCalculator(zones ZoneTable, coupons CouponRates) *Calculator {
	return &Calculator{
		zones:   zones,
		coupons: coupons,
	}
}

// CalcOrderTotal prices a list of line items.
//
//	subtotal = Σ unitPrice × quantity
//	discount = round(subtotal × rate), half-up on whole pesos
//	total    = max(0, subtotal + deliveryFee − discount)
func (c *Calculator) CalcOrderTotal(items []model.LineItem, opts Options) model.OrderTotals {
	var totals model.OrderTotals

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		totals.Subtotal += item.LineTotal()
	}

	if strings.TrimSpace(opts.Zone) != "" {
		totals.DeliveryFee = c.zones.Fee(opts.Zone)
	}

	if rate, code, ok := c.lookupCoupon(opts.CouponCode); ok {
		discount := decimal.NewFromInt(totals.Subtotal).Mul(rate).Round(0).IntPart()
		if discount < 0 {
			discount = 0
		}
		totals.Discount = discount
		totals.CouponCode = code
		totals.CouponApplied = true
	}

	totals.Total = totals.Subtotal + totals.DeliveryFee - totals.Discount
	if totals.Total < 0 {
		totals.Total = 0
	}

	return totals
}

// CouponValid reports whether a code resolves to a known rate.
func (c *Calculator) CouponValid(code string) bool {
	_, _, ok := c.lookupCoupon(code)
	return ok
}

// KnownZone reports whether zone has its own fee rather than the fallback.
func (c *Calculator) KnownZone(zone string) bool {
	return c.zones.Known(zone)
}

func (c *Calculator) lookupCoupon(code string) (decimal.Decimal, string, bool) {
	code = coupon.NormaliseCode(code)
	if code == "" || c.coupons == nil {
		return decimal.Zero, "", false
	}
	rate, ok := c.coupons.Rate(code)
	if !ok {
		return decimal.Zero, "", false
	}
	return rate, code, true
}
