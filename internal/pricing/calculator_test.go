package pricing

import (
	"testing"

	"dulce-kart/internal/coupon"
	"dulce-kart/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// fixedRates resolves every code to the same rate.
type fixedRates struct {
	rate decimal.Decimal
}

func (f fixedRates) Rate(code string) (decimal.Decimal, bool) {
	return f.rate, true
}

func newTestCalculator() *Calculator {
	return NewCalculator(DefaultZoneTable(), coupon.NewStaticTable(coupon.DefaultRates()))
}

func itemsWithSubtotal(subtotal int64) []model.LineItem {
	return []model.LineItem{
		{ProductID: "T1", Name: "Torta tres leches", UnitPrice: subtotal / 2, Quantity: 2},
	}
}

func TestCalcOrderTotal_Empty(t *testing.T) {
	calc := newTestCalculator()

	totals := calc.CalcOrderTotal(nil, Options{})

	assert.Equal(t, model.OrderTotals{}, totals)
}

func TestCalcOrderTotal(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		name     string
		items    []model.LineItem
		opts     Options
		expected model.OrderTotals
	}{
		{
			name:  "Subtotal only",
			items: itemsWithSubtotal(10000),
			opts:  Options{},
			expected: model.OrderTotals{
				Subtotal: 10000,
				Total:    10000,
			},
		},
		{
			name:  "Central zone adds its fee",
			items: itemsWithSubtotal(10000),
			opts:  Options{Zone: "santiago"},
			expected: model.OrderTotals{
				Subtotal:    10000,
				DeliveryFee: CentralZoneFee,
				Total:       10000 + CentralZoneFee,
			},
		},
		{
			name:  "Unknown zone uses the default fee",
			items: itemsWithSubtotal(10000),
			opts:  Options{Zone: "otras"},
			expected: model.OrderTotals{
				Subtotal:    10000,
				DeliveryFee: DefaultZoneFee,
				Total:       10000 + DefaultZoneFee,
			},
		},
		{
			name:  "DULCE10 without zone",
			items: itemsWithSubtotal(10000),
			opts:  Options{CouponCode: "DULCE10"},
			expected: model.OrderTotals{
				Subtotal:      10000,
				Discount:      1000,
				Total:         9000,
				CouponCode:    "DULCE10",
				CouponApplied: true,
			},
		},
		{
			name:  "Coupon code is case-insensitive",
			items: itemsWithSubtotal(10000),
			opts:  Options{Zone: "providencia", CouponCode: "pastel5"},
			expected: model.OrderTotals{
				Subtotal:      10000,
				DeliveryFee:   CentralZoneFee,
				Discount:      500,
				Total:         10000 + CentralZoneFee - 500,
				CouponCode:    "PASTEL5",
				CouponApplied: true,
			},
		},
		{
			name:  "Unknown coupon is ignored",
			items: itemsWithSubtotal(10000),
			opts:  Options{CouponCode: "NOEXISTE"},
			expected: model.OrderTotals{
				Subtotal: 10000,
				Total:    10000,
			},
		},
		{
			name: "Multiple items",
			items: []model.LineItem{
				{ProductID: "A", UnitPrice: 15000, Quantity: 2},
				{ProductID: "B", UnitPrice: 1990, Quantity: 3},
			},
			opts: Options{},
			expected: model.OrderTotals{
				Subtotal: 35970,
				Total:    35970,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, calc.CalcOrderTotal(tt.items, tt.opts))
		})
	}
}

func TestCalcOrderTotal_RoundsHalfUp(t *testing.T) {
	calc := newTestCalculator()

	// 10% of 1995 is 199.5
	totals := calc.CalcOrderTotal([]model.LineItem{{ProductID: "A", UnitPrice: 1995, Quantity: 1}}, Options{CouponCode: "DULCE10"})
	assert.Equal(t, int64(200), totals.Discount)

	// 5% of 1990 is 99.5
	totals = calc.CalcOrderTotal([]model.LineItem{{ProductID: "A", UnitPrice: 1990, Quantity: 1}}, Options{CouponCode: "PASTEL5"})
	assert.Equal(t, int64(100), totals.Discount)

	// 5% of 1989 is 99.45
	totals = calc.CalcOrderTotal([]model.LineItem{{ProductID: "A", UnitPrice: 1989, Quantity: 1}}, Options{CouponCode: "PASTEL5"})
	assert.Equal(t, int64(99), totals.Discount)
}

func TestCalcOrderTotal_UnknownCouponNeverLowersTotal(t *testing.T) {
	calc := newTestCalculator()

	for _, subtotal := range []int64{0, 1, 999, 10000, 123456} {
		items := []model.LineItem{{ProductID: "A", UnitPrice: subtotal, Quantity: 1}}
		for _, zone := range []string{"", "santiago", "otras"} {
			base := calc.CalcOrderTotal(items, Options{Zone: zone})
			withCoupon := calc.CalcOrderTotal(items, Options{Zone: zone, CouponCode: "FALSO99"})

			assert.Equal(t, base.Total, withCoupon.Total)
			assert.Equal(t, int64(0), withCoupon.Discount)
			assert.False(t, withCoupon.CouponApplied)
		}
	}
}

func TestCalcOrderTotal_TotalNeverNegative(t *testing.T) {
	for _, rate := range []string{"1", "1.5", "10"} {
		calc := NewCalculator(DefaultZoneTable(), fixedRates{rate: decimal.RequireFromString(rate)})

		totals := calc.CalcOrderTotal(itemsWithSubtotal(10000), Options{Zone: "otras", CouponCode: "ANY"})

		assert.GreaterOrEqual(t, totals.Total, int64(0), "rate %s", rate)
		assert.GreaterOrEqual(t, totals.Discount, int64(0), "rate %s", rate)
	}
}

func TestCalcOrderTotal_NegativeRateNeverAddsToTotal(t *testing.T) {
	calc := NewCalculator(DefaultZoneTable(), fixedRates{rate: decimal.RequireFromString("-0.5")})

	totals := calc.CalcOrderTotal(itemsWithSubtotal(10000), Options{CouponCode: "ANY"})

	assert.Equal(t, int64(0), totals.Discount)
	assert.Equal(t, int64(10000), totals.Total)
}

func TestCalcOrderTotal_NilCoupons(t *testing.T) {
	calc := NewCalculator(DefaultZoneTable(), nil)

	totals := calc.CalcOrderTotal(itemsWithSubtotal(10000), Options{CouponCode: "DULCE10"})

	assert.Equal(t, int64(0), totals.Discount)
	assert.False(t, calc.CouponValid("DULCE10"))
}

func TestCalculator_KnownZone(t *testing.T) {
	calc := newTestCalculator()

	assert.True(t, calc.KnownZone("Ñuñoa"))
	assert.True(t, calc.KnownZone(" SANTIAGO "))
	assert.False(t, calc.KnownZone("Las Condes"))
	assert.False(t, calc.KnownZone(""))
}
