package model

import (
	"fmt"
	"time"
)

// OrderStatus is the lifecycle state of a placed order as reported by the
// order service.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is expected.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// PaymentMethod is the customer's declared way of paying on delivery or by
// transfer. It is informational only.
type PaymentMethod string

const (
	PaymentMethodTransfer PaymentMethod = "transferencia"
	PaymentMethodCash     PaymentMethod = "efectivo"
	PaymentMethodCard     PaymentMethod = "tarjeta"
)

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentMethodTransfer, PaymentMethodCash, PaymentMethodCard:
		return true
	}
	return false
}

// CustomerInfo is collected in the Identity stage of checkout.
type CustomerInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// DeliveryInfo is collected in the Delivery stage of checkout.
type DeliveryInfo struct {
	Address    string `json:"address"`
	Comuna     string `json:"comuna"`
	Date       string `json:"date"`
	TimeWindow string `json:"timeWindow,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// OrderTotals is the priced breakdown of an order.
type OrderTotals struct {
	Subtotal      int64  `json:"subtotal"`
	DeliveryFee   int64  `json:"deliveryFee"`
	Discount      int64  `json:"discount"`
	Total         int64  `json:"total"`
	CouponCode    string `json:"couponCode,omitempty"`
	CouponApplied bool   `json:"couponApplied"`
}

// CreateOrderRequest is the payload sent to the order service. Items is a
// snapshot; later cart mutations never reach a placed order.
type CreateOrderRequest struct {
	Items         []LineItem    `json:"items"`
	Customer      CustomerInfo  `json:"customerInfo"`
	Delivery      DeliveryInfo  `json:"delivery"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CouponCode    *string       `json:"couponCode,omitempty"`
	Totals        OrderTotals   `json:"totals"`
}

// CreateOrderResponse is returned by the order service on creation.
type CreateOrderResponse struct {
	OrderID string      `json:"orderId"`
	Status  OrderStatus `json:"status"`
}

// Order is a snapshot fetched from the order service. Status is kept as the
// raw string the service returned so that unknown values can be projected
// without failing decoding.
type Order struct {
	ID            string        `json:"id"`
	Status        string        `json:"status"`
	Items         []LineItem    `json:"items"`
	Customer      CustomerInfo  `json:"customerInfo"`
	Delivery      DeliveryInfo  `json:"delivery"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	CouponCode    *string       `json:"couponCode,omitempty"`
	Totals        OrderTotals   `json:"totals"`
	CreatedAt     time.Time     `json:"createdAt"`
}
