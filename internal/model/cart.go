package model

// LineItem is one product reference plus its quantity in a cart.
// Name, ImageURL and Category are display fields captured when the product
// was first added.
type LineItem struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"price"`
	Quantity  int    `json:"qty"`
	ImageURL  string `json:"image,omitempty"`
	Category  string `json:"category,omitempty"`
}

// LineTotal returns unit price times quantity.
func (i LineItem) LineTotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// CartSummary is derived from the items on every read.
type CartSummary struct {
	Count int   `json:"count"`
	Total int64 `json:"total"`
}

// Summarise computes the summary of a list of line items.
func Summarise(items []LineItem) CartSummary {
	var s CartSummary
	for _, item := range items {
		s.Count += item.Quantity
		s.Total += item.LineTotal()
	}
	return s
}
