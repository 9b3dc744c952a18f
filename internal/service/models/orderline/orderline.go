package orderline

// OrderLine is a single book position within an order.
// UnitPriceCents is the book price captured when the line was reserved.
type OrderLine struct {
	BookID         int64 `json:"bookId"`
	Quantity       int64 `json:"quantity"`
	UnitPriceCents int64 `json:"unitPriceCents"`
}

// SubtotalCents returns quantity multiplied by the unit price.
func (l OrderLine) SubtotalCents() int64 {
	return l.Quantity * l.UnitPriceCents
}

// LineRequest is a requested (book, quantity) pair before reservation.
type LineRequest struct {
	BookID   int64 `json:"bookId"`
	Quantity int64 `json:"quantity"`
}
