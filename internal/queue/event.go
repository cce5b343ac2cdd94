// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderLine is a compact line-item summary carried in order events.
type OrderLine struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrderPlacedEvent is published after a checkout is persisted. It carries
// enough information for downstream consumers to log, notify, or feed
// analytics without querying the primary database.
type OrderPlacedEvent struct {
	OrderID     string      `json:"order_id"`
	UserID      string      `json:"user_id"`
	UserName    string      `json:"user_name"`
	UserPhone   string      `json:"user_phone"`
	PaymentMode string      `json:"payment_mode"`
	PaymentID   string      `json:"payment_id,omitempty"`
	TotalAmount float64     `json:"total_amount"`
	Items       []OrderLine `json:"items"`
	PlacedAt    string      `json:"placed_at"`
}
