package domain

import "time"

// Review is a shopper's rating of a product, 1 to 5.
type Review struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	UserID     string    `json:"userId"`
	Rating     int       `json:"rating"`
	Title      string    `json:"title,omitempty"`
	Comment    string    `json:"comment,omitempty"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Order is a completed purchase. Items are immutable once attached.
type Order struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	Items     []OrderItem
}

// OrderItem is one line of an order with the price paid at the time.
type OrderItem struct {
	ID         string
	ProductID  string
	Quantity   int
	PriceCents int64
	CreatedAt  time.Time
}
