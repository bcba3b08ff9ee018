// Package store declares the input records of a small shop, annotated with
// `mark` tags. It doubles as the fixture for the static checker and the
// struct binding examples.
package store

import (
	"time"
)

// Product represents an individual item available for sale.
// We use int64 for Price to represent cents (lowest currency unit) to avoid floating-point errors.
type Product struct {
	ID          int64     `json:"id" mark:"coerce(int64); min(1)"`
	SKU         string    `json:"sku" mark:"trim; upper; pattern('^[A-Z]{3}-[0-9]{4}$')"`
	Name        string    `json:"name" mark:"trim; length(1, 120)"`
	Description string    `json:"description,omitempty" mark:"sanitize(strict); length(max=2000)"`
	PriceCents  int64     `json:"price_cents" mark:"coerce(int64); min(0)"`
	Inventory   int       `json:"inventory_count" mark:"coerce(int); min(0)"`
	CreatedAt   time.Time `json:"created_at" mark:"coerce(time)"`
}

// Customer represents the user placing orders.
type Customer struct {
	ID       int64   `json:"id" mark:"coerce(int64); min(1)"`
	Email    string  `json:"email" mark:"trim; lower; pattern('^[^@ ]+@[^@ ]+$')"`
	FullName string  `json:"full_name" mark:"trim; normalize; length(1, 200)"`
	Address  *string `json:"address" mark:"trim; length(max=400)"`
	IsActive bool    `json:"is_active" mark:"coerce(bool)"`
}

// Order represents a transaction made by a customer.
type Order struct {
	ID         int64       `json:"id" mark:"coerce(int64); min(1)"`
	CustomerID int64       `json:"customer_id" mark:"coerce(int64); min(1)"`
	Status     OrderStatus `json:"status" mark:"upper; oneof('PENDING', 'PAID', 'SHIPPED', 'CANCELLED')"`
	TotalCents int64       `json:"total_cents" mark:"coerce(int64); min(0)"`
	Items      []OrderItem `json:"items" mark:"length(min=1)"`
	OrderedAt  time.Time   `json:"ordered_at" mark:"coerce(time)"`
}

// OrderItem represents a specific product line within an order.
// It snapshots the price at the time of purchase.
type OrderItem struct {
	ProductID int64  `json:"product_id" mark:"coerce(int64); min(1)"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity" mark:"coerce(int); range(1, 1000)"`
	UnitPrice int64  `json:"unit_price" mark:"coerce(int64); min(0)"`
}

// OrderStatus is a custom type for type-safe status handling.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
)
