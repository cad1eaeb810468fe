// Package ecommerce synthesizes a self-consistent e-commerce dataset:
// users, products, orders, order line items, and behavioral events. All
// cross-table references are drawn from previously generated tables, so the
// output always satisfies referential integrity, and the whole pipeline is
// reproducible from a single seed.
package ecommerce

import "time"

// Order statuses.
const (
	StatusCompleted = "completed"
	StatusShipped   = "shipped"
	StatusCancelled = "cancelled"
)

// Event types.
const (
	EventPageView     = "page_view"
	EventAddToCart    = "add_to_cart"
	EventCheckout     = "checkout"
	EventPurchase     = "purchase"
	EventSessionStart = "session_start"
)

// User is a registered account. Emails are unique within one generation run.
type User struct {
	ID                 string
	Email              string
	FirstName          string
	LastName           string
	SignupDate         time.Time
	Country            string
	City               string
	AcquisitionChannel string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Product is a catalog entry. Cost is always strictly below price.
type Product struct {
	ID          string
	Name        string
	Category    string
	Subcategory string
	Price       float64
	Cost        float64
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Order references an existing user and never predates that user's signup.
// TotalAmount starts at zero and only becomes final once the order's line
// items have been generated.
type Order struct {
	ID              string
	UserID          string
	OrderDate       time.Time
	Status          string
	TotalAmount     float64
	ShippingCountry string
	ShippingCity    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is one line of an order. PriceAtTime captures the product price
// at generation time, decoupled from the product's current price.
type OrderItem struct {
	OrderID     string
	ProductID   string
	Quantity    int
	PriceAtTime float64
}

// Event is a behavioral event. ProductID is empty for events that do not
// involve a product. Purchase events mirror orders one-to-one.
type Event struct {
	ID        string
	UserID    string
	Type      string
	ProductID string
	Timestamp time.Time
	SessionID string
	CreatedAt time.Time
}

// Counts holds the per-table row counts for a generation run.
type Counts struct {
	Users    int
	Products int
	Orders   int
	Events   int
}

// Dataset is the finished output of one generation run. Tables are listed
// in loader dependency order: users and products carry no references,
// orders reference users, order items reference orders and products, and
// events reference users and optionally products.
type Dataset struct {
	Users      []User
	Products   []Product
	Orders     []Order
	OrderItems []OrderItem
	Events     []Event
}
