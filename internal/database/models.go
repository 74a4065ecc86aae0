package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// models.go: row types returned by the query methods in this package, one
// struct per table, named and shaped the way sqlc would generate them.

type User struct {
	InternalID                     int64
	ExternalID                     uuid.UUID
	FirstName                      string
	LastName                       string
	Email                          string
	PasswordHash                   string
	AddressStreet                  sql.NullString
	AddressCity                    sql.NullString
	AddressPostal                  sql.NullString
	AddressCountry                 sql.NullString
	LastLoginAt                    sql.NullTime
	LastNotificationsViewedAt      time.Time
	DaysBetweenOrderNotifications  int32
	OrderNotificationsStartAt      time.Time
	OrderNotificationsNextAt       time.Time
	PendingOrderNotification       bool
	OrderNotificationsViaEmail     bool
	LastNotificationSentAt         sql.NullTime
	CreatedAt                      time.Time
	UpdatedAt                      time.Time
}

type Department struct {
	DepartmentID int32
	Department   string
}

type Aisle struct {
	AisleID int32
	Aisle   string
}

type Product struct {
	ProductID    int32
	ProductName  string
	AisleID      int32
	DepartmentID int32
}

type ProductEnriched struct {
	ProductID  int32
	Description sql.NullString
	Price      float64
	ImageURL   sql.NullString
	Popularity int32
	Rating     float64
}

// ProductView is a product row joined with its aisle, department, and
// optional enrichment — the shape every catalog read returns.
type ProductView struct {
	ProductID    int32
	ProductName  string
	AisleID      int32
	Aisle        string
	DepartmentID int32
	Department   string
	Description  sql.NullString
	Price        float64
	ImageURL     sql.NullString
	Popularity   int32
	Rating       float64
}

type Cart struct {
	CartID    int32
	UserID    int64
	UpdatedAt time.Time
}

type CartItem struct {
	CartID         int32
	ProductID      int32
	Quantity       int32
	AddToCartOrder int32
	Reordered      bool
}

// CartItemView is a cart item joined with its product view, the shape
// returned by every cart read.
type CartItemView struct {
	ProductView
	Quantity       int32
	AddToCartOrder int32
	Reordered      bool
}

type Order struct {
	OrderID         int64
	UserID          int64
	OrderNumber     int32
	DeliveryName    sql.NullString
	DeliveryPhone   sql.NullString
	DeliveryStreet  sql.NullString
	DeliveryCity    sql.NullString
	DeliveryPostal  sql.NullString
	DeliveryCountry sql.NullString
	TrackingNumber  sql.NullString
	TrackingCarrier sql.NullString
	TrackingURL     sql.NullString
	Invoice         []byte
	TotalItems      int32
	TotalPrice      float64
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	OrderID        int64
	ProductID      int32
	Quantity       int32
	AddToCartOrder int32
	Reordered      bool
}

// OrderItemView is an order item joined with its product view.
type OrderItemView struct {
	ProductView
	Quantity       int32
	AddToCartOrder int32
	Reordered      bool
}

type OrderStatusHistory struct {
	HistoryID int64
	OrderID   int64
	Status    string
	ChangedAt time.Time
	ChangedBy sql.NullString
	Note      sql.NullString
}
