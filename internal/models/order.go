package models

import (
	"time"

	"github.com/google/uuid"
)

type Order struct {
	BaseModel
	UserID      uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	User        *User       `json:"user,omitempty"`
	OrderNumber string      `gorm:"uniqueIndex" json:"order_number"`
	Status      OrderStatus `gorm:"type:varchar(30)" json:"status"`
	PlacedAt    time.Time   `json:"placed_at"`
	TotalAmount float64     `json:"total_amount"`
	Currency    string      `json:"currency"`

	// Shipping address snapshot taken at checkout.
	ShippingAddressID *uuid.UUID `gorm:"type:uuid" json:"shipping_address_id"`
	AddressLine       string     `json:"address_line"`
	Apartment         string     `json:"apartment"`
	City              string     `json:"city"`
	District          string     `json:"district"`
	PostalCode        string     `json:"postal_code"`

	PaymentID        string `json:"payment_id"`
	RefundID         string `json:"refund_id"`
	HasReturnRequest bool   `json:"has_return_request"`

	// Version serializes writes per order. Saves guarded on the loaded
	// version fail with a conflict instead of committing a stale snapshot.
	Version int `gorm:"default:1" json:"-"`

	Items []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID uuid.UUID `gorm:"type:uuid;index" json:"order_id"`

	// Product snapshot so order history survives product edits.
	ProductID   *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	ProductName string     `json:"product_name"`
	SellerID    *uuid.UUID `gorm:"type:uuid;index" json:"seller_id"`
	SellerName  string     `json:"seller_name"`

	Quantity  int             `json:"quantity"`
	UnitPrice float64         `json:"unit_price"`
	LineTotal float64         `json:"line_total"`
	Status    OrderItemStatus `gorm:"type:varchar(30)" json:"status"`

	HasReturnRequest bool       `json:"has_return_request"`
	Refunded         bool       `json:"refunded"`
	RefundedAt       *time.Time `json:"refunded_at"`
	RefundReason     string     `json:"refund_reason"`
}

// OwnedBySeller reports whether the item's product belongs to sellerID.
func (i *OrderItem) OwnedBySeller(sellerID uuid.UUID) bool {
	return i.SellerID != nil && *i.SellerID == sellerID
}
