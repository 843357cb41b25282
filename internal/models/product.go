package models

import "github.com/google/uuid"

type Product struct {
	BaseModel
	Slug          string     `gorm:"uniqueIndex" json:"slug"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Price         float64    `json:"price"`
	Currency      string     `json:"currency"`
	StockQuantity int        `json:"stock_quantity"`
	ImageURL      string     `json:"image_url"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	RatingAverage float64    `json:"rating_average"`
	RatingCount   int        `json:"rating_count"`
	SellerID      *uuid.UUID `gorm:"type:uuid;index" json:"seller_id"`
	Seller        *User      `json:"seller,omitempty"`
	CategoryID    *uuid.UUID `gorm:"type:uuid" json:"category_id"`
	Category      *Category  `json:"category,omitempty"`
	Reviews       []Review   `json:"reviews,omitempty"`
}

type Review struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User      *User     `json:"user,omitempty"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
}
