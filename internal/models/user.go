package models

// User represents an account that can shop, sell or administrate.
type User struct {
	BaseModel
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	DisplayName  string    `json:"display_name"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `gorm:"type:varchar(20);default:'customer'" json:"role"`
	Addresses    []Address `json:"addresses,omitempty"`
	Orders       []Order   `json:"orders,omitempty"`
	Products     []Product `gorm:"foreignKey:SellerID" json:"products,omitempty"`
}
