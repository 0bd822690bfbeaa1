package models

import (
	"time"
)

const (
	OrderStatusPlaced = "placed"
)

// Order is the persisted result of checking out one restaurant group of a cart.
type Order struct {
	ID               string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CartID           string     `gorm:"type:varchar(64);not null;index" json:"cart_id"`
	UserID           string     `gorm:"type:varchar(36);index" json:"user_id"`
	RestaurantID     string     `gorm:"type:varchar(64);index" json:"restaurant_id"`
	RestaurantName   string     `gorm:"type:varchar(255)" json:"restaurant_name"`
	Items            string     `gorm:"type:text" json:"items"` // JSON string
	TotalAmount      float64    `gorm:"type:decimal(10,2)" json:"total_amount"`
	PaymentReference string     `gorm:"type:varchar(128)" json:"payment_reference"`
	Status           string     `gorm:"type:varchar(20);default:'placed'" json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `gorm:"index" json:"-"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	CartEntryID string   `json:"cart_entry_id"`
	ProductID   string   `json:"product_id"`
	ProductName string   `json:"product_name"`
	SizeID      string   `json:"size_id,omitempty"`
	AddOnIDs    []string `json:"addon_ids,omitempty"`
	Quantity    int      `json:"quantity"`
	Price       float64  `json:"price"`
}
