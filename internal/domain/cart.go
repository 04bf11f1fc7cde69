package domain

import "time"

// Cart is a customer's shopping cart, one per customer, created at
// registration and never deleted while the customer exists. CartPrice is a
// denormalized running total; every mutating operation in the market package
// recomputes it inside the same transaction so it is never observably stale.
type Cart struct {
	ID         int64     `gorm:"primaryKey" json:"id,string" form:"id"`
	CustomerID int64     `gorm:"uniqueIndex" json:"customer_id,string" form:"customer_id"`
	CartPrice  float64   `json:"cart_price" form:"cart_price"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Cart) TableName() string {
	return "mkt_cart"
}

// CartItem is one (item, quantity) line inside a cart. At most one line
// exists per (cart, item) pair; adding an item already present increments
// quantity instead of inserting a duplicate row.
type CartItem struct {
	ID        int64     `gorm:"primaryKey" json:"id,string" form:"id"`
	CartID    int64     `gorm:"index:idx_cart_item,unique" json:"cart_id,string" form:"cart_id"`
	ItemID    int64     `gorm:"index:idx_cart_item,unique" json:"item_id,string" form:"item_id"`
	Quantity  int       `json:"quantity" form:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (CartItem) TableName() string {
	return "mkt_cart_item"
}
