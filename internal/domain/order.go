package domain

import "time"

// Order is an append-only purchase record, one per cart line consumed by a
// successful checkout. Name, Address and Price are denormalized snapshots so
// orders survive later Item or User mutation. Orders are never updated;
// the only delete path is the vendor's mark-complete action.
type Order struct {
	ID         int64     `gorm:"primaryKey" json:"id,string" form:"id"`
	Name       string    `gorm:"size:64" json:"name" form:"name"`
	Address    string    `gorm:"size:128" json:"address" form:"address"`
	Quantity   int       `json:"quantity" form:"quantity"`
	Price      float64   `json:"price" form:"price"`
	ItemID     int64     `gorm:"index" json:"item_id,string" form:"item_id"`
	CustomerID int64     `gorm:"index" json:"customer_id,string" form:"customer_id"`
	VendorID   int64     `gorm:"index" json:"vendor_id,string" form:"vendor_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "mkt_order"
}
