package domain

import "time"

// Item is a product listed for sale by a vendor.
// Stock is only ever decremented by checkout; price and stock invariants
// (price > 0, stock >= 0) are enforced by the market services.
type Item struct {
	ID          int64     `gorm:"primaryKey" json:"id,string" form:"id"`
	Title       string    `gorm:"size:64;index" json:"title" form:"title"`
	Description string    `gorm:"size:300" json:"description" form:"description"`
	Price       float64   `json:"price" form:"price"`
	Stock       int       `json:"stock" form:"stock"`
	Featured    bool      `gorm:"index" json:"featured" form:"featured"`
	Image       string    `gorm:"size:1024" json:"image" form:"image"`
	VendorID    int64     `gorm:"index" json:"vendor_id,string" form:"vendor_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Item) TableName() string {
	return "mkt_item"
}

// SearchID implements search.Searchable.
func (i Item) SearchID() int64 {
	return i.ID
}

// SearchIndex implements search.Searchable.
func (i Item) SearchIndex() string {
	return "mkt_item"
}

// SearchValues returns the indexed fields, title and description only.
func (i Item) SearchValues() map[string]interface{} {
	return map[string]interface{}{
		"title":       i.Title,
		"description": i.Description,
	}
}
