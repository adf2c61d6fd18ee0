package domain

import "time"

// SKU is a sellable catalog item. Browsing history references SKUs by ID.
type SKU struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null;index" json:"name"`
	Caption   string    `gorm:"size:500" json:"caption"`
	Price     float64   `gorm:"not null" json:"price"`
	Stock     int       `gorm:"not null;default:0" json:"stock"`
	OnSale    bool      `gorm:"not null;default:true" json:"on_sale"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
