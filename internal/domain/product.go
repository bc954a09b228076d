package domain

import "github.com/shopspring/decimal"

// Product Model
type Product struct {
	ID             uint            `gorm:"primaryKey" json:"id"`                 // Primary key
	VendorID       uint            `gorm:"index;not null" json:"vendor_id"`      // Owning vendor
	CategoryID     uint            `gorm:"index;not null" json:"category_id"`    // Foreign key to Category
	Name           string          `gorm:"not null" json:"name"`                 // Product name
	Description    string          `gorm:"type:text;not null" json:"description"` // Product description
	Specifications string          `gorm:"type:text" json:"specifications"`      // Free-form technical specifications
	SKU            string          `json:"sku"`                                  // Vendor SKU
	Price          decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`      // List price
	Image          string          `json:"image"`                                // CDN URL of the product image
	CreatedAt      int64           `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
}
