package domain

import "github.com/shopspring/decimal"

// GroupBuyStatus is the closed set of group-buy states.
type GroupBuyStatus string

// Group-buy lifecycle
const (
	GroupBuyStatusOpen      GroupBuyStatus = "open"      // Accepting pledges
	GroupBuyStatusFilled    GroupBuyStatus = "filled"    // Committed quantity reached the target
	GroupBuyStatusCancelled GroupBuyStatus = "cancelled" // Cancelled by the vendor or an admin
)

// GroupBuy Model. Aggregates multiple buyers' demand for one product until a
// bulk-order threshold is reached.
type GroupBuy struct {
	ID                uint            `gorm:"primaryKey" json:"id"`                        // Primary key
	VendorID          uint            `gorm:"index;not null" json:"vendor_id"`             // Offering vendor
	ProductID         *uint           `json:"product_id,omitempty"`                        // Optional link to a catalog product
	ProductName       string          `gorm:"not null" json:"product_name"`                // Offered product name
	UnitPrice         decimal.Decimal `gorm:"type:decimal(12,2)" json:"unit_price"`        // Bulk unit price
	TargetQuantity    int             `gorm:"not null" json:"target_quantity"`             // Threshold to fill
	CommittedQuantity int             `gorm:"default:0" json:"committed_quantity"`         // Sum of pledge quantities
	Status            GroupBuyStatus  `gorm:"type:varchar(16);default:open" json:"status"` // Lifecycle state
	Deadline          int64           `gorm:"not null" json:"deadline"`                    // Pledge cutoff in milliseconds
	CreatedAt         int64           `gorm:"autoCreateTime:milli" json:"created_at"`      // Timestamp of creation in milliseconds
}

// GroupBuyPledge Model
type GroupBuyPledge struct {
	ID         uint  `gorm:"primaryKey" json:"id"`              // Primary key
	GroupBuyID uint  `gorm:"index;not null" json:"group_buy_id"` // Foreign key to GroupBuy
	BuyerID    uint  `gorm:"index;not null" json:"buyer_id"`     // Pledging buyer
	Quantity   int   `gorm:"not null" json:"quantity"`           // Pledged quantity, always > 0
	CreatedAt  int64 `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
}
