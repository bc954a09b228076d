package domain

import "github.com/shopspring/decimal"

// RFQStatus is the closed set of RFQ lifecycle states.
type RFQStatus string

// RFQ lifecycle
const (
	RFQStatusOpen    RFQStatus = "open"    // Accepting quotations
	RFQStatusAwarded RFQStatus = "awarded" // A quotation was accepted
	RFQStatusClosed  RFQStatus = "closed"  // Closed by the buyer without award
)

// RFQ Model
type RFQ struct {
	ID         uint        `gorm:"primaryKey" json:"id"`                        // Primary key
	Reference  string      `gorm:"unique;not null" json:"reference"`            // Human-pasteable RFQ reference (ULID based)
	BuyerID    uint        `gorm:"index;not null" json:"buyer_id"`              // Posting buyer
	Status     RFQStatus   `gorm:"type:varchar(16);default:open" json:"status"` // Lifecycle state
	Items      []RFQItem   `gorm:"constraint:OnDelete:CASCADE" json:"items"`    // Requested line items
	Quotations []Quotation `gorm:"constraint:OnDelete:CASCADE" json:"quotations,omitempty"` // Vendor offers
	CreatedAt  int64       `gorm:"autoCreateTime:milli" json:"created_at"`      // Timestamp of creation in milliseconds
}

// RFQItem Model
type RFQItem struct {
	ID          uint   `gorm:"primaryKey" json:"id"`        // Primary key
	RFQID       uint   `gorm:"index;not null" json:"rfq_id"` // Foreign key to RFQ
	ProductID   *uint  `json:"product_id,omitempty"`         // Optional link to a catalog product
	ProductName string `gorm:"not null" json:"product_name"` // Requested product name
	Quantity    int    `gorm:"not null" json:"quantity"`     // Requested quantity, always > 0
}

// QuotationStatus is the closed set of quotation states.
type QuotationStatus string

// Quotation lifecycle
const (
	QuotationStatusPending  QuotationStatus = "pending"  // Awaiting buyer decision
	QuotationStatusAccepted QuotationStatus = "accepted" // Chosen by the buyer, produced an order
	QuotationStatusRejected QuotationStatus = "rejected" // Passed over when a sibling was accepted
)

// Quotation Model
type Quotation struct {
	ID           uint            `gorm:"primaryKey" json:"id"`                           // Primary key
	RFQID        uint            `gorm:"index;not null" json:"rfq_id"`                   // Foreign key to RFQ
	VendorID     uint            `gorm:"index;not null" json:"vendor_id"`                // Quoting vendor
	VendorName   string          `json:"vendor_name"`                                    // Vendor company name, denormalized for export
	Price        decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`                // Offered unit price
	Quantity     int             `gorm:"not null" json:"quantity"`                       // Offered quantity
	PaymentTerms string          `json:"payment_terms"`                                  // e.g. "Net 30"
	DeliveryTime string          `json:"delivery_time"`                                  // e.g. "2 weeks"
	Status       QuotationStatus `gorm:"type:varchar(16);default:pending" json:"status"` // Lifecycle state
	CreatedAt    int64           `gorm:"autoCreateTime:milli" json:"created_at"`         // Timestamp of creation in milliseconds
}
