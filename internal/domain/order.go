package domain

import "github.com/shopspring/decimal"

// OrderStatus is the closed set of order states.
type OrderStatus string

// Order lifecycle
const (
	OrderStatusPending    OrderStatus = "pending"    // Created from an accepted quotation
	OrderStatusProcessing OrderStatus = "processing" // Vendor preparing shipment
	OrderStatusShipped    OrderStatus = "shipped"    // In transit, tracking number set
	OrderStatusDelivered  OrderStatus = "delivered"  // Received by the buyer
	OrderStatusCancelled  OrderStatus = "cancelled"  // Cancelled before shipment
)

// orderTransitions lists the allowed next states per current state.
// Anything not listed is denied.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransition reports whether an order may move from its current status to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order Model
type Order struct {
	ID             uint            `gorm:"primaryKey" json:"id"`                          // Primary key
	OrderNumber    string          `gorm:"unique;not null" json:"order_number"`           // Human-pasteable order number (ULID based)
	QuotationID    *uint           `json:"quotation_id,omitempty"`                        // Accepted quotation this order derives from
	BuyerID        uint            `gorm:"index;not null" json:"buyer_id"`                // Buying hospital
	VendorID       uint            `gorm:"index;not null" json:"vendor_id"`               // Supplying vendor
	VendorName     string          `json:"vendor_name"`                                   // Vendor company name, denormalized for export
	ProductName    string          `json:"product_name"`                                  // Ordered product description
	Quantity       int             `gorm:"not null" json:"quantity"`                      // Ordered quantity
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_amount"`        // Price x quantity at acceptance time
	Status         OrderStatus     `gorm:"type:varchar(16);default:pending" json:"status"` // Lifecycle state
	TrackingNumber string          `json:"tracking_number"`                               // Carrier tracking, set when shipped
	CreatedAt      int64           `gorm:"autoCreateTime:milli" json:"created_at"`        // Timestamp of creation in milliseconds
}
