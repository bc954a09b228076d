package domain

// Notification types
const (
	NotificationQuotationReceived = "quotation_received" // A vendor quoted the buyer's RFQ
	NotificationQuotationAccepted = "quotation_accepted" // The buyer accepted the vendor's quotation
	NotificationOrderUpdate       = "order_update"       // Order status changed
	NotificationGroupBuyFilled    = "group_buy_filled"   // A group buy reached its target
	NotificationAdminContact      = "admin_contact"      // A user message to the platform admins
	NotificationSystem            = "system"             // Platform-originated message
)

// Notification Model
type Notification struct {
	ID        uint   `gorm:"primaryKey" json:"id"`                   // Primary key
	UserID    uint   `gorm:"index;not null" json:"user_id"`          // Recipient
	Type      string `gorm:"not null" json:"type"`                   // One of the Notification* constants
	Title     string `json:"title"`                                  // Short headline
	Message   string `gorm:"type:text" json:"message"`               // Body text
	Read      bool   `gorm:"default:false" json:"read"`              // Flips false -> true only
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
}
