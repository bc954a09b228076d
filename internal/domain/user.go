package domain

// Role is the closed set of account roles.
type Role string

// Account roles
const (
	RoleAdmin  Role = "admin"  // Platform administrator
	RoleVendor Role = "vendor" // Supplier submitting quotations
	RoleBuyer  Role = "buyer"  // Hospital posting RFQs
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleVendor, RoleBuyer:
		return true
	}
	return false // Unknown roles are always denied
}

// Vendor quotation delivery preferences
const (
	QuotationPrefEmail = "email"  // Notify by email only
	QuotationPrefInApp = "in_app" // Notify in-app only
	QuotationPrefBoth  = "both"   // Notify both ways
)

// ValidQuotationPreference reports whether p is an accepted preference value.
func ValidQuotationPreference(p string) bool {
	return p == QuotationPrefEmail || p == QuotationPrefInApp || p == QuotationPrefBoth
}

// User Model
type User struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`                       // Primary key
	Email               string `gorm:"unique;not null" json:"email"`               // Unique login email, stored lowercase
	Password            string `gorm:"not null" json:"-"`                          // Hashed password, never serialized
	CompanyName         string `json:"company_name"`                               // Hospital or supplier name
	Phone               string `json:"phone"`                                      // Contact phone
	Address             string `json:"address"`                                    // Postal address
	Role                Role   `gorm:"type:varchar(16);default:buyer" json:"role"` // Role: admin, vendor or buyer
	Verified            bool   `gorm:"default:false" json:"verified"`              // Email ownership proven
	Status              string `gorm:"default:active" json:"status"`               // Account status: active or suspended
	QuotationPreference string `gorm:"default:in_app" json:"quotation_preference"` // Vendor-only notification preference
	CreatedAt           int64  `gorm:"autoCreateTime:milli" json:"created_at"`     // Timestamp of creation in milliseconds
}
