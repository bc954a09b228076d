package domain

// SiteSetting Model. The key column is named setting_key because KEY is
// reserved in MySQL.
type SiteSetting struct {
	ID         uint   `gorm:"primaryKey" json:"id"`                              // Primary key
	SettingKey string `gorm:"column:setting_key;unique;not null" json:"key"`     // Setting name
	Value      string `gorm:"type:text" json:"value"`                            // Override value
	UpdatedAt  int64  `gorm:"autoUpdateTime:milli" json:"updated_at"`            // Timestamp of last update in milliseconds
}

// DefaultSiteSettings holds the hardcoded fallback for every known setting key.
// GetSiteSettings always returns every key here, overridden by persisted rows.
var DefaultSiteSettings = map[string]string{
	"site_name":        "MedSupply Exchange",
	"support_email":    "support@medsupply.example",
	"support_phone":    "+1-800-000-0000",
	"currency":         "USD",
	"rfq_expiry_days":  "14",
	"maintenance_mode": "false",
	"welcome_message":  "Welcome to the MedSupply Exchange marketplace.",
}

// KnownSettingKey reports whether key is part of the default set.
func KnownSettingKey(key string) bool {
	_, ok := DefaultSiteSettings[key]
	return ok
}
