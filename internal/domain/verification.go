package domain

import "time"

// VerificationCodeTTL is how long an emailed code stays valid.
const VerificationCodeTTL = 15 * time.Minute

// VerificationCode Model
type VerificationCode struct {
	ID        uint   `gorm:"primaryKey"`           // Primary key
	UserID    uint   `gorm:"index;not null"`       // Foreign key to User
	Code      string `gorm:"type:varchar(6)"`      // 6-digit numeric code
	ExpiresAt int64  `gorm:"not null"`             // Expiry timestamp in milliseconds
	Verified  bool   `gorm:"default:false"`        // Consumed flag, flips once
	CreatedAt int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}

// Expired reports whether the code is past its validity window at the given time.
func (v VerificationCode) Expired(now time.Time) bool {
	return now.UnixMilli() > v.ExpiresAt
}
