package domain

// Category Model
type Category struct {
	ID          uint   `gorm:"primaryKey" json:"id"`       // Primary key
	Name        string `gorm:"unique;not null" json:"name"` // Display name, unique
	Description string `json:"description"`                 // Short description
	Icon        string `json:"icon"`                        // Icon identifier for the UI
}
