package domain

// CartItem is one line of a buyer's RFQ cart. The cart itself lives in redis
// keyed by user id, not in the database.
type CartItem struct {
	ProductID   uint   `json:"product_id"`   // Catalog product
	ProductName string `json:"product_name"` // Denormalized name for display
	Quantity    int    `json:"quantity"`     // Desired quantity, always > 0
}
