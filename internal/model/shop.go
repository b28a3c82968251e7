package model

import "time"

type ShopItem struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int       `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PurchaseStatus string

const (
	PurchaseOrdered   PurchaseStatus = "ordered"
	PurchaseFulfilled PurchaseStatus = "fulfilled"
)

type Purchase struct {
	ID     int64          `json:"id"`
	UserID int64          `json:"user_id"`
	ItemID int64          `json:"item_id"`
	// PricePaid is the item price at purchase time. The item may be edited
	// later; history always shows what was actually debited.
	PricePaid int            `json:"price_paid"`
	Status    PurchaseStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

// PendingPurchase is a purchase joined with buyer and item for the parent
// approval queue.
type PendingPurchase struct {
	Purchase
	UserName  string `json:"user_name"`
	ItemTitle string `json:"item_title"`
}
