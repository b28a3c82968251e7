package ledger

import (
	"famili/internal/apperrors"
	"famili/internal/model"
)

// Shop catalog management. Items have no lifecycle beyond CRUD; only the
// purchase flow moves points.

// ListShop returns the catalog. Open to every caller.
func (l *Ledger) ListShop() ([]model.ShopItem, error) {
	return l.shop.ListItems()
}

// CreateShopItem adds an item to the catalog. Parent-only.
func (l *Ledger) CreateShopItem(title, description string, price int, requesterExternalID string) (*model.ShopItem, error) {
	if _, err := l.requireParent(requesterExternalID); err != nil {
		return nil, err
	}
	return l.shop.CreateItem(title, description, price)
}

// UpdateShopItem edits an item. Parent-only. Existing purchases keep the
// price they were debited at.
func (l *Ledger) UpdateShopItem(itemID int64, title, description string, price int, requesterExternalID string) (*model.ShopItem, error) {
	if _, err := l.requireParent(requesterExternalID); err != nil {
		return nil, err
	}

	existing, err := l.shop.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.ErrNotFound
	}

	return l.shop.UpdateItem(itemID, title, description, price)
}

// DeleteShopItem removes an item and, by cascade, its purchase records.
// Points already debited are not returned.
func (l *Ledger) DeleteShopItem(itemID int64, requesterExternalID string) error {
	if _, err := l.requireParent(requesterExternalID); err != nil {
		return err
	}

	existing, err := l.shop.GetItemByID(itemID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.ErrNotFound
	}

	return l.shop.DeleteItem(itemID)
}
