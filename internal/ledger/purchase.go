package ledger

import (
	"database/sql"
	"fmt"

	"famili/internal/apperrors"
	"famili/internal/model"
)

// Buy debits the buyer and records an ordered purchase in one transaction.
// The affordability check, the debit, and the insert all see the same state;
// two concurrent purchases against the same balance cannot both pass the
// check. The item price is re-read and snapshotted inside the transaction.
func (l *Ledger) Buy(itemID int64, buyerExternalID string) (*model.Purchase, error) {
	buyer, err := l.users.GetByExternalID(buyerExternalID)
	if err != nil {
		return nil, err
	}
	if buyer == nil {
		return nil, apperrors.ErrNotFound
	}

	tx, err := l.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var price int
	err = tx.QueryRow(`SELECT price FROM shop_items WHERE id = ?`, itemID).Scan(&price)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item price: %w", err)
	}

	var points int
	err = tx.QueryRow(`SELECT points FROM users WHERE id = ?`, buyer.ID).Scan(&points)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get buyer points: %w", err)
	}
	if points < price {
		return nil, apperrors.ErrInsufficientFunds
	}

	_, err = tx.Exec(
		`UPDATE users SET points = points - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		price, buyer.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("debit buyer: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO purchases (user_id, item_id, price_paid, status) VALUES (?, ?, ?, ?)`,
		buyer.ID, itemID, price, string(model.PurchaseOrdered),
	)
	if err != nil {
		return nil, fmt.Errorf("insert purchase: %w", err)
	}
	purchaseID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit buy: %w", err)
	}

	l.logger.Info("purchase ordered",
		"purchase_id", purchaseID, "user_id", buyer.ID,
		"item_id", itemID, "price_paid", price)
	return l.shop.GetPurchaseByID(purchaseID)
}

// ConfirmPurchase transitions an ordered purchase to fulfilled. Parent-only.
// Confirming twice fails with InvalidState.
func (l *Ledger) ConfirmPurchase(purchaseID int64, requesterExternalID string) error {
	parent, err := l.requireParent(requesterExternalID)
	if err != nil {
		return err
	}

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var status model.PurchaseStatus
	err = tx.QueryRow(`SELECT status FROM purchases WHERE id = ?`, purchaseID).Scan(&status)
	if err == sql.ErrNoRows {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get purchase status: %w", err)
	}
	if status != model.PurchaseOrdered {
		return apperrors.ErrInvalidState
	}

	_, err = tx.Exec(
		`UPDATE purchases SET status = ? WHERE id = ?`,
		string(model.PurchaseFulfilled), purchaseID,
	)
	if err != nil {
		return fmt.Errorf("fulfill purchase: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit confirm: %w", err)
	}

	l.logger.Info("purchase fulfilled", "purchase_id", purchaseID, "parent_id", parent.ID)
	return nil
}

// ListPendingPurchases returns the parent approval queue.
func (l *Ledger) ListPendingPurchases(requesterExternalID string) ([]model.PendingPurchase, error) {
	if _, err := l.requireParent(requesterExternalID); err != nil {
		return nil, err
	}
	return l.shop.ListPendingPurchases()
}
