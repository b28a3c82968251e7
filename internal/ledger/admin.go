package ledger

import (
	"database/sql"
	"fmt"

	"famili/internal/apperrors"
	"famili/internal/model"
)

// Admin operations. Point adjustment is the one sanctioned way to change a
// balance outside task verification and purchases; every call is logged.

func (l *Ledger) requireAdmin(externalID string) (*model.User, error) {
	u, err := l.users.GetByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsAdmin {
		return nil, apperrors.ErrPermissionDenied
	}
	return u, nil
}

// CreateUser registers a member under a new external id. Duplicate external
// ids fail with InvalidReference.
func (l *Ledger) CreateUser(name, externalID string, role model.Role, requesterExternalID string) (*model.User, error) {
	admin, err := l.requireAdmin(requesterExternalID)
	if err != nil {
		return nil, err
	}

	existing, err := l.users.GetByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrInvalidReference
	}

	u, err := l.users.Create(name, externalID, role, false)
	if err != nil {
		return nil, err
	}

	l.logger.Info("user created", "user_id", u.ID, "role", u.Role, "admin_id", admin.ID)
	return u, nil
}

// DeleteUser removes a member. Assigned tasks fall back to unassigned;
// purchase history goes with the user.
func (l *Ledger) DeleteUser(userID int64, requesterExternalID string) error {
	admin, err := l.requireAdmin(requesterExternalID)
	if err != nil {
		return err
	}

	existing, err := l.users.GetByID(userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.ErrNotFound
	}

	if err := l.users.Delete(userID); err != nil {
		return err
	}
	l.logger.Info("user deleted", "user_id", userID, "admin_id", admin.ID)
	return nil
}

// AdjustPoints applies a signed delta to a member's balance. The balance can
// never go below zero; a delta that would fails with InsufficientFunds.
func (l *Ledger) AdjustPoints(userID int64, delta int, requesterExternalID string) (*model.User, error) {
	admin, err := l.requireAdmin(requesterExternalID)
	if err != nil {
		return nil, err
	}

	tx, err := l.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var points int
	err = tx.QueryRow(`SELECT points FROM users WHERE id = ?`, userID).Scan(&points)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get points: %w", err)
	}
	if points+delta < 0 {
		return nil, apperrors.ErrInsufficientFunds
	}

	_, err = tx.Exec(
		`UPDATE users SET points = points + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		delta, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("adjust points: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit adjust: %w", err)
	}

	l.logger.Info("points adjusted", "user_id", userID, "delta", delta, "admin_id", admin.ID)
	return l.users.GetByID(userID)
}

// SetAdmin grants or revokes the admin flag.
func (l *Ledger) SetAdmin(userID int64, isAdmin bool, requesterExternalID string) (*model.User, error) {
	admin, err := l.requireAdmin(requesterExternalID)
	if err != nil {
		return nil, err
	}

	existing, err := l.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.ErrNotFound
	}

	u, err := l.users.SetAdmin(userID, isAdmin)
	if err != nil {
		return nil, err
	}
	l.logger.Info("admin flag changed", "user_id", userID, "is_admin", isAdmin, "admin_id", admin.ID)
	return u, nil
}

// ListUsers returns every member, admin-only.
func (l *Ledger) ListUsers(requesterExternalID string) ([]model.User, error) {
	if _, err := l.requireAdmin(requesterExternalID); err != nil {
		return nil, err
	}
	return l.users.List()
}
