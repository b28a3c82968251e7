package ledger

import (
	"famili/internal/apperrors"
	"famili/internal/model"
	"famili/internal/task"
)

// Snapshot is the point-in-time, role-filtered view a polling client
// reconciles against. The caller's balance is always included so the client
// never needs a second round trip for it.
type Snapshot struct {
	Tasks            []model.Task            `json:"tasks"`
	FamilyStats      []model.MemberStats     `json:"family_stats"`
	PendingPurchases []model.PendingPurchase `json:"pending_purchases"`
	UserPoints       int                     `json:"user_points"`
}

// History is a member's completed tasks and full purchase record, newest
// first. Completed tasks leave the live view and only surface here.
type History struct {
	Tasks     []model.Task     `json:"tasks"`
	Purchases []model.Purchase `json:"purchases"`
}

// Sync assembles a consistent snapshot for the caller. An unknown external
// id fails with NotFound; that is the only gate into the system.
func (l *Ledger) Sync(externalID string) (*Snapshot, error) {
	u, err := l.users.GetByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.ErrNotFound
	}

	all, err := l.tasks.List()
	if err != nil {
		return nil, err
	}
	visible := task.FilterVisible(u.Role, u.ID, all)

	stats, err := l.users.ListChildStats()
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []model.MemberStats{}
	}

	pending := []model.PendingPurchase{}
	if u.Role == model.RoleParent {
		pending, err = l.shop.ListPendingPurchases()
		if err != nil {
			return nil, err
		}
		if pending == nil {
			pending = []model.PendingPurchase{}
		}
	}

	return &Snapshot{
		Tasks:            visible,
		FamilyStats:      stats,
		PendingPurchases: pending,
		UserPoints:       u.Points,
	}, nil
}

// GetHistory returns the caller's completed tasks and purchases.
func (l *Ledger) GetHistory(externalID string) (*History, error) {
	u, err := l.users.GetByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.ErrNotFound
	}

	tasks, err := l.tasks.ListCompletedByAssignee(u.ID)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}

	purchases, err := l.shop.ListPurchasesByUser(u.ID)
	if err != nil {
		return nil, err
	}
	if purchases == nil {
		purchases = []model.Purchase{}
	}

	return &History{Tasks: tasks, Purchases: purchases}, nil
}

// FamilyStats is the shared family-wide progress view.
func (l *Ledger) FamilyStats() ([]model.MemberStats, error) {
	return l.users.ListChildStats()
}

// FamilyMembers lists all child users.
func (l *Ledger) FamilyMembers() ([]model.User, error) {
	return l.users.ListChildren()
}
