// Package ledger implements the reward ledger and task lifecycle engine.
// Every operation that moves points or changes task status runs inside a
// single database transaction; transactions begin with the write lock held
// (see database.Open), so check-then-act sequences never interleave.
package ledger

import (
	"database/sql"
	"fmt"
	"log/slog"

	"famili/internal/apperrors"
	"famili/internal/model"
	"famili/internal/store"
	"famili/internal/task"
)

type Ledger struct {
	db     *sql.DB
	users  *store.UserStore
	tasks  *store.TaskStore
	shop   *store.ShopStore
	logger *slog.Logger
}

func New(db *sql.DB, users *store.UserStore, tasks *store.TaskStore, shop *store.ShopStore, logger *slog.Logger) *Ledger {
	return &Ledger{db: db, users: users, tasks: tasks, shop: shop, logger: logger}
}

// GetUser resolves an external id to a user.
func (l *Ledger) GetUser(externalID string) (*model.User, error) {
	u, err := l.users.GetByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.ErrNotFound
	}
	return u, nil
}

// requireParent resolves the caller and enforces the parent role. An
// unregistered caller is indistinguishable from an unauthorized one.
func (l *Ledger) requireParent(externalID string) (*model.User, error) {
	u, err := l.users.GetByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Role != model.RoleParent {
		return nil, apperrors.ErrPermissionDenied
	}
	return u, nil
}

// CreateTask creates a task in the active state. Parent-only. A non-global
// task must name an existing assignee.
func (l *Ledger) CreateTask(title, description string, reward int, assigneeID *int64, isGlobal bool, creatorExternalID string) (*model.Task, error) {
	if _, err := l.requireParent(creatorExternalID); err != nil {
		return nil, err
	}

	if assigneeID != nil {
		assignee, err := l.users.GetByID(*assigneeID)
		if err != nil {
			return nil, err
		}
		if assignee == nil {
			return nil, apperrors.ErrInvalidReference
		}
	} else if !isGlobal {
		return nil, apperrors.ErrInvalidReference
	}

	return l.tasks.Create(title, description, reward, assigneeID, isGlobal)
}

// ClaimTask moves an active task to in_progress and assigns it to the
// caller. Claiming a global task converts it into a personal one; the
// narrowing is not reversible by unclaiming.
func (l *Ledger) ClaimTask(taskID int64, externalID string) (*model.Task, error) {
	u, err := l.users.GetByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.ErrNotFound
	}

	tx, err := l.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var status model.TaskStatus
	err = tx.QueryRow(`SELECT status FROM tasks WHERE id = ?`, taskID).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task status: %w", err)
	}
	if status != model.TaskActive {
		return nil, apperrors.ErrInvalidState
	}

	_, err = tx.Exec(
		`UPDATE tasks SET status = ?, assignee_id = ?, is_global = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(model.TaskInProgress), u.ID, taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("claim task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit claim: %w", err)
	}

	l.logger.Info("task claimed", "task_id", taskID, "user_id", u.ID)
	return l.tasks.GetByID(taskID)
}

// SubmitTask moves an in_progress task to pending review. No side effects
// beyond the status flag.
func (l *Ledger) SubmitTask(taskID int64) (*model.Task, error) {
	tx, err := l.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var status model.TaskStatus
	err = tx.QueryRow(`SELECT status FROM tasks WHERE id = ?`, taskID).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task status: %w", err)
	}
	if status != model.TaskInProgress {
		return nil, apperrors.ErrInvalidState
	}

	_, err = tx.Exec(
		`UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(model.TaskPending), taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("submit task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit submit: %w", err)
	}

	return l.tasks.GetByID(taskID)
}

// VerifyTask resolves a pending task. Approval marks the task completed and
// credits the assignee's balance in the same transaction; both writes commit
// together or neither does. Rejection returns the task to active, and a task
// that started life in the global pool goes back to it.
func (l *Ledger) VerifyTask(taskID int64, approve bool, parentExternalID string) error {
	parent, err := l.requireParent(parentExternalID)
	if err != nil {
		return err
	}

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var status model.TaskStatus
	var assigneeID sql.NullInt64
	var reward int
	var originGlobal int
	err = tx.QueryRow(
		`SELECT status, assignee_id, reward, origin_global FROM tasks WHERE id = ?`,
		taskID,
	).Scan(&status, &assigneeID, &reward, &originGlobal)
	if err == sql.ErrNoRows {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}
	if status != model.TaskPending {
		return apperrors.ErrInvalidState
	}

	if approve {
		if !assigneeID.Valid {
			return apperrors.ErrMissingAssignee
		}

		_, err = tx.Exec(
			`UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			string(model.TaskCompleted), taskID,
		)
		if err != nil {
			return fmt.Errorf("complete task: %w", err)
		}

		res, err := tx.Exec(
			`UPDATE users SET points = points + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			reward, assigneeID.Int64,
		)
		if err != nil {
			return fmt.Errorf("credit reward: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n != 1 {
			return apperrors.ErrMissingAssignee
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit verify: %w", err)
		}

		l.logger.Info("task approved",
			"task_id", taskID, "assignee_id", assigneeID.Int64,
			"reward", reward, "parent_id", parent.ID)
		return nil
	}

	if originGlobal != 0 {
		_, err = tx.Exec(
			`UPDATE tasks SET status = ?, assignee_id = NULL, is_global = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			string(model.TaskActive), taskID,
		)
	} else {
		_, err = tx.Exec(
			`UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			string(model.TaskActive), taskID,
		)
	}
	if err != nil {
		return fmt.Errorf("reject task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit verify: %w", err)
	}

	l.logger.Info("task rejected", "task_id", taskID, "parent_id", parent.ID)
	return nil
}

// UpdateTask edits task content. Parent-only; never touches status.
func (l *Ledger) UpdateTask(taskID int64, title, description string, reward int, assigneeID *int64, isGlobal bool, requesterExternalID string) (*model.Task, error) {
	if _, err := l.requireParent(requesterExternalID); err != nil {
		return nil, err
	}

	existing, err := l.tasks.GetByID(taskID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.ErrNotFound
	}

	if assigneeID != nil {
		assignee, err := l.users.GetByID(*assigneeID)
		if err != nil {
			return nil, err
		}
		if assignee == nil {
			return nil, apperrors.ErrInvalidReference
		}
	}

	return l.tasks.Update(taskID, title, description, reward, assigneeID, isGlobal)
}

// DeleteTask removes a task unconditionally, regardless of status. Deletion
// never reverses a paid reward.
func (l *Ledger) DeleteTask(taskID int64, requesterExternalID string) error {
	if _, err := l.requireParent(requesterExternalID); err != nil {
		return err
	}

	existing, err := l.tasks.GetByID(taskID)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperrors.ErrNotFound
	}

	return l.tasks.Delete(taskID)
}

// ListTasks returns the caller's role-filtered live view of tasks, newest
// first.
func (l *Ledger) ListTasks(externalID string) ([]model.Task, error) {
	u, err := l.users.GetByExternalID(externalID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.ErrPermissionDenied
	}

	all, err := l.tasks.List()
	if err != nil {
		return nil, err
	}
	return task.FilterVisible(u.Role, u.ID, all), nil
}
