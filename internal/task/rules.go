// Package task holds the pure lifecycle and visibility rules for tasks.
// Nothing here touches the store; the ledger engine and the tests share the
// same rule set.
package task

import "famili/internal/model"

// transitions enumerates every legal status change. Rewards are paid only on
// the pending -> completed edge; pending -> active is the reject path.
var transitions = map[model.TaskStatus][]model.TaskStatus{
	model.TaskActive:     {model.TaskInProgress},
	model.TaskInProgress: {model.TaskPending},
	model.TaskPending:    {model.TaskCompleted, model.TaskActive},
	model.TaskCompleted:  {},
}

// CanTransition reports whether from -> to is a defined lifecycle edge.
func CanTransition(from, to model.TaskStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsLive reports whether a status belongs to the live view. Completed tasks
// only surface through history.
func IsLive(status model.TaskStatus) bool {
	switch status {
	case model.TaskActive, model.TaskInProgress, model.TaskPending:
		return true
	}
	return false
}

// VisibleTo reports whether a caller may see a task in the live view.
// Completed tasks are invisible to everyone and surface only through
// history. Parents see every live task; children see their own plus
// unclaimed global tasks.
func VisibleTo(role model.Role, userID int64, t model.Task) bool {
	if !IsLive(t.Status) {
		return false
	}
	if role == model.RoleParent {
		return true
	}
	if t.AssigneeID != nil && *t.AssigneeID == userID {
		return true
	}
	return t.IsGlobal && t.Status == model.TaskActive
}

// FilterVisible applies VisibleTo over a task set, preserving order.
func FilterVisible(role model.Role, userID int64, tasks []model.Task) []model.Task {
	visible := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if VisibleTo(role, userID, t) {
			visible = append(visible, t)
		}
	}
	return visible
}
