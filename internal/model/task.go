package model

import "time"

type TaskStatus string

const (
	TaskActive     TaskStatus = "active"
	TaskInProgress TaskStatus = "in_progress"
	TaskPending    TaskStatus = "pending"
	TaskCompleted  TaskStatus = "completed"
)

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Reward      int        `json:"reward"`
	Status      TaskStatus `json:"status"`
	AssigneeID  *int64     `json:"assignee_id"`
	IsGlobal    bool       `json:"is_global"`
	// OriginGlobal records that the task was created for the shared pool.
	// Claiming clears IsGlobal; a rejected verification uses OriginGlobal to
	// put the task back into the pool.
	OriginGlobal bool      `json:"origin_global"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
