package model

import "time"

type Role string

const (
	RoleParent Role = "parent"
	RoleChild  Role = "child"
)

type User struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	IsAdmin    bool      `json:"is_admin"`
	Points     int       `json:"points"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MemberStats is the family-wide progress view for a single child.
type MemberStats struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	ExternalID     string `json:"external_id"`
	Points         int    `json:"points"`
	CompletedTasks int    `json:"completed_tasks"`
	PurchasesCount int    `json:"purchases_count"`
}
