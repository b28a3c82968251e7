package store

import (
	"database/sql"
	"fmt"

	"famili/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var isAdmin int

	err := scanner.Scan(
		&u.ID, &u.ExternalID, &u.Name, &u.Role, &isAdmin, &u.Points,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.IsAdmin = isAdmin != 0
	return &u, nil
}

const userCols = `id, external_id, name, role, is_admin, points, created_at, updated_at`

func (s *UserStore) Create(name, externalID string, role model.Role, isAdmin bool) (*model.User, error) {
	var a int
	if isAdmin {
		a = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO users (name, external_id, role, is_admin) VALUES (?, ?, ?, ?)`,
		name, externalID, string(role), a,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByExternalID resolves the opaque caller identity to a user. Returns
// (nil, nil) when the external id is unknown.
func (s *UserStore) GetByExternalID(externalID string) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE external_id = ?`, externalID)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by external id: %w", err)
	}
	return u, nil
}

func (s *UserStore) List() ([]model.User, error) {
	rows, err := s.db.Query(`SELECT ` + userCols + ` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) ListChildren() ([]model.User, error) {
	rows, err := s.db.Query(
		`SELECT `+userCols+` FROM users WHERE role = ? ORDER BY id ASC`,
		string(model.RoleChild),
	)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) SetAdmin(id int64, isAdmin bool) (*model.User, error) {
	var a int
	if isAdmin {
		a = 1
	}
	_, err := s.db.Exec(
		`UPDATE users SET is_admin = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		a, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set admin: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// ListChildStats aggregates completed-task and purchase counts for every
// child. The view is family-wide: every caller sees the same numbers.
func (s *UserStore) ListChildStats() ([]model.MemberStats, error) {
	rows, err := s.db.Query(`
		SELECT u.id, u.name, u.external_id, u.points,
		       (SELECT COUNT(*) FROM tasks t WHERE t.assignee_id = u.id AND t.status = 'completed'),
		       (SELECT COUNT(*) FROM purchases p WHERE p.user_id = u.id)
		FROM users u
		WHERE u.role = ?
		ORDER BY u.id ASC`,
		string(model.RoleChild),
	)
	if err != nil {
		return nil, fmt.Errorf("list child stats: %w", err)
	}
	defer rows.Close()

	var stats []model.MemberStats
	for rows.Next() {
		var st model.MemberStats
		if err := rows.Scan(&st.ID, &st.Name, &st.ExternalID, &st.Points, &st.CompletedTasks, &st.PurchasesCount); err != nil {
			return nil, fmt.Errorf("scan child stats: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
