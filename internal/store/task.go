package store

import (
	"database/sql"
	"fmt"

	"famili/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var assigneeID sql.NullInt64
	var isGlobal, originGlobal int

	err := scanner.Scan(
		&t.ID, &t.Title, &t.Description, &t.Reward, &t.Status,
		&assigneeID, &isGlobal, &originGlobal, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assigneeID.Valid {
		t.AssigneeID = &assigneeID.Int64
	}
	t.IsGlobal = isGlobal != 0
	t.OriginGlobal = originGlobal != 0
	return &t, nil
}

const taskCols = `id, title, description, reward, status, assignee_id, is_global, origin_global, created_at, updated_at`

func (s *TaskStore) Create(title, description string, reward int, assigneeID *int64, isGlobal bool) (*model.Task, error) {
	var aID sql.NullInt64
	if assigneeID != nil {
		aID = sql.NullInt64{Int64: *assigneeID, Valid: true}
	}
	var g int
	if isGlobal {
		g = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (title, description, reward, assignee_id, is_global, origin_global) VALUES (?, ?, ?, ?, ?, ?)`,
		title, description, reward, aID, g, g,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns all tasks, newest first.
func (s *TaskStore) List() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskCols + ` FROM tasks ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// ListCompletedByAssignee returns a member's completed tasks, newest first.
func (s *TaskStore) ListCompletedByAssignee(userID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE assignee_id = ? AND status = ? ORDER BY id DESC`,
		userID, string(model.TaskCompleted),
	)
	if err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Update edits task content fields. Status is owned by the lifecycle engine
// and is deliberately not touched here.
func (s *TaskStore) Update(id int64, title, description string, reward int, assigneeID *int64, isGlobal bool) (*model.Task, error) {
	var aID sql.NullInt64
	if assigneeID != nil {
		aID = sql.NullInt64{Int64: *assigneeID, Valid: true}
	}
	var g int
	if isGlobal {
		g = 1
	}

	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, description = ?, reward = ?, assignee_id = ?, is_global = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		title, description, reward, aID, g, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
