package store

import (
	"testing"

	"famili/internal/model"
)

func TestTaskCreateGlobal(t *testing.T) {
	ts := NewTaskStore(setupTestDB(t))

	task, err := ts.Create("Take out trash", "All bins", 10, nil, true)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != model.TaskActive {
		t.Errorf("status = %q, want %q", task.Status, model.TaskActive)
	}
	if !task.IsGlobal {
		t.Error("is_global = false, want true")
	}
	if !task.OriginGlobal {
		t.Error("origin_global = false, want true")
	}
	if task.AssigneeID != nil {
		t.Errorf("assignee_id = %v, want nil", task.AssigneeID)
	}
}

func TestTaskCreateAssigned(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ts := NewTaskStore(db)

	robin, _ := us.Create("Robin", "ext-robin", model.RoleChild, false)

	task, err := ts.Create("Dishes", "", 15, &robin.ID, false)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.AssigneeID == nil || *task.AssigneeID != robin.ID {
		t.Errorf("assignee_id = %v, want %d", task.AssigneeID, robin.ID)
	}
	if task.IsGlobal || task.OriginGlobal {
		t.Error("personal task must not be global")
	}
}

func TestTaskListNewestFirst(t *testing.T) {
	ts := NewTaskStore(setupTestDB(t))

	ts.Create("First", "", 5, nil, true)
	ts.Create("Second", "", 5, nil, true)

	tasks, err := ts.List()
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len = %d, want 2", len(tasks))
	}
	if tasks[0].Title != "Second" || tasks[1].Title != "First" {
		t.Errorf("order = %q, %q, want Second, First", tasks[0].Title, tasks[1].Title)
	}
}

func TestTaskUpdateKeepsStatus(t *testing.T) {
	db := setupTestDB(t)
	ts := NewTaskStore(db)

	task, _ := ts.Create("Vacuum", "", 20, nil, true)
	db.Exec(`UPDATE tasks SET status = 'pending' WHERE id = ?`, task.ID)

	updated, err := ts.Update(task.ID, "Vacuum everywhere", "Under the couch", 25, nil, true)
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Title != "Vacuum everywhere" {
		t.Errorf("title = %q, want %q", updated.Title, "Vacuum everywhere")
	}
	if updated.Reward != 25 {
		t.Errorf("reward = %d, want 25", updated.Reward)
	}
	if updated.Status != model.TaskPending {
		t.Errorf("status = %q, want pending", updated.Status)
	}
}

func TestTaskListCompletedByAssignee(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ts := NewTaskStore(db)

	robin, _ := us.Create("Robin", "ext-robin", model.RoleChild, false)

	done, _ := ts.Create("Dishes", "", 10, &robin.ID, false)
	db.Exec(`UPDATE tasks SET status = 'completed' WHERE id = ?`, done.ID)
	ts.Create("Vacuum", "", 20, &robin.ID, false)

	completed, err := ts.ListCompletedByAssignee(robin.ID)
	if err != nil {
		t.Fatalf("list completed: %v", err)
	}
	if len(completed) != 1 {
		t.Fatalf("len = %d, want 1", len(completed))
	}
	if completed[0].ID != done.ID {
		t.Errorf("completed[0].ID = %d, want %d", completed[0].ID, done.ID)
	}
}

func TestTaskDelete(t *testing.T) {
	ts := NewTaskStore(setupTestDB(t))

	task, _ := ts.Create("Water plants", "", 10, nil, true)
	if err := ts.Delete(task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}

	got, err := ts.GetByID(task.ID)
	if err != nil {
		t.Fatalf("get deleted task: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted task")
	}
}

func TestTaskAssigneeClearedOnUserDelete(t *testing.T) {
	db := setupTestDB(t)
	us := NewUserStore(db)
	ts := NewTaskStore(db)

	robin, _ := us.Create("Robin", "ext-robin", model.RoleChild, false)
	task, _ := ts.Create("Dishes", "", 10, &robin.ID, false)

	if err := us.Delete(robin.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	got, err := ts.GetByID(task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.AssigneeID != nil {
		t.Errorf("assignee_id = %v, want nil after user delete", got.AssigneeID)
	}
}
