package task

import (
	"testing"

	"famili/internal/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to model.TaskStatus
		want     bool
	}{
		{model.TaskActive, model.TaskInProgress, true},
		{model.TaskInProgress, model.TaskPending, true},
		{model.TaskPending, model.TaskCompleted, true},
		{model.TaskPending, model.TaskActive, true},
		{model.TaskActive, model.TaskPending, false},
		{model.TaskActive, model.TaskCompleted, false},
		{model.TaskInProgress, model.TaskActive, false},
		{model.TaskInProgress, model.TaskCompleted, false},
		{model.TaskCompleted, model.TaskActive, false},
		{model.TaskCompleted, model.TaskPending, false},
		{model.TaskPending, model.TaskInProgress, false},
	}

	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestIsLive(t *testing.T) {
	live := []model.TaskStatus{model.TaskActive, model.TaskInProgress, model.TaskPending}
	for _, s := range live {
		if !IsLive(s) {
			t.Errorf("IsLive(%s) = false, want true", s)
		}
	}
	if IsLive(model.TaskCompleted) {
		t.Error("IsLive(completed) = true, want false")
	}
}

func TestVisibleToParent(t *testing.T) {
	other := int64(7)
	live := []model.Task{
		{ID: 1, Status: model.TaskActive, IsGlobal: true},
		{ID: 2, Status: model.TaskInProgress, AssigneeID: &other},
		{ID: 3, Status: model.TaskPending, AssigneeID: &other},
	}
	for _, tk := range live {
		if !VisibleTo(model.RoleParent, 1, tk) {
			t.Errorf("parent cannot see task %d", tk.ID)
		}
	}

	done := model.Task{ID: 4, Status: model.TaskCompleted, AssigneeID: &other}
	if VisibleTo(model.RoleParent, 1, done) {
		t.Error("completed task visible in parent live view")
	}
}

func TestVisibleToChild(t *testing.T) {
	self := int64(2)
	sibling := int64(3)

	cases := []struct {
		name string
		task model.Task
		want bool
	}{
		{"own in_progress", model.Task{Status: model.TaskInProgress, AssigneeID: &self}, true},
		{"own pending", model.Task{Status: model.TaskPending, AssigneeID: &self}, true},
		{"own active", model.Task{Status: model.TaskActive, AssigneeID: &self}, true},
		{"own completed", model.Task{Status: model.TaskCompleted, AssigneeID: &self}, false},
		{"unclaimed global", model.Task{Status: model.TaskActive, IsGlobal: true}, true},
		{"sibling personal", model.Task{Status: model.TaskActive, AssigneeID: &sibling}, false},
		{"sibling claimed ex-global", model.Task{Status: model.TaskInProgress, AssigneeID: &sibling, OriginGlobal: true}, false},
		{"sibling completed", model.Task{Status: model.TaskCompleted, AssigneeID: &sibling}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := VisibleTo(model.RoleChild, self, c.task); got != c.want {
				t.Errorf("VisibleTo = %v, want %v", got, c.want)
			}
		})
	}
}

func TestFilterVisiblePreservesOrder(t *testing.T) {
	self := int64(2)
	sibling := int64(3)
	tasks := []model.Task{
		{ID: 5, Status: model.TaskActive, IsGlobal: true},
		{ID: 4, Status: model.TaskInProgress, AssigneeID: &sibling},
		{ID: 3, Status: model.TaskPending, AssigneeID: &self},
		{ID: 2, Status: model.TaskCompleted, AssigneeID: &self},
		{ID: 1, Status: model.TaskActive, AssigneeID: &self},
	}

	got := FilterVisible(model.RoleChild, self, tasks)
	wantIDs := []int64{5, 3, 1}
	if len(got) != len(wantIDs) {
		t.Fatalf("len = %d, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("got[%d].ID = %d, want %d", i, got[i].ID, id)
		}
	}
}
