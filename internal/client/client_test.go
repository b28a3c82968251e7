package client

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"famili/internal/database"
	"famili/internal/ledger"
	"famili/internal/model"
	"famili/internal/server"
	"famili/internal/store"
)

type env struct {
	url    string
	ledger *ledger.Ledger
	users  *store.UserStore
	child  *model.User
}

func setupServer(t *testing.T) *env {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := server.New(db, logger)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	users := store.NewUserStore(db)
	if _, err := users.Create("Alex", "ext-parent", model.RoleParent, true); err != nil {
		t.Fatalf("create parent: %v", err)
	}
	child, err := users.Create("Robin", "ext-child", model.RoleChild, false)
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	return &env{url: ts.URL, ledger: srv.Ledger(), users: users, child: child}
}

func newTestClient(t *testing.T, e *env, externalID string) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(Config{BaseURL: e.url, ExternalID: externalID}, logger)
}

func TestRefreshPopulatesMirror(t *testing.T) {
	e := setupServer(t)
	e.ledger.CreateTask("Take out trash", "", 10, nil, true, "ext-parent")
	e.ledger.AdjustPoints(e.child.ID, 25, "ext-parent")

	c := newTestClient(t, e, "ext-child")
	if c.Synced() {
		t.Error("synced before first refresh")
	}
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !c.Synced() {
		t.Error("not synced after refresh")
	}
	if got := len(c.Tasks()); got != 1 {
		t.Errorf("tasks len = %d, want 1", got)
	}
	if got := c.Points(); got != 25 {
		t.Errorf("points = %d, want 25", got)
	}
}

func TestClaimTaskReconciles(t *testing.T) {
	e := setupServer(t)
	task, _ := e.ledger.CreateTask("Dishes", "", 10, nil, true, "ext-parent")

	c := newTestClient(t, e, "ext-child")
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := c.ClaimTask(context.Background(), task.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}

	tasks := c.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("tasks len = %d, want 1", len(tasks))
	}
	if tasks[0].Status != model.TaskInProgress {
		t.Errorf("status = %q, want in_progress", tasks[0].Status)
	}
	if tasks[0].AssigneeID == nil || *tasks[0].AssigneeID != e.child.ID {
		t.Errorf("assignee = %v, want %d", tasks[0].AssigneeID, e.child.ID)
	}
}

func TestFailedClaimRollsBackByRefetch(t *testing.T) {
	e := setupServer(t)
	e.users.Create("Sam", "ext-sam", model.RoleChild, false)
	task, _ := e.ledger.CreateTask("Garage", "", 20, nil, true, "ext-parent")

	c := newTestClient(t, e, "ext-child")
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	// Sibling wins the race before our claim lands.
	if _, err := e.ledger.ClaimTask(task.ID, "ext-sam"); err != nil {
		t.Fatalf("sibling claim: %v", err)
	}

	err := c.ClaimTask(context.Background(), task.ID)
	if err == nil {
		t.Fatal("claim succeeded, want conflict")
	}

	// The refetch replaced the optimistic state: the task is now a
	// sibling's personal task and out of our view entirely.
	for _, tk := range c.Tasks() {
		if tk.ID == task.ID {
			t.Errorf("task %d still in mirror with status %q", tk.ID, tk.Status)
		}
	}
}

func TestBuyInsufficientFundsRollsBack(t *testing.T) {
	e := setupServer(t)
	e.ledger.AdjustPoints(e.child.ID, 10, "ext-parent")
	item, _ := e.ledger.CreateShopItem("Movie night", "", 50, "ext-parent")

	c := newTestClient(t, e, "ext-child")
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	err := c.Buy(context.Background(), item.ID, item.Price)
	if err == nil {
		t.Fatal("buy succeeded, want insufficient funds")
	}
	if got := c.Points(); got != 10 {
		t.Errorf("points = %d, want 10 after rollback", got)
	}
}

func TestShopCatalog(t *testing.T) {
	e := setupServer(t)
	e.ledger.CreateShopItem("Ice cream", "", 40, "ext-parent")

	c := newTestClient(t, e, "ext-child")
	items, err := c.Shop(context.Background())
	if err != nil {
		t.Fatalf("shop: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Ice cream" {
		t.Errorf("items = %+v", items)
	}
}

func TestRefreshRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(ledger.Snapshot{
			Tasks:            []model.Task{{ID: 1, Title: "Dishes", Status: model.TaskActive}},
			FamilyStats:      []model.MemberStats{},
			PendingPurchases: []model.PendingPurchase{},
			UserPoints:       5,
		})
	}))
	t.Cleanup(ts.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(Config{BaseURL: ts.URL, ExternalID: "ext-child"}, logger)

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
	if got := c.Points(); got != 5 {
		t.Errorf("points = %d, want 5", got)
	}
}

func TestRefreshDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(ts.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(Config{BaseURL: ts.URL, ExternalID: "ext-nobody"}, logger)

	if err := c.Refresh(context.Background()); err == nil {
		t.Fatal("refresh succeeded, want error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 404)", got)
	}
	if c.Synced() {
		t.Error("synced after failed refresh")
	}
}

func TestPollingKeepsMirrorFresh(t *testing.T) {
	e := setupServer(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(Config{BaseURL: e.url, ExternalID: "ext-child", PollInterval: 20 * time.Millisecond}, logger)

	updates := make(chan ledger.Snapshot, 16)
	c.OnUpdate(func(s ledger.Snapshot) { updates <- s })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.StartPolling(ctx)
	defer c.Stop()

	<-updates

	e.ledger.CreateTask("New pool task", "", 10, nil, true, "ext-parent")

	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-updates:
			if len(s.Tasks) == 1 {
				return
			}
		case <-deadline:
			t.Fatal("poll never picked up the new task")
		}
	}
}
