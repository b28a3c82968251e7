package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"famili/internal/ledger"
	"famili/internal/model"
)

// Config holds client configuration.
type Config struct {
	BaseURL      string
	ExternalID   string
	PollInterval time.Duration
}

// Client keeps a local mirror of the server snapshot and reconciles it by
// polling. Mutating calls apply an optimistic update to the mirror first,
// then refetch the snapshot whether the call succeeded or failed, so a
// rejected mutation rolls back on the next refresh rather than through
// inverse bookkeeping.
type Client struct {
	mu         sync.RWMutex
	cfg        Config
	snapshot   ledger.Snapshot
	synced     bool
	onUpdate   func(ledger.Snapshot)
	httpClient *http.Client
	logger     *slog.Logger
	stopCh     chan struct{}
	stopped    chan struct{}
}

func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 5 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:  logger,
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// OnUpdate registers a callback invoked with a copy of the snapshot after
// every refresh. Must be set before StartPolling.
func (c *Client) OnUpdate(fn func(ledger.Snapshot)) {
	c.mu.Lock()
	c.onUpdate = fn
	c.mu.Unlock()
}

// Snapshot returns a copy of the current mirror.
func (c *Client) Snapshot() ledger.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Tasks returns the cached task list.
func (c *Client) Tasks() []model.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tasks := make([]model.Task, len(c.snapshot.Tasks))
	copy(tasks, c.snapshot.Tasks)
	return tasks
}

// Points returns the cached point balance.
func (c *Client) Points() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot.UserPoints
}

// Synced reports whether at least one refresh has succeeded.
func (c *Client) Synced() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.synced
}

// Refresh fetches a fresh snapshot, retrying transient failures with
// fibonacci backoff. HTTP 4xx responses are not retried.
func (c *Client) Refresh(ctx context.Context) error {
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(200*time.Millisecond))

	var snap ledger.Snapshot
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		url := fmt.Sprintf("%s/api/sync?externalId=%s", c.cfg.BaseURL, c.cfg.ExternalID)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("sync: status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("sync: status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&snap)
	})
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	c.mu.Lock()
	c.snapshot = snap
	c.synced = true
	fn := c.onUpdate
	c.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return nil
}

// ClaimTask optimistically moves the task to in_progress, posts the claim,
// and refetches.
func (c *Client) ClaimTask(ctx context.Context, taskID int64) error {
	c.applyTask(taskID, func(t *model.Task) {
		t.Status = model.TaskInProgress
		t.IsGlobal = false
	})
	err := c.post(ctx, fmt.Sprintf("/api/tasks/%d/claim", taskID), map[string]any{
		"external_id": c.cfg.ExternalID,
	})
	return c.settle(ctx, "claim", err)
}

// SubmitTask optimistically moves the task to pending review, posts, and
// refetches.
func (c *Client) SubmitTask(ctx context.Context, taskID int64) error {
	c.applyTask(taskID, func(t *model.Task) {
		t.Status = model.TaskPending
	})
	err := c.post(ctx, fmt.Sprintf("/api/tasks/%d/submit", taskID), nil)
	return c.settle(ctx, "submit", err)
}

// VerifyTask posts a parent's verdict. Approval optimistically drops the
// task from the live mirror; rejection returns it to active.
func (c *Client) VerifyTask(ctx context.Context, taskID int64, approve bool) error {
	if approve {
		c.dropTask(taskID)
	} else {
		c.applyTask(taskID, func(t *model.Task) {
			t.Status = model.TaskActive
		})
	}
	err := c.post(ctx, fmt.Sprintf("/api/tasks/%d/verify", taskID), map[string]any{
		"approve":     approve,
		"external_id": c.cfg.ExternalID,
	})
	return c.settle(ctx, "verify", err)
}

// Buy optimistically debits the cached balance by price, posts the purchase,
// and refetches. The server re-reads the item price inside its transaction,
// so price here only shapes the optimistic view.
func (c *Client) Buy(ctx context.Context, itemID int64, price int) error {
	c.mu.Lock()
	c.snapshot.UserPoints -= price
	c.mu.Unlock()

	err := c.post(ctx, "/api/shop/buy", map[string]any{
		"item_id":     itemID,
		"external_id": c.cfg.ExternalID,
	})
	return c.settle(ctx, "buy", err)
}

// Shop fetches the current shop catalog. The catalog is not part of the
// snapshot contract, so it is read on demand.
func (c *Client) Shop(ctx context.Context) ([]model.ShopItem, error) {
	url := c.cfg.BaseURL + "/api/shop"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shop: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shop: status %d", resp.StatusCode)
	}
	var items []model.ShopItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// StartPolling refreshes immediately, then keeps the mirror fresh on the
// configured interval until Stop or context cancellation.
func (c *Client) StartPolling(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("initial refresh failed", "error", err)
	}

	go func() {
		defer close(c.stopped)
		ticker := time.NewTicker(c.cfg.PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := c.Refresh(ctx); err != nil {
					c.logger.Warn("refresh failed", "error", err)
				}
			case <-c.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the polling goroutine.
func (c *Client) Stop() {
	close(c.stopCh)
	<-c.stopped
}

// settle resolves a mutation: either way the mirror is refetched, so a
// failed optimistic update is overwritten by server truth.
func (c *Client) settle(ctx context.Context, op string, err error) error {
	if refreshErr := c.Refresh(ctx); refreshErr != nil {
		c.logger.Warn("refresh after mutation failed", "op", op, "error", refreshErr)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) applyTask(taskID int64, fn func(*model.Task)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.snapshot.Tasks {
		if c.snapshot.Tasks[i].ID == taskID {
			fn(&c.snapshot.Tasks[i])
			return
		}
	}
}

func (c *Client) dropTask(taskID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tasks := c.snapshot.Tasks[:0]
	for _, t := range c.snapshot.Tasks {
		if t.ID != taskID {
			tasks = append(tasks, t)
		}
	}
	c.snapshot.Tasks = tasks
}

func (c *Client) post(ctx context.Context, path string, body map[string]any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
