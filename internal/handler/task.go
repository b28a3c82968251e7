package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"famili/internal/ledger"
	"famili/internal/model"
)

type TaskHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

func NewTaskHandler(l *ledger.Ledger, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{ledger: l, logger: logger}
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Reward      int    `json:"reward"`
	AssigneeID  *int64 `json:"assignee_id"`
	IsGlobal    bool   `json:"is_global"`
	ExternalID  string `json:"external_id"`
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.ledger.ListTasks(externalID(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	if req.Reward <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reward must be > 0"})
		return
	}

	task, err := h.ledger.CreateTask(req.Title, req.Description, req.Reward, req.AssigneeID, req.IsGlobal, req.ExternalID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	if req.Reward <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reward must be > 0"})
		return
	}

	task, err := h.ledger.UpdateTask(id, req.Title, req.Description, req.Reward, req.AssigneeID, req.IsGlobal, req.ExternalID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.ledger.DeleteTask(id, externalID(r)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *TaskHandler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		ExternalID string `json:"external_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	task, err := h.ledger.ClaimTask(id, req.ExternalID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	task, err := h.ledger.SubmitTask(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Approve    bool   `json:"approve"`
		ExternalID string `json:"external_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := h.ledger.VerifyTask(id, req.Approve, req.ExternalID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
