package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"famili/internal/ledger"
	"famili/internal/model"
)

// AdminHandler exposes member management. Every operation requires the
// caller to carry the admin flag.
type AdminHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

func NewAdminHandler(l *ledger.Ledger, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{ledger: l, logger: logger}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.ledger.ListUsers(externalID(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		NewExternalID string `json:"new_external_id"`
		Role          string `json:"role"`
		ExternalID    string `json:"external_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if strings.TrimSpace(req.NewExternalID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "new_external_id is required"})
		return
	}
	role := model.Role(req.Role)
	if role != model.RoleParent && role != model.RoleChild {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role must be parent or child"})
		return
	}

	user, err := h.ledger.CreateUser(req.Name, req.NewExternalID, role, req.ExternalID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.ledger.DeleteUser(id, externalID(r)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Delta      int    `json:"delta"`
		ExternalID string `json:"external_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	user, err := h.ledger.AdjustPoints(id, req.Delta, req.ExternalID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		IsAdmin    bool   `json:"is_admin"`
		ExternalID string `json:"external_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	user, err := h.ledger.SetAdmin(id, req.IsAdmin, req.ExternalID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
