package handler

import (
	"log/slog"
	"net/http"

	"famili/internal/ledger"
	"famili/internal/model"
)

// SyncHandler serves the read-only views: snapshot, user lookup, history,
// and the family-wide stats.
type SyncHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

func NewSyncHandler(l *ledger.Ledger, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{ledger: l, logger: logger}
}

func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.ledger.Sync(externalID(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *SyncHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.ledger.GetUser(r.PathValue("externalId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *SyncHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.ledger.GetHistory(r.PathValue("externalId"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *SyncHandler) FamilyStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledger.FamilyStats()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if stats == nil {
		stats = []model.MemberStats{}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *SyncHandler) FamilyMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.ledger.FamilyMembers()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if members == nil {
		members = []model.User{}
	}
	writeJSON(w, http.StatusOK, members)
}
