package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"famili/internal/ledger"
	"famili/internal/model"
)

type ShopHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

func NewShopHandler(l *ledger.Ledger, logger *slog.Logger) *ShopHandler {
	return &ShopHandler{ledger: l, logger: logger}
}

type itemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	ExternalID  string `json:"external_id"`
}

func (r *itemRequest) validate() string {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return "title is required"
	}
	if r.Price <= 0 {
		return "price must be > 0"
	}
	return ""
}

func (h *ShopHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.ledger.ListShop()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []model.ShopItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ShopHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	item, err := h.ledger.CreateShopItem(req.Title, req.Description, req.Price, req.ExternalID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *ShopHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	item, err := h.ledger.UpdateShopItem(id, req.Title, req.Description, req.Price, req.ExternalID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *ShopHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.ledger.DeleteShopItem(id, externalID(r)); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ShopHandler) Buy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID     int64  `json:"item_id"`
		ExternalID string `json:"external_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	purchase, err := h.ledger.Buy(req.ItemID, req.ExternalID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, purchase)
}

func (h *ShopHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.ledger.ListPendingPurchases(externalID(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if purchases == nil {
		purchases = []model.PendingPurchase{}
	}
	writeJSON(w, http.StatusOK, purchases)
}

func (h *ShopHandler) Confirm(w http.ResponseWriter, r *http.Request) {
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

	if err := h.ledger.ConfirmPurchase(id, req.ExternalID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
