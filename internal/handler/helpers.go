package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"famili/internal/apperrors"
)

func parseIDParam(r *http.Request) (int64, error) {
	idStr := r.PathValue("id")
	return strconv.ParseInt(idStr, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error to its HTTP status. Internal failures are
// logged and masked.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("internal error", "error", err)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// externalID reads the caller identity from the externalId query parameter.
func externalID(r *http.Request) string {
	return r.URL.Query().Get("externalId")
}
