package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

type HealthHandler struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewHealthHandler(db *sql.DB, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// Health handles GET /api/health with a round trip to the database.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var one int
	if err := h.db.QueryRow("SELECT 1").Scan(&one); err != nil {
		h.logger.Error().Err(err).Msg("Health check failed")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{"ok": false, "error": "DB not reachable"})
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "db": one == 1})
}
