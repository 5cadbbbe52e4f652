package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"harcama/internal/apperrors"
	"harcama/internal/models"
	"harcama/internal/services"

	"github.com/rs/zerolog"
)

type BalanceHandler struct {
	ledgerService *services.LedgerService
	logger        zerolog.Logger
}

func NewBalanceHandler(ledgerService *services.LedgerService, logger zerolog.Logger) *BalanceHandler {
	return &BalanceHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// GetBalance handles GET /api/balance?userId=
// A user without a balance row reads as 0, not as an error.
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil || userID <= 0 {
		h.respondWithMessage(w, http.StatusBadRequest, "userId is required")
		return
	}

	balance, err := h.ledgerService.GetBalance(userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to fetch balance")
		h.respondWithMessage(w, apperrors.Status(err), apperrors.ClientMessage(err))
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

// Deposit handles POST /api/balance/deposit
func (h *BalanceHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req models.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	balance, err := h.ledgerService.Deposit(req.UserID, req.Amount)
	if err != nil {
		if apperrors.Status(err) == http.StatusInternalServerError {
			h.logger.Error().Err(err).Msg("Deposit failed")
		}
		h.respondWithMessage(w, apperrors.Status(err), apperrors.ClientMessage(err))
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

func (h *BalanceHandler) respondWithMessage(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"message": message})
}

func (h *BalanceHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
