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

type ExpenseHandler struct {
	ledgerService *services.LedgerService
	logger        zerolog.Logger
}

func NewExpenseHandler(ledgerService *services.LedgerService, logger zerolog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// ListExpenses handles GET /api/expenses?userId=&from=&to=
func (h *ExpenseHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(r.URL.Query().Get("userId"))
	if err != nil || userID <= 0 {
		h.respondWithMessage(w, http.StatusBadRequest, "userId is required")
		return
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	expenses, err := h.ledgerService.ListExpenses(userID, from, to)
	if err != nil {
		if apperrors.Status(err) == http.StatusInternalServerError {
			h.logger.Error().Err(err).Msg("Failed to fetch expenses")
		}
		h.respondWithMessage(w, apperrors.Status(err), apperrors.ClientMessage(err))
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{"expenses": expenses})
}

// CreateExpense handles POST /api/expenses
func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req models.ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, err := h.ledgerService.RecordExpense(&req)
	if err != nil {
		if apperrors.Status(err) == http.StatusInternalServerError {
			h.logger.Error().Err(err).Msg("Failed to record expense")
		}
		h.respondWithMessage(w, apperrors.Status(err), apperrors.ClientMessage(err))
		return
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]interface{}{"expense": expense})
}

func (h *ExpenseHandler) respondWithMessage(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"message": message})
}

func (h *ExpenseHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
