package handlers

import (
	"encoding/json"
	"net/http"

	"harcama/internal/apperrors"
	"harcama/internal/models"
	"harcama/internal/services"

	"github.com/rs/zerolog"
)

type AuthHandler struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

func NewAuthHandler(authService *services.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.Register(&req); err != nil {
		if apperrors.Status(err) == http.StatusInternalServerError {
			h.logger.Error().Err(err).Msg("Registration failed")
		}
		h.respondWithMessage(w, apperrors.Status(err), apperrors.ClientMessage(err))
		return
	}

	h.respondWithMessage(w, http.StatusCreated, "User registered successfully")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.authService.Login(&req)
	if err != nil {
		if apperrors.Status(err) == http.StatusInternalServerError {
			h.logger.Error().Err(err).Msg("Login failed")
		}
		h.respondWithMessage(w, apperrors.Status(err), apperrors.ClientMessage(err))
		return
	}

	h.respondWithJSON(w, http.StatusOK, models.LoginResponse{
		Message: "Login successful",
		User:    user,
	})
}

func (h *AuthHandler) respondWithMessage(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"message": message})
}

func (h *AuthHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
