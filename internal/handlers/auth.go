package handlers

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/solver492/manu-pro/internal/auth"
	"github.com/solver492/manu-pro/internal/database"
	"github.com/solver492/manu-pro/internal/metrics"
	"github.com/solver492/manu-pro/internal/ratelimit"
)

// InvalidCredentialsMessage is returned for every rejected login
const InvalidCredentialsMessage = "Identifiants incorrects"

// TooManyAttemptsMessage is returned while an email is locked out
const TooManyAttemptsMessage = "Trop de tentatives, réessayez plus tard"

// AuthHandler handles login requests
type AuthHandler struct {
	auth    *auth.Authenticator
	limiter *ratelimit.LoginLimiter
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth handler. A nil limiter never blocks.
func NewAuthHandler(authenticator *auth.Authenticator, limiter *ratelimit.LoginLimiter, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authenticator, limiter: limiter, logger: logger}
}

// LoginRequest is the body of POST /api/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the sanitized profile
type LoginResponse struct {
	Message string           `json:"message"`
	User    database.Profile `json:"user"`
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if result := h.limiter.Check(req.Email); result.ShouldBlock {
		h.tooManyAttempts(w, r, result)
		return
	}

	profile, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			metrics.LoginFailuresTotal.Inc()
			h.logger.Warn("Rejected login", "remote_addr", r.RemoteAddr)
			if result := h.limiter.RecordFailure(req.Email); result.ShouldBlock {
				h.logger.Warn("Login locked out", "remote_addr", r.RemoteAddr, "lockout", result.RemainingTime)
			}
			writeError(w, http.StatusUnauthorized, InvalidCredentialsMessage)
			return
		}
		h.logger.Error("Login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	h.limiter.Reset(req.Email)
	writeJSON(w, http.StatusOK, LoginResponse{Message: "Connexion réussie", User: *profile})
}

func (h *AuthHandler) tooManyAttempts(w http.ResponseWriter, r *http.Request, result ratelimit.RateLimitResult) {
	seconds := int(math.Ceil(result.RemainingTime.Seconds()))
	h.logger.Warn("Login refused while locked out", "remote_addr", r.RemoteAddr, "retry_after", seconds)
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	writeError(w, http.StatusTooManyRequests, TooManyAttemptsMessage)
}
