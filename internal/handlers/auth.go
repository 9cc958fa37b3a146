package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/authgate/apiserver/internal/services"
	"github.com/authgate/apiserver/internal/store"
	"github.com/authgate/apiserver/types"
	"github.com/go-chi/chi/v5"
)

// AuthHandler exposes the credential lifecycle over HTTP.
type AuthHandler struct {
	authService *services.AuthService
	devMode     bool
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
// In dev mode the forgot-password response echoes the plaintext reset token
// for testing.
func NewAuthHandler(authService *services.AuthService, devMode bool) *AuthHandler {
	return &AuthHandler{authService: authService, devMode: devMode}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, authService *services.AuthService, devMode bool) {
	handler := NewAuthHandler(authService, devMode)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Post("/logout", handler.Logout)
	r.Post("/forgot-password", handler.ForgotPassword)
	r.Post("/reset-password", handler.ResetPassword)
	r.With(handler.RequireAuth).Get("/me", handler.Me)
}

// RequireAuth resolves the bearer token to a live account and injects it
// into the request context. Every denial is a uniform 401.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		account, err := h.authService.VerifySession(r.Context(), token)
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			writeError(w, http.StatusInternalServerError, "failed to verify session")
			return
		}

		ctx := r.Context()
		next.ServeHTTP(w, r.WithContext(contextWithAccount(ctx, account)))
	})
}

// Register creates a new account and returns a session token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters long")
		return
	}
	if !validName(req.FirstName) || !validName(req.LastName) {
		writeError(w, http.StatusBadRequest, "first and last name must be 2-50 characters long")
		return
	}

	account, token, err := h.authService.Register(r.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			writeError(w, http.StatusConflict, "user with this email already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, Account: account.View()})
}

// Login verifies credentials and returns a session token. Unknown email and
// wrong password share one message so existence is not leaked.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	account, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, services.ErrAccountDeactivated):
			writeError(w, http.StatusUnauthorized, "account is deactivated")
		default:
			writeError(w, http.StatusInternalServerError, "failed to authenticate")
		}
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, Account: account.View()})
}

// Logout revokes the presented token. The raw token string is recorded even
// if its signature would no longer verify.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "no token provided")
		return
	}

	if err := h.authService.Logout(r.Context(), token); err != nil {
		switch {
		case errors.Is(err, services.ErrMissingToken):
			writeError(w, http.StatusBadRequest, "no token provided")
		case errors.Is(err, store.ErrTokenAlreadyRevoked):
			writeError(w, http.StatusConflict, "token already revoked")
		default:
			writeError(w, http.StatusInternalServerError, "failed to log out")
		}
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "logged out successfully"})
}

// ForgotPassword starts the reset flow. The response is identical for
// unknown and existing emails; only a deactivated account is reported.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}

	resetToken, err := h.authService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountDeactivated):
			writeError(w, http.StatusBadRequest, "account is deactivated")
		case errors.Is(err, services.ErrNotificationFailed):
			writeError(w, http.StatusInternalServerError, "there was an error sending the email")
		default:
			writeError(w, http.StatusInternalServerError, "failed to process request")
		}
		return
	}

	resp := ForgotPasswordResponse{
		Message: "if an account with that email exists, password reset instructions have been sent",
	}
	if h.devMode {
		resp.ResetToken = resetToken
	}
	writeJSON(w, http.StatusOK, resp)
}

// ResetPassword consumes a reset token and installs the new password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "reset token is required")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters long")
		return
	}

	account, token, err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		if errors.Is(err, services.ErrInvalidOrExpiredToken) {
			writeError(w, http.StatusBadRequest, "token is invalid or has expired")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to reset password")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: token, Account: account.View()})
}

// Me returns the authenticated account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, err := accountFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, account.View())
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type AuthResponse struct {
	Token   string            `json:"token"`
	Account types.AccountView `json:"account"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token,omitempty"`
}
