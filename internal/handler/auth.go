package handler

import (
	"log/slog"
	"net/http"

	"github.com/mindsync/server/internal/security/auth"
	"github.com/mindsync/server/internal/security/middleware"
	"github.com/mindsync/server/internal/service"
)

// AuthHandler handles registration, login, and session endpoints
type AuthHandler struct {
	authService *service.AuthService
	tokens      *auth.TokenManager
	production  bool
	logger      *slog.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *service.AuthService, tokens *auth.TokenManager, production bool, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
		production:  production,
		logger:      logger,
	}
}

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type authResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	result, err := h.authService.Register(req.FullName, req.Email, req.Password, req.Role)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.tokens.SetAuthCookie(w, result.Token, h.production)
	writeJSON(w, http.StatusCreated, authResponse{
		User:  toUserResponse(result.User),
		Token: result.Token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.tokens.SetAuthCookie(w, result.Token, h.production)
	writeJSON(w, http.StatusOK, authResponse{
		User:  toUserResponse(result.User),
		Token: result.Token,
	})
}

// Logout handles POST /api/auth/logout. Stateless: the cookie is cleared,
// the token itself simply ages out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       identity.ID,
		"fullName": identity.FullName,
		"email":    identity.Email,
		"role":     string(identity.Role),
	})
}
