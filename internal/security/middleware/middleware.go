package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mindsync/server/internal/domain"
	"github.com/mindsync/server/internal/observability/metrics"
	"github.com/mindsync/server/internal/security/auth"
	"github.com/mindsync/server/internal/security/ratelimit"
)

type identityContextKey struct{}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Authenticate resolves the session token to a fresh user record on every
// request. A missing or invalid token is a 401; a valid token whose account
// has since been disabled is a 403, so disabling takes effect mid-session.
func Authenticate(tm *auth.TokenManager, users domain.UserRepository, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := auth.TokenFromRequest(r)
			if err != nil {
				metrics.ObserveAuthFailure("missing_token")
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			claims, err := tm.Verify(tokenString)
			if err != nil {
				metrics.ObserveAuthFailure("invalid_token")
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			user, err := users.GetByID(claims.Subject)
			if err != nil {
				metrics.ObserveAuthFailure("unknown_user")
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if !user.IsActive {
				metrics.ObserveAuthFailure("account_disabled")
				log.Warn("disabled account attempted request",
					slog.String("user_id", user.ID),
					slog.String("path", r.URL.Path),
				)
				writeError(w, http.StatusForbidden, "account disabled")
				return
			}

			identity := &domain.Identity{
				ID:       user.ID,
				FullName: user.FullName,
				Email:    user.Email,
				Role:     user.Role,
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a handler to admin callers. Authenticate must run first.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if identity == nil || identity.Role != domain.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin access only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireClinician gates a handler to clinician or admin callers.
func RequireClinician(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if identity == nil || !identity.Role.IsClinical() {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit rejects callers over the per-user request budget
func RateLimit(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ""
			if identity := IdentityFromContext(r.Context()); identity != nil {
				key = identity.ID
			}

			if !limiter.Allow(r.Context(), key) {
				log.Warn("rate limit exceeded",
					slog.String("user_id", key),
					slog.String("path", r.URL.Path),
				)
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ValidateJSONContentType ensures mutating requests carry JSON bodies
func ValidateJSONContentType(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPut && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if !strings.Contains(contentType, "application/json") {
				log.Warn("invalid content type",
					slog.String("path", r.URL.Path),
					slog.String("content_type", contentType),
					slog.String("method", r.Method),
				)
				writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext returns the authenticated caller, or nil
func IdentityFromContext(ctx context.Context) *domain.Identity {
	if v := ctx.Value(identityContextKey{}); v != nil {
		return v.(*domain.Identity)
	}
	return nil
}

// WithIdentity injects an identity into a context. Test helper.
func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}
