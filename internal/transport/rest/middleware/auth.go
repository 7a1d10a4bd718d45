package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"formsapi/internal/model"
)

type contextKey string

const (
	UserKey      contextKey = "user"
	RequestIDKey contextKey = "requestId"
)

// Authenticator verifies credentials presented on a request
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	ResolveBearer(ctx context.Context, token string) (*model.User, error)
}

// AuthMiddleware provides bearer and basic authentication middleware
type AuthMiddleware struct {
	auth Authenticator
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireBearer resolves the bearer token from the Authorization header
func (m *AuthMiddleware) RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			unauthorized(w, "missing bearer token")
			return
		}

		user, err := m.auth.ResolveBearer(r.Context(), token)
		if err != nil {
			if _, ok := model.AsError(err); !ok {
				writeJSONError(w, http.StatusInternalServerError, "internal error", "internal_error")
				return
			}
			unauthorized(w, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireBasic checks HTTP basic credentials
func (m *AuthMiddleware) RequireBasic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="forms"`)
			unauthorized(w, "missing basic credentials")
			return
		}

		user, err := m.auth.Authenticate(r.Context(), username, password)
		if err != nil {
			if _, ok := model.AsError(err); !ok {
				writeJSONError(w, http.StatusInternalServerError, "internal error", "internal_error")
				return
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="forms"`)
			unauthorized(w, "invalid username or password")
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUser extracts the authenticated user from context
func GetUser(ctx context.Context) *model.User {
	if v, ok := ctx.Value(UserKey).(*model.User); ok {
		return v
	}
	return nil
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, message string) {
	writeJSONError(w, http.StatusUnauthorized, message, model.ErrUnauthenticated.Code)
}

func writeJSONError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
