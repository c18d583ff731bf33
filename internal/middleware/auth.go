package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"menu-photo-services/internal/auth"
)

type contextKey string

const authContextKey contextKey = "authContext"

type AuthContext struct {
	UserID string
	Role   auth.UserRole
	Email  string
	APIKey bool
}

func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey).(*AuthContext)
	return ac, ok && ac != nil
}

func writeAuthError(w http.ResponseWriter, status int, message string, debug string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	code := "UNAUTHORIZED"
	if status == http.StatusForbidden {
		code = "FORBIDDEN"
	}
	payload := map[string]any{
		"success": false,
		"error":   code,
		"message": message,
	}
	if os.Getenv("APP_ENV") == "development" && strings.TrimSpace(debug) != "" {
		payload["debug"] = debug
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// AdminAuth admits an X-Api-Key matching apiKeyHash or a bearer token for a
// role allowed to manage menu photos. With neither credential configured the
// admin API is closed.
func AdminAuth(jwtSecret string, apiKeyHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.TrimSpace(jwtSecret) == "" && strings.TrimSpace(apiKeyHash) == "" {
				writeAuthError(w, http.StatusForbidden, "Admin access is disabled", "")
				return
			}

			if key := strings.TrimSpace(r.Header.Get("X-Api-Key")); key != "" {
				if !auth.VerifyAPIKey(key, apiKeyHash) {
					writeAuthError(w, http.StatusUnauthorized, "Invalid API key", "")
					return
				}
				ctx := WithAuthContext(r.Context(), &AuthContext{Role: auth.RoleSuperAdmin, APIKey: true})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			claims, err := auth.VerifyAccessToken(auth.ParseBearerToken(r.Header.Get("Authorization")), jwtSecret)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Authorization token required", err.Error())
				return
			}
			if !claims.CanManageMenuPhotos() {
				writeAuthError(w, http.StatusForbidden, "Admin access required", "")
				return
			}

			ctx := WithAuthContext(r.Context(), &AuthContext{UserID: claims.UserID, Role: claims.Role, Email: claims.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
