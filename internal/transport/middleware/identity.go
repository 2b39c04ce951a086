package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/clinicore/access-management/internal"
	"github.com/clinicore/access-management/internal/catalog"
	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims is what this service reads out of an access token. Issuing
// tokens (login, refresh, sessions) belongs to the identity provider, not
// here; the engine only needs to know who is asking and with which role.
type IdentityClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Identity validates the Bearer token and puts the caller's username and
// role into the request context.
func Identity(jwtSecret string, logger *slog.Logger) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			claims := &IdentityClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				logger.Warn("token validation failed", "error", err)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			role, err := catalog.ParseRole(claims.Role)
			if err != nil {
				logger.Warn("token carries unknown role", "role", claims.Role)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if claims.Username == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := internal.ContextWithIdentity(r.Context(), internal.Identity{
				Username: claims.Username,
				Role:     role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin guards the override administration surface: only the ADMIN
// role manages overrides.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := internal.IdentityFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !identity.Role.IsAdmin() {
				logger.Warn("access denied: admin role required",
					"username", identity.Username,
					"role", identity.Role)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
