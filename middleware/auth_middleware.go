package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"invitation_server_go/auth"
)

type contextKey string

// ClaimsKey - ключ для хранения claims токена в контексте запроса.
const ClaimsKey contextKey = "claims"

// TokenVerifier проверяет bearer-токен.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// ErrorWriter пишет ошибку в ответ в формате API.
type ErrorWriter func(w http.ResponseWriter, statusCode int, message string)

// JWTMiddleware проверяет наличие и валидность JWT в заголовке Authorization.
// Если токен валиден, claims добавляются в контекст запроса.
func JWTMiddleware(verifier TokenVerifier, writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Printf("JWTMiddleware: отсутствует заголовок Authorization для %s %s", r.Method, r.URL.Path)
				w.Header().Set("WWW-Authenticate", `Bearer realm="invitation"`)
				writeError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Printf("JWTMiddleware: неверный формат заголовка Authorization для %s %s", r.Method, r.URL.Path)
				w.Header().Set("WWW-Authenticate", `Bearer realm="invitation"`)
				writeError(w, http.StatusUnauthorized, "Invalid Authorization header format (expected Bearer {token})")
				return
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				log.Printf("JWTMiddleware: невалидный токен для %s %s: %v", r.Method, r.URL.Path, err)
				w.Header().Set("WWW-Authenticate", `Bearer realm="invitation", error="invalid_token"`)
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole пропускает только запросы с ролью role. Ставится после JWTMiddleware.
func RequireRole(role string, writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if err := auth.RequireRole(claims, role); err != nil {
				if errors.Is(err, auth.ErrForbidden) {
					log.Printf("RequireRole: пользователю %s отказано в доступе к %s %s: %v", claims.Username, r.Method, r.URL.Path, err)
					writeError(w, http.StatusForbidden, "Admin role required")
					return
				}
				writeError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext возвращает claims, сохраненные JWTMiddleware.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}
