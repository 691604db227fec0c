package middleware

import (
	"context"
	"net/http"
	"strings"

	"sevagan-backend/internal/models"
	"sevagan-backend/internal/services"

	"github.com/goccy/go-json"
)

type contextKey string

const accountKey contextKey = "account"

// AuthMiddleware resolves the bearer token and stores the account in the
// request context. Missing, malformed and unknown tokens all get 401.
func AuthMiddleware(accountService *services.AccountService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				respondUnauthorized(w, "Authorization header required")
				return
			}

			account, err := accountService.Resolve(r.Context(), token)
			if err != nil {
				respondUnauthorized(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), accountKey, account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetAccount returns the authenticated account from context
func GetAccount(ctx context.Context) *models.Account {
	account, _ := ctx.Value(accountKey).(*models.Account)
	return account
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  "NOT_AUTHORIZED",
	})
}
