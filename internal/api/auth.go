package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/contact-sync/internal/errors"
)

type contextKey string

const operatorEmailKey contextKey = "operatorEmail"

// AuthConfig configures the bearer-token middleware. Allow decides whether
// the authenticated email may operate the tool; it is injected so tests and
// future multi-operator setups can swap the policy without touching the
// middleware.
type AuthConfig struct {
	JWTSecret string
	Allow     func(email string) bool
}

// OperatorFromContext returns the authenticated operator email, if any
func OperatorFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(operatorEmailKey).(string)
	return email, ok
}

// AuthMiddleware validates the Authorization bearer token and checks the
// email claim against the allow policy
func AuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, err := authenticate(cfg, r)
			if err != nil {
				respondServiceError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), operatorEmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate extracts and validates the bearer token, returning the
// email claim of the authenticated operator
func authenticate(cfg AuthConfig, r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperrors.NewUnauthorizedError("Authorization header is required")
	}

	tokenString := strings.TrimPrefix(header, "Bearer ")
	if tokenString == header {
		return "", apperrors.NewUnauthorizedError("Authorization header must use the Bearer scheme")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.NewUnauthorizedError("Token has expired")
		}
		return "", apperrors.NewUnauthorizedError("Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", apperrors.NewUnauthorizedError("Invalid token claims")
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return "", apperrors.NewUnauthorizedError("Token is missing the email claim")
	}

	if cfg.Allow != nil && !cfg.Allow(email) {
		return "", apperrors.NewForbiddenError("This account is not permitted to use the admin API")
	}

	return email, nil
}
