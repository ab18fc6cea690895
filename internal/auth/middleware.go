package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"candrive-backend/internal/httputil"
)

type contextKey string

const subjectKey contextKey = "auth.subject"

// Middleware guards the admin routes. It reads a Bearer token from the
// Authorization header, falling back to the "token" cookie the browser
// admin pages carry.
func Middleware(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				if cookie, err := r.Cookie("token"); err == nil {
					tokenString = cookie.Value
				}
			}
			if tokenString == "" {
				httputil.RespondWithError(w, http.StatusUnauthorized, "Missing authentication token")
				return
			}

			claims, err := ValidateAccessToken(tokenString, secret)
			if err != nil {
				logger.Warn("rejected admin request",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				httputil.RespondWithError(w, http.StatusUnauthorized, "Invalid authentication token")
				return
			}

			logger.Debug("admin request authenticated",
				slog.String("subject", claims.Subject),
				slog.String("path", r.URL.Path),
			)

			ctx := context.WithValue(r.Context(), subjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

// Subject returns the authenticated token subject, or "" outside the
// middleware.
func Subject(ctx context.Context) string {
	subject, _ := ctx.Value(subjectKey).(string)
	return subject
}
