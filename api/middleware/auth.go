package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/mise-backend/api/responses"
	pkgerrors "github.com/angelmondragon/mise-backend/pkg/errors"
	"github.com/angelmondragon/mise-backend/pkg/logger"
)

const bearerPrefix = "bearer "

// Bearer rejects requests without a well-formed "Bearer <token>" header.
// Verification is left to the handler so body validation can run first.
func Bearer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			if len(raw) < len(bearerPrefix) || !strings.EqualFold(raw[:len(bearerPrefix)], bearerPrefix) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed credentials"))
				return
			}
			token := strings.TrimSpace(raw[len(bearerPrefix):])
			if token == "" || strings.ContainsAny(token, " \t") {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed credentials"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithBearerToken(r.Context(), token)))
		})
	}
}
