package gate

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Middleware authenticates the Authorization header, which may carry the
// raw token or "Bearer <token>", and stores the claims in the context.
func (g *Gate) Middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := g.Authenticate(tokenFromHeader(r.Header.Get("Authorization")))
			if err != nil {
				logger.Debug("authentication failed", zap.String("path", r.URL.Path), zap.Error(err))
				writeDenied(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireAdmin must run after Middleware.
func (g *Gate) RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := ClaimsFromContext(r.Context())
			if err := g.RequireRole(claims, domain.RoleAdmin); err != nil {
				logger.Warn("admin access denied", zap.String("path", r.URL.Path), zap.Error(err))
				writeDenied(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromHeader(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func writeDenied(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	resp := errorResponse{Error: "UNAUTHENTICATED", Message: "not logged in"}
	if fe, ok := apperrors.IsForbiddenError(err); ok {
		status = http.StatusForbidden
		resp = errorResponse{Error: "FORBIDDEN", Message: fe.Message}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
