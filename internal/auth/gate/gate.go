package gate

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/auth/token"
	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type Verifier interface {
	Verify(raw string) (*token.Claims, error)
}

// Gate turns a presented token into claims and checks role requirements.
// Authenticate failures are UnauthenticatedError, RequireRole failures are
// ForbiddenError; callers answer them differently.
type Gate struct {
	verifier Verifier
}

func New(verifier Verifier) *Gate {
	return &Gate{verifier: verifier}
}

func (g *Gate) Authenticate(raw string) (*token.Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperrors.NewUnauthenticatedError("authentication required", nil)
	}

	claims, err := g.verifier.Verify(raw)
	if err != nil {
		return nil, apperrors.NewUnauthenticatedError("invalid or expired token", err)
	}
	return claims, nil
}

func (g *Gate) RequireRole(claims *token.Claims, role domain.Role) error {
	if claims == nil {
		return apperrors.NewUnauthenticatedError("authentication required", nil)
	}
	if claims.Role != role {
		return apperrors.NewForbiddenError(fmt.Sprintf("%s role required", role))
	}
	return nil
}

type claimsKey struct{}

func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*token.Claims)
	return claims, ok && claims != nil
}
