package identity

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"caseseal/internal/platform/middleware"
	"caseseal/internal/transport/http/shared"
	dErrors "caseseal/pkg/domain-errors"
)

// Resolver validates a bearer token and returns its claims.
type Resolver interface {
	Validate(tokenString string) (*Claims, error)
}

// RevocationChecker reports whether a token JTI has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type contextKeyPrincipal struct{}

// GetPrincipal retrieves the resolved principal from the context.
// The boolean is false when the request did not pass through RequirePrincipal.
func GetPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKeyPrincipal{}).(Principal)
	return p, ok
}

// WithPrincipal injects a principal into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKeyPrincipal{}, p)
}

// RequirePrincipal resolves the caller's principal from the Authorization
// header and rejects requests without a valid, unrevoked bearer token.
func RequirePrincipal(resolver Resolver, revocation RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := middleware.GetRequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims, err := resolver.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				shared.WriteError(w, err)
				return
			}

			if revocation != nil && claims.ID != "" {
				revoked, err := revocation.IsRevoked(ctx, claims.ID)
				if err != nil {
					logger.ErrorContext(ctx, "revocation check failed",
						"error", err,
						"request_id", requestID,
					)
					shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "revocation check failed"))
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthorized access - revoked token",
						"jti", claims.ID,
						"request_id", requestID,
					)
					shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "token revoked"))
					return
				}
			}

			principal, err := PrincipalFromClaims(claims)
			if err != nil {
				shared.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
		})
	}
}

// RequireRoles rejects callers whose resolved principal has none of the
// allowed roles. Must run after RequirePrincipal.
func RequireRoles(logger *slog.Logger, roles ...Role) func(http.Handler) http.Handler {
	allowed := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			principal, ok := GetPrincipal(ctx)
			if !ok {
				shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "principal not resolved"))
				return
			}

			if _, ok := allowed[principal.Role]; !ok {
				logger.WarnContext(ctx, "forbidden - insufficient role",
					"role", principal.Role,
					"path", r.URL.Path,
					"request_id", middleware.GetRequestID(ctx),
				)
				shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "insufficient role"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
