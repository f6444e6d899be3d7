package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/adboard/board-api/internal/api/metrics"
	"github.com/adboard/board-api/internal/core/domain"
)

// IdentityKey is the echo.Context key holding the resolved *domain.User.
const IdentityKey = "identity"

// IdentityResolver turns a bearer token into the live account it names.
type IdentityResolver interface {
	ResolveCurrentIdentity(ctx context.Context, token string) (*domain.User, error)
}

// Auth resolves the Bearer token on every request and stores the identity in
// the context. Resolution errors go to the HTTP error handler unchanged.
func Auth(resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			user, err := resolver.ResolveCurrentIdentity(c.Request().Context(), strings.TrimSpace(parts[1]))
			if err != nil {
				metrics.TokenResolutionsTotal.WithLabelValues(resolutionResult(err)).Inc()
				return err
			}
			metrics.TokenResolutionsTotal.WithLabelValues("ok").Inc()

			c.Set(IdentityKey, user)
			return next(c)
		}
	}
}

func resolutionResult(err error) string {
	switch {
	case domain.IsTokenError(err):
		return "rejected"
	case errors.Is(err, domain.ErrInactiveAccount):
		return "blocked"
	default:
		return "error"
	}
}

// Identity returns the account stored by Auth, or nil outside authenticated routes.
func Identity(c echo.Context) *domain.User {
	user, _ := c.Get(IdentityKey).(*domain.User)
	return user
}
