package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/adboard/board-api/internal/core/domain"
	"github.com/adboard/board-api/internal/core/service"
)

// RBAC admits identities whose role is exactly one of allowedRoles. It must
// run after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := service.RequireRole(Identity(c), allowedRoles...); err != nil {
				return err
			}
			return next(c)
		}
	}
}
