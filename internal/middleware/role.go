package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that enforces that the authenticated
// user has one of the given roles. The values correspond to the JWT's
// "role" claim, extracted by JWTAuth earlier in the chain. A missing or
// disallowed role aborts the request with 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get("role")
			role, ok := v.(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{
					"success": false,
					"message": fmt.Sprintf("Role (%v) is not allowed to access this resource", v),
				})
			}
			return next(c)
		}
	}
}

// currentUserID returns the authenticated user id from context, or
// "anon" for unauthenticated requests. Shared with the rate limiter's
// key builder.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return "anon"
}
