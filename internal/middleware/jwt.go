package middleware // contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// sessionCookie is the cookie name the auth handlers set on login; the
// SPA sends it automatically while API clients use the Bearer header.
const sessionCookie = "token"

// JWTAuth returns an Echo middleware that validates a session token and
// injects the subject and role claims into the request context. The
// token is read from the Authorization header ("Bearer <jwt>") or, when
// no header is present, from the session cookie. Handlers downstream
// access the authenticated principal via c.Get("user_id") and
// c.Get("role").
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFromRequest(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Login first to access this resource"})
			}

			// Parse with HS256 and our secret; reject any other
			// signing method.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Invalid or expired session"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Invalid or expired session"})
			}

			sub, _ := claims["sub"].(string)
			role, _ := claims["role"].(string)
			if sub == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Invalid or expired session"})
			}
			c.Set("user_id", sub)
			c.Set("role", role)
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if ck, err := c.Cookie(sessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	return ""
}
