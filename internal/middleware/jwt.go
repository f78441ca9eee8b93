package middleware // middleware holds the echo middleware applied in front of the API

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	ContextSubject = "subject"
	ContextRole    = "role"
)

// JWTAuth returns an echo middleware that validates an HS256 bearer token
// signed with secret and stores its "sub" and "role" claims in the context
// under ContextSubject and ContextRole.  Expired tokens are rejected by the
// parser.
func JWTAuth(secret string) echo.MiddlewareFunc {
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// restrict to HMAC so a token cannot pick its own algorithm
			tok, err := jwt.Parse(raw, keyFunc, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			sub, _ := claims.GetSubject()
			c.Set(ContextSubject, sub)
			c.Set(ContextRole, claims[ContextRole])
			return next(c)
		}
	}
}
