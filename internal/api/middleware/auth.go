package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bwils5/cloudbooks-manager/internal/core/domain"
	"github.com/bwils5/cloudbooks-manager/internal/core/ports"
)

const identityKey = "identity"

// Identity returns the authenticated user set by the Auth middleware.
func Identity(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(identityKey).(*domain.User)
	return user, ok
}

// Auth validates the bearer token and injects the resolved user into the
// request context. Every failure collapses into a single 401 with a
// re-authentication challenge, so a caller cannot tell a malformed token
// from an expired one.
func Auth(authService ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return challenge(c, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return challenge(c, "invalid authorization header")
			}

			user, err := authService.Authenticate(c.Request().Context(), parts[1])
			if err != nil {
				return challenge(c, "could not validate credentials")
			}

			c.Set(identityKey, user)
			return next(c)
		}
	}
}

func challenge(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}
