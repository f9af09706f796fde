// Package auth provides the Fiber middleware that turns a presented access
// token into the request principal.
package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/buildtrack/buildtrack/internal/authz"
	"github.com/buildtrack/buildtrack/internal/token"
)

const (
	// CookieAccess is the cookie carrying the access token.
	CookieAccess = "access_token"
	// CookieRefresh is the cookie carrying the refresh token.
	CookieRefresh = "refresh_token"

	bearerPrefix = "Bearer "
)

// Middleware attaches the principal of a valid access token to the request.
// It never denies: requests without a usable token simply carry no principal
// and the authorization guards turn that into a 401. The token only proves
// identity; role and blocked state are loaded fresh by the guards.
func Middleware(tokens *token.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(CookieAccess)
		if raw == "" {
			if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, bearerPrefix) {
				raw = strings.TrimPrefix(h, bearerPrefix)
			}
		}

		if raw == "" {
			return c.Next()
		}

		claims, err := tokens.VerifyAccess(raw)
		if err != nil {
			return c.Next()
		}

		c.Locals(authz.LocalPrincipal, &authz.Principal{
			ID:    claims.Subject,
			Email: claims.Email,
		})

		return c.Next()
	}
}
