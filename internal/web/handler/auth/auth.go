// Package auth provides the login, refresh and logout handlers of the JSON
// API, plus the /me endpoint reporting the caller's resolved role and grants.
package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/authz"
	"github.com/buildtrack/buildtrack/internal/config"
	userctl "github.com/buildtrack/buildtrack/internal/db/controller/user"
	"github.com/buildtrack/buildtrack/internal/token"
	"github.com/buildtrack/buildtrack/internal/web/handler"
	authmw "github.com/buildtrack/buildtrack/internal/web/middleware/auth"
)

const (
	// Path is the base path for the auth endpoints.
	Path = handler.APIPath + "/auth"
)

// Service is the auth handler service.
type Service struct {
	cfg         *config.Config
	db          *gorm.DB
	authService *authz.Service
	tokens      *token.Manager
}

// Handler is the auth handler.
var Handler = Service{}

// Init initializes the auth handler. It takes the token manager on top of
// the usual handler dependencies because it is the only handler minting
// tokens.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *authz.Service, tokens *token.Manager) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app, cfg or db is nil")
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService
	s.tokens = tokens

	app.Route(Path, func(router fiber.Router) {
		router.Post("/login", s.Login)
		router.Post("/refresh", s.Refresh)
		router.Post("/logout", s.Logout)
		router.Get("/me", s.Me)
	})

	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and sets the token cookie pair. Invalid email
// and invalid password produce the same response; blocked accounts are
// rejected before a token is minted.
func (s *Service) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	dbUser, err := userctl.GetByEmail(s.db, req.Email)
	if err != nil {
		if errors.Is(err, userctl.ErrUserNotFound) || errors.Is(err, userctl.ErrEmailEmpty) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
		}

		log.Error().Err(err).Msg("login lookup failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	if !dbUser.VerifyPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid email or password"})
	}

	if dbUser.IsBlocked {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": authz.ErrAccountBlocked.Error()})
	}

	if err = s.issueTokens(c, dbUser.ID, dbUser.Email); err != nil {
		log.Error().Err(err).Msg("failed to issue tokens")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	roleName := ""
	if dbUser.Role != nil {
		roleName = dbUser.Role.Name
	}

	return c.JSON(fiber.Map{
		"id":    dbUser.ID,
		"email": dbUser.Email,
		"name":  dbUser.Name,
		"role":  roleName,
	})
}

// Refresh rotates the token pair against a valid refresh cookie. The stored
// jti must match: a refresh token that was superseded or revoked by logout
// is rejected even when its signature is still valid.
func (s *Service) Refresh(c *fiber.Ctx) error {
	raw := c.Cookies(authmw.CookieRefresh)
	if raw == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": authz.ErrUnauthenticated.Error()})
	}

	claims, err := s.tokens.VerifyRefresh(raw)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": authz.ErrUnauthenticated.Error()})
	}

	dbUser, err := userctl.Get(s.db, claims.Subject)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": authz.ErrUnauthenticated.Error()})
	}

	if dbUser.IsBlocked {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": authz.ErrAccountBlocked.Error()})
	}

	if dbUser.RefreshTokenID == "" || dbUser.RefreshTokenID != claims.ID {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": authz.ErrUnauthenticated.Error()})
	}

	if err = s.issueTokens(c, dbUser.ID, dbUser.Email); err != nil {
		log.Error().Err(err).Msg("failed to rotate tokens")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Logout revokes the stored refresh token and clears both cookies. It
// succeeds even without a valid session so a client can always reset.
func (s *Service) Logout(c *fiber.Ctx) error {
	if raw := c.Cookies(authmw.CookieRefresh); raw != "" {
		if claims, err := s.tokens.VerifyRefresh(raw); err == nil {
			if err = userctl.SetRefreshTokenID(s.db, claims.Subject, ""); err != nil {
				log.Error().Err(err).Msg("failed to revoke refresh token")
			}
		}
	}

	s.clearCookie(c, authmw.CookieAccess)
	s.clearCookie(c, authmw.CookieRefresh)

	return c.SendStatus(fiber.StatusNoContent)
}

// Me reports the caller's identity with the freshly resolved role and
// flattened grants, the data a frontend needs to hide what the caller cannot
// do anyway.
func (s *Service) Me(c *fiber.Ctx) error {
	grantee, err := s.authService.Resolve(authz.PrincipalFromCtx(c))
	if err != nil {
		status := fiber.StatusForbidden

		switch {
		case errors.Is(err, authz.ErrUnauthenticated):
			status = fiber.StatusUnauthorized
		case errors.Is(err, authz.ErrAuthorizationUnavailable):
			log.Error().Err(err).Msg("failed to resolve grantee")

			status = fiber.StatusInternalServerError
		}

		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"id":          grantee.Principal.ID,
		"email":       grantee.Principal.Email,
		"role":        grantee.Role.Name,
		"displayRole": grantee.Role.DisplayName,
		"grants":      grantee.Grants,
	})
}

// issueTokens mints a fresh token pair, stores the refresh jti and sets both
// cookies.
func (s *Service) issueTokens(c *fiber.Ctx, userID, email string) error {
	access, err := s.tokens.MintAccess(userID, email)
	if err != nil {
		return err
	}

	refresh, jti, err := s.tokens.MintRefresh(userID)
	if err != nil {
		return err
	}

	if err = userctl.SetRefreshTokenID(s.db, userID, jti); err != nil {
		return err
	}

	s.setCookie(c, authmw.CookieAccess, access, int(s.tokens.AccessTTL().Seconds()))
	s.setCookie(c, authmw.CookieRefresh, refresh, int(s.tokens.RefreshTTL().Seconds()))

	return nil
}

func (s *Service) setCookie(c *fiber.Ctx, name, value string, maxAge int) {
	cookie := &fiber.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax", // TODO: make this configurable
	}

	if s.cfg.DevMode {
		cookie.Secure = false
	}

	c.Cookie(cookie)
}

func (s *Service) clearCookie(c *fiber.Ctx, name string) {
	s.setCookie(c, name, "", -1)
}
