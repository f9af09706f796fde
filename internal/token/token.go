// Package token mints and verifies the JWT pair backing API sessions: a
// short-lived access token and a longer-lived refresh token, signed with
// separate secrets. Tokens carry identity only; role and blocked state are
// resolved fresh per request by the authorization layer.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/buildtrack/buildtrack/internal/uniuri"
)

var (
	// ErrInvalidToken is returned for tokens that fail signature or claim
	// validation, including tokens signed with the wrong secret.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for well-formed tokens past their expiry.
	ErrExpiredToken = errors.New("token expired")
)

// Claims is the payload of both token kinds. Subject holds the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and verifies the token pair.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewManager creates a Manager. The secrets must be distinct non-empty
// strings; config validation enforces that before we get here.
func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// MintAccess issues a signed access token for the user.
func (m *Manager) MintAccess(userID, email string) (string, error) {
	return m.mint(m.accessSecret, m.accessTTL, userID, email, "")
}

// MintRefresh issues a signed refresh token for the user. The returned id is
// the token's jti claim, stored server side so refresh tokens can be revoked
// on logout.
func (m *Manager) MintRefresh(userID string) (string, string, error) {
	id := uniuri.NewLen(uniuri.TokenLen)

	raw, err := m.mint(m.refreshSecret, m.refreshTTL, userID, "", id)
	if err != nil {
		return "", "", err
	}

	return raw, id, nil
}

// VerifyAccess validates an access token and returns its claims.
func (m *Manager) VerifyAccess(raw string) (*Claims, error) {
	return verify(raw, m.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims. Callers
// still have to check the jti against the stored token id.
func (m *Manager) VerifyRefresh(raw string) (*Claims, error) {
	return verify(raw, m.refreshSecret)
}

// AccessTTL returns the access token lifetime, for cookie expiry.
func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

// RefreshTTL returns the refresh token lifetime, for cookie expiry.
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

func (m *Manager) mint(secret []byte, ttl time.Duration, userID, email, id string) (string, error) {
	now := time.Now()

	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verify(raw string, secret []byte) (*Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}

		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &claims, nil
}
