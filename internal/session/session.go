// Package session issues and resolves the signed session cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dogpark/internal/config"
	"dogpark/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	Issuer   = "dogpark-api"
	Audience = "dogpark-client"

	blacklistPrefix = "blacklist:"
)

var (
	ErrNoSession    = models.NewUnauthorizedError("Authorization required")
	ErrInvalidToken = models.NewUnauthorizedError("Invalid or expired token")
	ErrRevoked      = models.NewUnauthorizedError("Token has been revoked")
)

// Claims is the resolved identity carried by a session token.
type Claims struct {
	UserID    uint
	ID        string
	ExpiresAt time.Time
}

// Manager signs, resolves and revokes session tokens. A nil redis client
// disables revocation.
type Manager struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	rdb        *redis.Client
	now        func() time.Time
}

func NewManager(cfg *config.Config, rdb *redis.Client) *Manager {
	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	name := cfg.SessionCookieName
	if name == "" {
		name = "dogpark_session"
	}
	return &Manager{
		secret:     []byte(cfg.JWTSecret),
		cookieName: name,
		ttl:        ttl,
		secure:     cfg.IsProduction(),
		rdb:        rdb,
		now:        time.Now,
	}
}

// CookieName is the name of the session cookie.
func (m *Manager) CookieName() string { return m.cookieName }

// Issue signs a token for userID.
func (m *Manager) Issue(userID uint) (string, *Claims, error) {
	if len(m.secret) == 0 {
		return "", nil, fmt.Errorf("JWT secret not configured")
	}
	now := m.now()
	claims := &Claims{UserID: userID, ID: uuid.NewString(), ExpiresAt: now.Add(m.ttl)}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        claims.ID,
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse verifies a token and checks it against the revocation list.
func (m *Manager) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrNoSession
	}
	var rc jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &rc, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(rc.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}
	claims := &Claims{UserID: uint(userID), ID: rc.ID}
	if rc.ExpiresAt != nil {
		claims.ExpiresAt = rc.ExpiresAt.Time
	}

	if claims.ID != "" && m.rdb != nil {
		n, err := m.rdb.Exists(ctx, blacklistPrefix+claims.ID).Result()
		if err == nil && n > 0 {
			return nil, ErrRevoked
		}
	}
	return claims, nil
}

// Revoke blacklists the token until it would have expired.
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if m.rdb == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return nil
	}
	return m.rdb.Set(ctx, blacklistPrefix+claims.ID, "1", ttl).Err()
}

// TokenFrom reads the session cookie, falling back to a Bearer header.
func (m *Manager) TokenFrom(c *fiber.Ctx) string {
	if v := c.Cookies(m.cookieName); v != "" {
		return v
	}
	scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}

// Resolve returns the caller's claims, or an UNAUTHORIZED AppError.
func (m *Manager) Resolve(c *fiber.Ctx) (*Claims, error) {
	return m.Parse(c.UserContext(), m.TokenFrom(c))
}

func (m *Manager) SetCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (m *Manager) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// IsSessionError reports whether err came from token resolution.
func IsSessionError(err error) bool {
	return errors.Is(err, ErrNoSession) || errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrRevoked)
}
