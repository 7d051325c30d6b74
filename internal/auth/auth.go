// Package auth verifies session tokens issued by the managed auth backend
// and attaches the caller's identity to requests.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken  = errors.New("missing session token")
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrMissingClaims = errors.New("missing required claims")
)

// Claims are the fields read from a session JWT.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Identity is an authenticated caller.
type Identity struct {
	UserID string
	Email  string
}

// TokenVerifier turns a raw token into an identity.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

// Verifier checks HS256 session tokens against the project's JWT secret.
type Verifier struct {
	secret   []byte
	audience string
	now      func() time.Time
}

// NewVerifier creates a Verifier. An empty audience disables the aud check.
func NewVerifier(secret, audience string) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		audience: audience,
		now:      time.Now,
	}
}

// Verify validates signature, expiry and audience and returns the identity.
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.now),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrMissingClaims
	}

	return &Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

const identityKey = "auth.identity"

// Middleware resolves the caller's identity from the Authorization header
// or the session cookie. Requests without a valid token pass through
// anonymously.
func Middleware(v TokenVerifier, cookieName string, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" && cookieName != "" {
			token = c.Cookies(cookieName)
		}
		if token == "" {
			return c.Next()
		}

		id, err := v.Verify(token)
		if err != nil {
			logger.Debug("session token rejected", "path", c.Path(), "error", err)
			return c.Next()
		}
		c.Locals(identityKey, id)
		return c.Next()
	}
}

// FromCtx returns the identity attached by Middleware.
func FromCtx(c *fiber.Ctx) (*Identity, bool) {
	id, ok := c.Locals(identityKey).(*Identity)
	return id, ok && id != nil
}

// RequireIdentity rejects anonymous API calls with 401.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := FromCtx(c); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		return c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
