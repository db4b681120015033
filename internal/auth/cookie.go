package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "auth-token"

// CookieManager writes and clears the session cookie. It is the only place
// the cookie attribute set lives; no other component mutates cookies.
type CookieManager struct {
	ttl    time.Duration
	secure bool
}

// NewCookieManager builds a manager. secure controls the Secure attribute
// and should be true for production deployments only.
func NewCookieManager(ttl time.Duration, secure bool) *CookieManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CookieManager{ttl: ttl, secure: secure}
}

// Attach sets the session cookie on the response. Calling it again
// overwrites the previous value.
func (m *CookieManager) Attach(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		Expires:  time.Now().Add(m.ttl),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Clear destroys the session cookie by rewriting it empty with an expiry in
// the past. Safe to call when no cookie was present, and calling it twice
// produces the same attributes both times.
func (m *CookieManager) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
