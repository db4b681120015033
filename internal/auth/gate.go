package auth

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/task-manager/internal/observability"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization"
	corsMaxAge       = "86400"
)

// Gate is the request-gating middleware. It classifies every incoming path,
// resolves the caller's identity where one is required, and ends each
// request in exactly one of three ways: forwarded with identity attached,
// a 401 with an opaque error body, or a redirect to the login page. It is
// also the only component allowed to destroy the session cookie.
type Gate struct {
	resolver *IdentityResolver
	cookies  *CookieManager
	routes   *RouteTable
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewGate constructs the middleware.
func NewGate(resolver *IdentityResolver, cookies *CookieManager, routes *RouteTable, metrics *observability.Metrics, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{resolver: resolver, cookies: cookies, routes: routes, metrics: metrics, logger: logger}
}

// Handle gates a single request.
func (g *Gate) Handle(c *fiber.Ctx) error {
	origin := c.Get(fiber.HeaderOrigin)
	if origin == "" {
		origin = "*"
	}
	c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
	c.Set(fiber.HeaderAccessControlAllowCredentials, "true")

	// Preflight never touches tokens or the user store.
	if c.Method() == fiber.MethodOptions {
		c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)
		c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
		c.Set(fiber.HeaderAccessControlMaxAge, corsMaxAge)
		return c.SendStatus(fiber.StatusOK)
	}

	class := g.routes.Classify(c.Path())
	switch class {
	case RoutePublic:
		return g.handlePublic(c)
	case RouteProtectedAPI:
		return g.handleProtected(c, class)
	default:
		return g.handleProtected(c, RouteProtectedPage)
	}
}

// handlePublic forwards the request untouched, except that an already
// authenticated caller hitting a login surface is sent to the dashboard
// instead of being offered a second login.
func (g *Gate) handlePublic(c *fiber.Ctx) error {
	path := c.Path()
	if path == LoginPath || path == RegisterPath {
		if identity := g.resolver.Resolve(c); identity != nil {
			g.metrics.RecordAuthOutcome(RoutePublic.String(), observability.AuthOutcomeRedirected)
			return c.Redirect(DashboardPath, fiber.StatusFound)
		}
	}
	g.metrics.RecordAuthOutcome(RoutePublic.String(), observability.AuthOutcomeForwarded)
	return c.Next()
}

func (g *Gate) handleProtected(c *fiber.Ctx, class RouteClass) error {
	identity := g.resolver.Resolve(c)
	if identity == nil {
		// A cookie that failed verification stays invalid forever; clear it
		// so the client stops replaying it.
		if c.Cookies(CookieName) != "" {
			g.cookies.Clear(c)
		}

		if class == RouteProtectedAPI {
			g.metrics.RecordAuthOutcome(class.String(), observability.AuthOutcomeUnauthorized)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}

		g.metrics.RecordAuthOutcome(class.String(), observability.AuthOutcomeRedirected)
		target := LoginPath + "?from=" + url.QueryEscape(c.Path())
		return c.Redirect(target, fiber.StatusFound)
	}

	SetIdentity(c, identity)
	g.metrics.RecordAuthOutcome(class.String(), observability.AuthOutcomeForwarded)
	return c.Next()
}
