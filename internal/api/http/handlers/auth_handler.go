package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-manager/internal/api/dto"
	"github.com/spec-kit/task-manager/internal/auth"
	"github.com/spec-kit/task-manager/internal/service"
)

// AuthHandler exposes the register/login/logout/me endpoints. Login and
// register are the only places a session cookie is created; the gate owns
// its destruction on verification failure.
type AuthHandler struct {
	auth    *service.AuthService
	cookies *auth.CookieManager
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService, cookies *auth.CookieManager) *AuthHandler {
	return &AuthHandler{auth: authService, cookies: cookies}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "name, email and password are required"})
	}

	user, token, _, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return c.Status(http.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return err
	}

	h.cookies.Attach(c, token)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"user": dto.UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
		"message": "Registration successful",
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "email and password are required"})
	}

	user, token, _, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		return err
	}

	h.cookies.Attach(c, token)
	return c.JSON(fiber.Map{
		"user": dto.UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
		"message": "Login successful",
	})
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.cookies.Clear(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// Me handles GET /api/auth/me, echoing the gate-resolved identity.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	}
	return c.JSON(fiber.Map{
		"user": dto.UserResponse{
			ID:    identity.ID,
			Email: identity.Email,
			Name:  identity.Name,
			Role:  identity.Role,
		},
	})
}
