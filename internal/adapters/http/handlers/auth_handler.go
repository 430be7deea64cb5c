package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"conveyease/internal/adapters/http/middleware"
	"conveyease/internal/config"
	"conveyease/internal/core/services"
	"conveyease/internal/pkg/response"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		cfg:         cfg,
	}
}

// RefreshRequest carries a refresh token for clients that do not use cookies
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register handles account creation by management
// @Summary Register new user
// @Description Create a user account. Employees must name a supervisor.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RegisterInput true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := bind(c, &req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	user, err := h.userService.Register(c.Context(), &req)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "User registered successfully", fiber.Map{
		"user": services.ToUserResponse(user),
	})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate user and return tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := bind(c, &req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		return response.FromError(c, err)
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Login successful", result)
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Rotate the refresh token (cookie or body) and issue a new pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshRequest false "Refresh token when not sent as cookie"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	refreshToken := h.refreshTokenFrom(c)
	if refreshToken == "" {
		return response.Unauthorized(c, "Refresh token not found")
	}

	result, err := h.authService.RefreshToken(c.Context(), refreshToken)
	if err != nil {
		if response.StatusFor(err) == fiber.StatusUnauthorized {
			h.clearAuthCookies(c)
		}
		return response.FromError(c, err)
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Token refreshed successfully", result)
}

// Logout handles user logout
// @Summary Logout user
// @Description Revoke the refresh token and clear cookies
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if refreshToken := h.refreshTokenFrom(c); refreshToken != "" {
		_ = h.authService.Logout(c.Context(), refreshToken)
	}

	h.clearAuthCookies(c)

	return response.Success(c, "Logged out successfully", nil)
}

// LogoutAll handles logout from all devices
// @Summary Logout from all devices
// @Description Revoke all refresh tokens for the user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	if err := h.authService.LogoutAll(c.Context(), actor.ID); err != nil {
		return response.InternalServerError(c, "Failed to logout from all devices")
	}

	h.clearAuthCookies(c)

	return response.Success(c, "Logged out from all devices", nil)
}

// Me returns the current user info
// @Summary Get current user
// @Description Get the currently authenticated user's information
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.authService.GetUserByID(c.Context(), actor.ID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": services.ToUserResponse(user),
	})
}

func (h *AuthHandler) refreshTokenFrom(c *fiber.Ctx) string {
	if token := c.Cookies("refresh_token"); token != "" {
		return token
	}
	var req RefreshRequest
	if len(c.Body()) > 0 && c.BodyParser(&req) == nil {
		return req.RefreshToken
	}
	return ""
}

// setAuthCookies sets access and refresh token cookies
func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.AccessTokenMins * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/api/v1/auth",
		MaxAge:   h.cfg.JWT.RefreshTokenDays * 24 * 60 * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearAuthCookies clears auth cookies
func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-1 * time.Hour)
	for name, path := range map[string]string{"access_token": "/", "refresh_token": "/api/v1/auth"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     path,
			MaxAge:   -1,
			Expires:  expired,
			Secure:   h.cfg.Cookie.Secure,
			HTTPOnly: true,
			SameSite: h.cfg.Cookie.SameSite,
			Domain:   h.cfg.Cookie.Domain,
		})
	}
}
