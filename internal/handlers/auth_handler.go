package handlers

import (
	"log"

	"subcanvas/internal/middleware"
	"subcanvas/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/social-login", h.HandleSocialLogin)
	authRoutes.Get("/profile", middleware.AuthRequired(h.authService), h.HandleProfile)
}

// RegisterRequest is the body for local registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Nickname string `json:"nickname" validate:"required,min=2,max=100"`
}

// HandleRegister registers a LOCAL user and returns a token for immediate use.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	result, err := h.authService.Register(req.Email, req.Password, req.Nickname)
	if err != nil {
		return serviceError(c, err, "Registration failed")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// LoginRequest is the body for local login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates an email/password pair and issues a token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user, err := h.authService.ValidateCredentials(req.Email, req.Password)
	if err != nil {
		return serviceError(c, err, "Authentication failed")
	}
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid email or password",
		})
	}

	result, err := h.authService.Login(user)
	if err != nil {
		log.Printf("Error issuing token for user %s: %v", user.ID, err)
		return serviceError(c, err, "Authentication failed")
	}
	return c.JSON(result)
}

// SocialLoginRequest is the identity asserted by an external provider.
type SocialLoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Nickname   string `json:"nickname" validate:"required,min=2,max=100"`
	Provider   string `json:"provider" validate:"required,oneof=GOOGLE KAKAO"`
	ProviderID string `json:"providerId" validate:"required"`
}

// HandleSocialLogin logs in or registers a social-provider identity.
func (h *AuthHandler) HandleSocialLogin(c *fiber.Ctx) error {
	var req SocialLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	result, err := h.authService.SocialLogin(services.SocialLoginData{
		Email:      req.Email,
		Nickname:   req.Nickname,
		Provider:   req.Provider,
		ProviderID: req.ProviderID,
	})
	if err != nil {
		return serviceError(c, err, "Social login failed")
	}
	return c.JSON(result)
}

// HandleProfile returns the authenticated user resolved by the token guard.
func (h *AuthHandler) HandleProfile(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentUser(c))
}
