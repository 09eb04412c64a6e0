package handlers

import (
	"subcanvas/internal/middleware"
	"subcanvas/internal/models"
	"subcanvas/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for account self-service and the admin
// user surface.
type UserHandler struct {
	userService *services.UserService
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the user routes. The /me group is self-service,
// the rest is admin only.
func (h *UserHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	adminOnly := middleware.RoleRequired(models.RoleAdmin)

	users := router.Group("/users", authRequired)
	users.Get("/me", h.HandleGetMe)
	users.Put("/me", h.HandleUpdateMe)
	users.Delete("/me", h.HandleDeleteMe)
	users.Post("/me/sns", h.HandleAddSnsAccount)
	users.Delete("/me/sns/:id", h.HandleDeleteSnsAccount)

	users.Get("/", adminOnly, h.HandleListUsers)
	users.Get("/:id", adminOnly, h.HandleGetUser)
	users.Put("/:id/status", adminOnly, h.HandleUpdateUserStatus)
	users.Delete("/:id", adminOnly, h.HandleDeleteUser)
}

// HandleGetMe returns the caller's account with SNS accounts attached.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	full, err := h.userService.GetByID(user.ID)
	if err != nil {
		return serviceError(c, err, "Could not retrieve account")
	}
	return c.JSON(full)
}

// UpdateMeRequest is the patch body for account updates. A password change
// must carry the current password.
type UpdateMeRequest struct {
	Nickname        string `json:"nickname" validate:"omitempty,min=2,max=100"`
	Password        string `json:"password" validate:"omitempty,min=6"`
	CurrentPassword string `json:"currentPassword" validate:"omitempty"`
}

// HandleUpdateMe updates the caller's nickname and/or password.
func (h *UserHandler) HandleUpdateMe(c *fiber.Ctx) error {
	var req UpdateMeRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user := middleware.CurrentUser(c)
	updated, err := h.userService.UpdateUser(user.ID, services.UpdateUserInput{
		Nickname:        req.Nickname,
		Password:        req.Password,
		CurrentPassword: req.CurrentPassword,
	})
	if err != nil {
		return serviceError(c, err, "Could not update account")
	}
	return c.JSON(updated)
}

// DeleteMeRequest confirms an account deletion. The password is required for
// LOCAL accounts only.
type DeleteMeRequest struct {
	CurrentPassword string `json:"currentPassword"`
}

// HandleDeleteMe deletes the caller's account and everything it owns.
func (h *UserHandler) HandleDeleteMe(c *fiber.Ctx) error {
	var req DeleteMeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c, err)
		}
	}

	user := middleware.CurrentUser(c)
	if err := h.userService.DeleteUser(user.ID, req.CurrentPassword); err != nil {
		return serviceError(c, err, "Could not delete account")
	}
	return c.JSON(fiber.Map{
		"message": "Account deleted successfully",
	})
}

// AddSnsAccountRequest is the body for linking an SNS profile.
type AddSnsAccountRequest struct {
	SnsType string `json:"snsType" validate:"required,max=50"`
	SnsUrl  string `json:"snsUrl" validate:"required,url"`
}

// HandleAddSnsAccount links an SNS profile URL to the caller's account.
func (h *UserHandler) HandleAddSnsAccount(c *fiber.Ctx) error {
	var req AddSnsAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user := middleware.CurrentUser(c)
	account, err := h.userService.AddSnsAccount(user.ID, req.SnsType, req.SnsUrl)
	if err != nil {
		return serviceError(c, err, "Could not add SNS account")
	}
	return c.Status(fiber.StatusCreated).JSON(account)
}

// HandleDeleteSnsAccount unlinks one of the caller's SNS accounts.
func (h *UserHandler) HandleDeleteSnsAccount(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return badBody(c, err)
	}
	user := middleware.CurrentUser(c)
	if err := h.userService.DeleteSnsAccount(user.ID, id); err != nil {
		return serviceError(c, err, "Could not delete SNS account")
	}
	return c.JSON(fiber.Map{
		"message": "SNS account deleted successfully",
	})
}

// HandleListUsers returns a page of users for the admin console.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	users, total, err := h.userService.ListUsers(
		c.QueryInt("skip", 0),
		c.QueryInt("take", 10),
	)
	if err != nil {
		return serviceError(c, err, "Could not list users")
	}
	return c.JSON(fiber.Map{
		"users": users,
		"total": total,
	})
}

// HandleGetUser returns any user by ID for the admin console.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.userService.GetByID(c.Params("id"))
	if err != nil {
		return serviceError(c, err, "Could not retrieve user")
	}
	return c.JSON(user)
}

// UpdateUserStatusRequest is the body for admin status changes.
type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE DORMANT BANNED"`
}

// HandleUpdateUserStatus moves a user between ACTIVE, DORMANT and BANNED.
func (h *UserHandler) HandleUpdateUserStatus(c *fiber.Ctx) error {
	var req UpdateUserStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(c, err)
	}

	user, err := h.userService.UpdateUserStatus(c.Params("id"), req.Status)
	if err != nil {
		return serviceError(c, err, "Could not update user status")
	}
	return c.JSON(user)
}

// HandleDeleteUser removes any account without a password check.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	if err := h.userService.AdminDeleteUser(c.Params("id")); err != nil {
		return serviceError(c, err, "Could not delete user")
	}
	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
	})
}
