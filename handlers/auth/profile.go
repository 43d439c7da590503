package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sreevasthav1710/study10/model"
	"github.com/sreevasthav1710/study10/utils/middleware"
	"github.com/sreevasthav1710/study10/utils/response"
	"github.com/sreevasthav1710/study10/utils/validation"
)

// GetProfile returns the authenticated user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	return response.Success(c, userResponse(user))
}

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
}

// UpdateProfile updates the authenticated user's profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if ok, msg := validation.ValidateUsername(req.Username); !ok {
		return response.BadRequest(c, msg)
	}

	if err := h.db.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("username", validation.SanitizeString(req.Username)).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	user.Username = req.Username
	return response.SuccessWithMessage(c, "Profile updated successfully", userResponse(user))
}
