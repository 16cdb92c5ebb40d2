package auth

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jkemta/soutenance-api/model"
	"github.com/jkemta/soutenance-api/services"
	"github.com/jkemta/soutenance-api/services/storage"
	authutil "github.com/jkemta/soutenance-api/utils/auth"
	"github.com/jkemta/soutenance-api/utils/middleware"
	"github.com/jkemta/soutenance-api/utils/response"
)

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// ChangePasswordRequest represents a self-service password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ProfileResponse is the account plus its role profile
type ProfileResponse struct {
	UserResponse
	CandidatProfile   *model.CandidatProfile   `json:"candidat_profile,omitempty"`
	EnseignantProfile *model.EnseignantProfile `json:"enseignant_profile,omitempty"`
}

func toProfileResponse(user *model.User) ProfileResponse {
	return ProfileResponse{
		UserResponse:      toUserResponse(user),
		CandidatProfile:   user.CandidatProfile,
		EnseignantProfile: user.EnseignantProfile,
	}
}

// GetProfile retrieves the current user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	user, err := h.users.GetUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to load profile")
	}

	return response.Success(c, toProfileResponse(user))
}

// UpdateProfile updates the current user's basic account fields
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.users.UpdateUser(c.Context(), userID, services.UpdateUserRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, toProfileResponse(user))
}

// ChangePassword replaces the current user's password after verifying the
// current one. All outstanding tokens are invalidated.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if !authutil.IsPasswordValid(req.NewPassword) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, user.PasswordSalt, req.CurrentPassword); err != nil {
		return response.Unauthorized(c, "Current password is incorrect")
	}

	if err := h.users.SetPassword(c.Context(), userID, req.NewPassword); err != nil {
		return response.InternalServerError(c, "Failed to change password")
	}

	return response.Success(c, fiber.Map{
		"message": "Password changed successfully",
	})
}

// UploadPhoto stores the candidate's profile photo. A new upload replaces the
// previous file in object storage.
func (h *AuthHandler) UploadPhoto(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	role, _ := middleware.GetUserRole(c)
	if role != model.RoleCandidat {
		return response.Forbidden(c, "Only candidates have a profile photo")
	}

	profile, err := h.users.CandidatProfileFor(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Candidat profile not found")
		}
		return response.InternalServerError(c, "Failed to load profile")
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return response.BadRequest(c, "Photo file is required")
	}

	contentType := storage.GetContentType(fileHeader.Filename)
	if !strings.HasPrefix(contentType, "image/") {
		return response.BadRequest(c, "Photo must be a PNG or JPEG image")
	}

	if h.storage == nil {
		return response.InternalServerError(c, "Object storage is not configured")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "Failed to open uploaded file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return response.InternalServerError(c, "Failed to read uploaded file")
	}

	key := storage.GenerateKey(fmt.Sprintf("photos/%d", profile.ID), fileHeader.Filename)
	photoURL, err := h.storage.UploadFile(c.Context(), key, bytes.NewReader(content), contentType)
	if err != nil {
		return response.InternalServerError(c, "Failed to store photo")
	}

	previous, err := h.users.SetCandidatPhoto(c.Context(), profile.ID, key, photoURL)
	if err != nil {
		if delErr := h.storage.DeleteFile(c.Context(), key); delErr != nil {
			log.Printf("Failed to clean up stored photo %s: %v", key, delErr)
		}
		return response.InternalServerError(c, "Failed to save photo")
	}

	if previous != "" && previous != key {
		if err := h.storage.DeleteFile(c.Context(), previous); err != nil {
			log.Printf("Failed to delete previous photo %s: %v", previous, err)
		}
	}

	return response.Success(c, fiber.Map{
		"photo_key": key,
		"photo_url": photoURL,
	})
}
