package controllers

import (
	"coursehub/backend/config"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Users *services.UserService
	Cfg   *config.Config
}

func NewUserController(users *services.UserService, cfg *config.Config) *UserController {
	return &UserController{Users: users, Cfg: cfg}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns authenticated user's profile data
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	user, err := uc.Users.GetByID(c.UserContext(), userID)
	if err != nil {
		return err
	}

	return c.JSON(user)
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates username, email, password and optionally the avatar (multipart field "avatar")
// @Tags users
// @Accept json,mpfd
// @Produce json
// @Param input body services.UpdateProfileInput true "Profile update data"
// @Success 200 {object} models.User
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var input services.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Validation("Cannot parse request body")
	}

	avatar, release, err := openUpload(c, "avatar")
	if err != nil {
		return err
	}
	defer release()

	user, err := uc.Users.UpdateProfile(c.UserContext(), userID, input, avatar)
	if err != nil {
		return err
	}

	return c.JSON(user)
}

// UploadAvatar godoc
// @Summary Replace the avatar
// @Tags users
// @Accept mpfd
// @Produce json
// @Success 200 {object} models.Asset
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/profile/avatar [put]
func (uc *UserController) UploadAvatar(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	avatar, release, err := openUpload(c, "avatar")
	if err != nil {
		return err
	}
	defer release()
	if avatar == nil {
		return utils.Validation("No file uploaded")
	}

	asset, err := uc.Users.SetAvatar(c.UserContext(), userID, *avatar)
	if err != nil {
		return err
	}

	return c.JSON(asset)
}

// ChangePassword godoc
// @Summary Change own password
// @Tags users
// @Accept json
// @Produce json
// @Param input body services.ChangePasswordInput true "Current and new password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/changepassword [put]
func (uc *UserController) ChangePassword(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var input services.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Validation("Cannot parse JSON")
	}

	if err := uc.Users.ChangePassword(c.UserContext(), userID, input); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}
