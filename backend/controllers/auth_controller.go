package controllers

import (
	"time"

	"coursehub/backend/config"
	"coursehub/backend/middleware"
	"coursehub/backend/models"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	Users    *services.UserService
	Sessions *services.SessionService
	Cfg      *config.Config
}

func NewAuthController(users *services.UserService, sessions *services.SessionService, cfg *config.Config) *AuthController {
	return &AuthController{Users: users, Sessions: sessions, Cfg: cfg}
}

// [+] Register godoc
// @Summary Register a new user
// @Description Creates a new user account and opens a session
// @Tags users
// @Accept json
// @Produce json
// @Param user body services.RegisterInput true "User registration data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /users/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Validation("Cannot parse JSON")
	}

	user, err := ac.Users.Register(c.UserContext(), input)
	if err != nil {
		return err
	}

	session, err := ac.Sessions.Issue(user)
	if err != nil {
		return err
	}
	ac.setSessionCookie(c, session)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"token":   session.Token,
		"user":    publicUser(user),
	})
}

// [+] Login godoc
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags users
// @Accept json
// @Produce json
// @Param request body services.LoginInput true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /users/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Validation("Cannot parse JSON")
	}

	user, err := ac.Users.Authenticate(c.UserContext(), input)
	if err != nil {
		return err
	}

	session, err := ac.Sessions.Issue(user)
	if err != nil {
		return err
	}
	ac.setSessionCookie(c, session)

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   session.Token,
		"user":    publicUser(user),
	})
}

// [+] Logout godoc
// @Summary User logout
// @Description Revokes the current token and clears the session cookie
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Router /users/logout [post]
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Unauthenticated("Not authorized, no token")
	}

	if err := ac.Sessions.Revoke(c.UserContext(), identity.Claims); err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   ac.Cfg.CookieSecure,
	})

	return c.JSON(fiber.Map{"message": "User logged out successfully"})
}

// [+] ForgotPassword godoc
// @Summary Request a password reset link
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /users/forgotpassword [post]
func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Validation("Cannot parse JSON")
	}

	if err := ac.Users.RequestPasswordReset(c.UserContext(), input.Email); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Email sent"})
}

// [+] ResetPassword godoc
// @Summary Redeem a password reset token
// @Tags users
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Router /users/resetpassword/{token} [put]
func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	var input services.ResetPasswordInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Validation("Cannot parse JSON")
	}

	if err := ac.Users.CompletePasswordReset(c.UserContext(), c.Params("token"), input); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Password reset successful"})
}

func (ac *AuthController) setSessionCookie(c *fiber.Ctx, session *services.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.Claims.ExpiresAtTime(),
		HTTPOnly: true,
		Secure:   ac.Cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func publicUser(user *models.User) fiber.Map {
	return fiber.Map{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	}
}
