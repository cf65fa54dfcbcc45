package controllers

import (
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ContactController struct {
	Contact *services.ContactService
}

func NewContactController(contact *services.ContactService) *ContactController {
	return &ContactController{Contact: contact}
}

// Submit godoc
// @Summary Send a contact message
// @Tags contact
// @Accept json
// @Produce json
// @Param input body services.ContactInput true "Contact form"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /contact [post]
func (cc *ContactController) Submit(c *fiber.Ctx) error {
	var input services.ContactInput
	if err := c.BodyParser(&input); err != nil {
		return utils.Validation("Cannot parse JSON")
	}

	if _, err := cc.Contact.Submit(c.UserContext(), input); err != nil {
		return err
	}

	return utils.Message(c, fiber.StatusOK, "Contact message received successfully")
}

// Status godoc
// @Summary Liveness page
// @Tags status
// @Produce html
// @Success 200 {string} string
// @Router /status [get]
func Status(c *fiber.Ctx) error {
	c.Type("html")
	return c.SendString("<html><body><h1>Success: Pong</h1></body></html>")
}
