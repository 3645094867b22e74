package handlers

import (
	"chatd/pkg/models"
	"chatd/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	auth services.AuthService
}

func NewAuth(auth services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req models.CreateUser
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	_, token, err := h.auth.Signup(req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(models.AuthResponse{Token: token})
}

func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req models.SigninUser
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	_, token, err := h.auth.Signin(req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(models.AuthResponse{Token: token})
}

// ListUsers returns the members of the caller's workspace.
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	wsID, _ := c.Locals("ws_id").(int64)
	users, err := h.auth.ListWorkspaceUsers(wsID)
	if err != nil {
		return fail(c, err)
	}
	if users == nil {
		users = []models.ChatUser{}
	}
	return c.JSON(users)
}
