package handlers

import (
	"chatd/pkg/models"
	"chatd/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type ChatHandler struct {
	chats services.ChatService
}

func NewChat(chats services.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

func (h *ChatHandler) List(c *fiber.Ctx) error {
	wsID, _ := c.Locals("ws_id").(int64)
	chats, err := h.chats.FetchAll(wsID)
	if err != nil {
		return fail(c, err)
	}
	if chats == nil {
		chats = []models.Chat{}
	}
	return c.JSON(chats)
}

func (h *ChatHandler) Create(c *fiber.Ctx) error {
	wsID, _ := c.Locals("ws_id").(int64)

	var req models.CreateChat
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	chat, err := h.chats.Create(req, wsID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(chat)
}

func (h *ChatHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid chat id"})
	}
	chat, err := h.chats.GetByID(int64(id))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(chat)
}

func (h *ChatHandler) Update(c *fiber.Ctx) error {
	wsID, _ := c.Locals("ws_id").(int64)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid chat id"})
	}

	var req models.UpdateChat
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	chat, err := h.chats.Update(req, wsID, int64(id))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(chat)
}

func (h *ChatHandler) Delete(c *fiber.Ctx) error {
	wsID, _ := c.Locals("ws_id").(int64)
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid chat id"})
	}

	chat, err := h.chats.Delete(wsID, int64(id))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(chat)
}
