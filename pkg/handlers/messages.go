package handlers

import (
	"chatd/pkg/models"
	"chatd/pkg/services"

	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	messages services.MessageService
	chats    services.ChatService
}

func NewMessages(messages services.MessageService, chats services.ChatService) *MessageHandler {
	return &MessageHandler{messages: messages, chats: chats}
}

// Send posts a message to a chat. Only members may post; the insert trigger
// raises the notification that fans the message out to connected members.
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(int64)
	chatID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid chat id"})
	}

	if err := h.requireMember(int64(chatID), userID); err != nil {
		return fail(c, err)
	}

	var req models.CreateMessage
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	msg, err := h.messages.Create(req, int64(chatID), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(msg)
}

func (h *MessageHandler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(int64)
	chatID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid chat id"})
	}

	if err := h.requireMember(int64(chatID), userID); err != nil {
		return fail(c, err)
	}

	var opts models.ListMessages
	if err := c.QueryParser(&opts); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid query"})
	}

	msgs, err := h.messages.List(opts, int64(chatID))
	if err != nil {
		return fail(c, err)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return c.JSON(msgs)
}

func (h *MessageHandler) requireMember(chatID, userID int64) error {
	ok, err := h.chats.IsMember(chatID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return services.ErrPermissionDenied
	}
	return nil
}
