package server

import (
	"github.com/techieroshan/studentsupport/models"

	"github.com/gofiber/fiber/v2"
)

// GetChatThreads handles GET /chats: all threads where the caller is a party,
// newest activity first.
func (s *Server) GetChatThreads(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)
	threads, err := s.chatRepo.GetThreadsForUser(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(threads)
}

// GetChatThread handles GET /chats/:threadId (party-only) including its
// ordered messages.
func (s *Server) GetChatThread(c *fiber.Ctx) error {
	threadID := c.Params("threadId")
	userID, _ := c.Locals("userID").(string)

	thread, err := s.chatRepo.GetThreadByID(c.Context(), threadID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Thread", threadID))
	}
	if !thread.IsParty(userID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You are not a party to this conversation"))
	}

	messages, err := s.chatRepo.GetMessages(c.Context(), threadID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"thread":   thread,
		"messages": messages,
	})
}

// SendMessage handles POST /chats/:threadId/messages (party-only).
func (s *Server) SendMessage(c *fiber.Ctx) error {
	threadID := c.Params("threadId")
	userID, _ := c.Locals("userID").(string)

	thread, err := s.chatRepo.GetThreadByID(c.Context(), threadID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Thread", threadID))
	}
	if !thread.IsParty(userID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("You are not a party to this conversation"))
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil || req.Text == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Message text is required"))
	}

	msg := &models.Message{
		ThreadID: threadID,
		SenderID: userID,
		Text:     req.Text,
	}
	if err := s.chatRepo.CreateMessage(c.Context(), msg); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Touch the thread so it sorts to the top of the inbox.
	_ = s.chatRepo.UpdateThread(c.Context(), thread)

	return c.Status(fiber.StatusCreated).JSON(msg)
}
