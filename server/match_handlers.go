package server

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/techieroshan/studentsupport/middleware"
	"github.com/techieroshan/studentsupport/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// generatePIN returns a uniform 4-digit completion PIN in [1000, 9999].
func generatePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+1000), nil
}

// AcceptMatch handles POST /chats/matches/:itemId/accept. The counterparty
// of a listing accepts it, which opens (or reuses) the chat thread, moves the
// listing to IN_PROGRESS, and issues the completion PIN for the handoff.
func (s *Server) AcceptMatch(c *fiber.Ctx) error {
	itemID := c.Params("itemId")

	accepter, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Unknown user"))
	}

	// The item id points into either listing table; resolve the request
	// branch first, then fall back to offers.
	request, err := s.requestRepo.GetByID(c.Context(), itemID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if request != nil {
		return s.acceptRequest(c, request, accepter)
	}

	offer, err := s.offerRepo.GetByID(c.Context(), itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Listing", itemID))
	}
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return s.acceptOffer(c, offer, accepter)
}

func (s *Server) acceptRequest(c *fiber.Ctx, request *models.MealRequest, accepter *models.User) error {
	if accepter.ID == request.SeekerID {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Students accept matches via offers, not their own requests"))
	}

	// An in-progress request means a handshake already started; reuse its
	// thread and PIN rather than minting a second pairing.
	if request.Status == models.RequestStatusInProgress {
		thread, err := s.chatRepo.FindThread(c.Context(), models.ItemTypeRequest, request.ID, request.SeekerID, accepter.ID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if thread != nil {
			return c.JSON(fiber.Map{
				"thread_id":      thread.ID,
				"completion_pin": request.CompletionPIN,
				"status":         request.Status,
			})
		}
	}

	if !models.CanTransitionRequest(request.Status, models.RequestStatusInProgress) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(fmt.Sprintf("Request in status %s cannot be accepted", request.Status)))
	}

	pin, err := generatePIN()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	request.Status = models.RequestStatusInProgress
	request.CompletionPIN = &pin
	if err := s.requestRepo.Update(c.Context(), request); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	requestID := request.ID
	thread := &models.ChatThread{
		ItemType:  models.ItemTypeRequest,
		ItemID:    request.ID,
		RequestID: &requestID,
		StudentID: request.SeekerID,
		DonorID:   accepter.ID,
		Status:    models.ThreadStatusInProgress,
	}
	if err := s.chatRepo.CreateThread(c.Context(), thread); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.postSystemMessage(c, thread.ID, accepter.ID,
		fmt.Sprintf("%s accepted this request. Use PIN %s to confirm the handoff.", accepter.DisplayName, pin))

	if request.Seeker != nil {
		s.notifier.MatchAccepted(c.Context(), accepter, request.Seeker, thread.ID, pin)
	}

	return c.JSON(fiber.Map{
		"thread_id":      thread.ID,
		"completion_pin": pin,
		"status":         request.Status,
	})
}

func (s *Server) acceptOffer(c *fiber.Ctx, offer *models.MealOffer, accepter *models.User) error {
	if accepter.ID == offer.DonorID {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Donors cannot accept their own offers"))
	}

	if offer.Status == models.OfferStatusInProgress {
		thread, err := s.chatRepo.FindThread(c.Context(), models.ItemTypeOffer, offer.ID, accepter.ID, offer.DonorID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if thread != nil {
			return c.JSON(fiber.Map{
				"thread_id":      thread.ID,
				"completion_pin": offer.CompletionPIN,
				"status":         offer.Status,
			})
		}
	}

	if !models.CanTransitionOffer(offer.Status, models.OfferStatusInProgress) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(fmt.Sprintf("Offer in status %s cannot be accepted", offer.Status)))
	}

	pin, err := generatePIN()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	offer.Status = models.OfferStatusInProgress
	offer.CompletionPIN = &pin
	if err := s.offerRepo.Update(c.Context(), offer); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	offerID := offer.ID
	thread := &models.ChatThread{
		ItemType:  models.ItemTypeOffer,
		ItemID:    offer.ID,
		OfferID:   &offerID,
		StudentID: accepter.ID,
		DonorID:   offer.DonorID,
		Status:    models.ThreadStatusInProgress,
	}
	if err := s.chatRepo.CreateThread(c.Context(), thread); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.postSystemMessage(c, thread.ID, accepter.ID,
		fmt.Sprintf("%s accepted this offer. Use PIN %s to confirm the handoff.", accepter.DisplayName, pin))

	if offer.Donor != nil {
		s.notifier.MatchAccepted(c.Context(), accepter, offer.Donor, thread.ID, pin)
	}

	return c.JSON(fiber.Map{
		"thread_id":      thread.ID,
		"completion_pin": pin,
		"status":         offer.Status,
	})
}

// VerifyPIN handles POST /chats/matches/:itemId/verify-pin. A matching PIN
// completes the transaction; a mismatch is reported in the success envelope,
// not as an error. Attempts are rate-limited per listing.
func (s *Server) VerifyPIN(c *fiber.Ctx) error {
	itemID := c.Params("itemId")
	userID, _ := c.Locals("userID").(string)

	allowed, err := middleware.CheckRateLimit(c.Context(), s.redis, "verify_pin", itemID, 5, time.Minute)
	if err == nil && !allowed {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "Too many PIN attempts, please wait a minute.",
		})
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := c.BodyParser(&req); err != nil || req.PIN == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A PIN is required"))
	}

	thread, err := s.chatRepo.FindThreadByItem(c.Context(), itemID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if thread == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Match", itemID))
	}
	if !thread.IsParty(userID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Only the matched parties can verify the PIN"))
	}

	switch thread.ItemType {
	case models.ItemTypeRequest:
		return s.verifyRequestPIN(c, thread, req.PIN)
	case models.ItemTypeOffer:
		return s.verifyOfferPIN(c, thread, req.PIN)
	default:
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(fmt.Errorf("unknown item type %q", thread.ItemType)))
	}
}

func (s *Server) verifyRequestPIN(c *fiber.Ctx, thread *models.ChatThread, pin string) error {
	request, err := s.requestRepo.GetByID(c.Context(), thread.ItemID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Request", thread.ItemID))
	}

	if request.CompletionPIN == nil || *request.CompletionPIN != pin {
		return c.JSON(fiber.Map{
			"success": false,
			"status":  request.Status,
			"message": "Invalid PIN",
		})
	}

	request.CompletionPIN = nil
	request.Status = models.RequestStatusFulfilled
	if err := s.requestRepo.Update(c.Context(), request); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.completeThread(c, thread)
	return c.JSON(fiber.Map{
		"success": true,
		"status":  request.Status,
	})
}

func (s *Server) verifyOfferPIN(c *fiber.Ctx, thread *models.ChatThread, pin string) error {
	offer, err := s.offerRepo.GetByID(c.Context(), thread.ItemID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Offer", thread.ItemID))
	}

	if offer.CompletionPIN == nil || *offer.CompletionPIN != pin {
		return c.JSON(fiber.Map{
			"success": false,
			"status":  offer.Status,
			"message": "Invalid PIN",
		})
	}

	offer.CompletionPIN = nil
	offer.Status = models.OfferStatusClaimed
	if err := s.offerRepo.Update(c.Context(), offer); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.completeThread(c, thread)
	return c.JSON(fiber.Map{
		"success": true,
		"status":  offer.Status,
	})
}

// completeThread closes the thread and notifies both parties. Failures here
// never fail the verification that triggered them.
func (s *Server) completeThread(c *fiber.Ctx, thread *models.ChatThread) {
	thread.Status = models.ThreadStatusCompleted
	if err := s.chatRepo.UpdateThread(c.Context(), thread); err != nil {
		middleware.Logger.Warn("failed to close thread", "thread_id", thread.ID, "error", err.Error())
	}

	var users []*models.User
	for _, id := range []string{thread.StudentID, thread.DonorID} {
		if u, err := s.userRepo.GetByID(c.Context(), id); err == nil {
			users = append(users, u)
		}
	}
	s.notifier.TransactionCompleted(c.Context(), thread.StudentID, thread.DonorID, users)
}

// postSystemMessage records an automated message in the thread, best-effort.
func (s *Server) postSystemMessage(c *fiber.Ctx, threadID, senderID, text string) {
	msg := &models.Message{
		ThreadID: threadID,
		SenderID: senderID,
		Text:     text,
		IsSystem: true,
	}
	if err := s.chatRepo.CreateMessage(c.Context(), msg); err != nil {
		middleware.Logger.Warn("failed to post system message", "thread_id", threadID, "error", err.Error())
	}
}
