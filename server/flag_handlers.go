package server

import (
	"errors"

	"github.com/techieroshan/studentsupport/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateFlag handles POST /flags. Flagging snapshots the listing's current
// status before moving it to FLAGGED, so dismissal can restore it.
func (s *Server) CreateFlag(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	var body struct {
		ItemID      string `json:"item_id"`
		Reason      string `json:"reason"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&body); err != nil || body.ItemID == "" || body.Reason == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("item_id and reason are required"))
	}

	existing, err := s.flagRepo.FindActive(c.Context(), body.ItemID, userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("You have already flagged this listing"))
	}

	itemType, err := s.flagListing(c, body.ItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Listing", body.ItemID))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	flag := &models.FlaggedContent{
		ItemID:      body.ItemID,
		ItemType:    itemType,
		Reason:      body.Reason,
		Description: body.Description,
		FlaggedBy:   userID,
	}
	if err := s.flagRepo.Create(c.Context(), flag); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(flag)
}

// flagListing resolves the listing behind itemID, snapshots its status, and
// marks it FLAGGED. It reports which listing table the id resolved to.
func (s *Server) flagListing(c *fiber.Ctx, itemID string) (models.ItemType, error) {
	request, err := s.requestRepo.GetByID(c.Context(), itemID)
	if err == nil {
		if request.Status != models.RequestStatusFlagged {
			prev := request.Status
			request.PreviousStatus = &prev
			request.Status = models.RequestStatusFlagged
			if err := s.requestRepo.Update(c.Context(), request); err != nil {
				return "", err
			}
		}
		return models.ItemTypeRequest, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	offer, err := s.offerRepo.GetByID(c.Context(), itemID)
	if err != nil {
		return "", err
	}
	if offer.Status != models.OfferStatusFlagged {
		prev := offer.Status
		offer.PreviousStatus = &prev
		offer.Status = models.OfferStatusFlagged
		if err := s.offerRepo.Update(c.Context(), offer); err != nil {
			return "", err
		}
	}
	return models.ItemTypeOffer, nil
}
