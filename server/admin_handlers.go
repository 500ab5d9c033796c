package server

import (
	"errors"

	"github.com/techieroshan/studentsupport/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetFlags handles GET /admin/flags: undismissed flags, newest first.
func (s *Server) GetFlags(c *fiber.Ctx) error {
	flags, err := s.flagRepo.ListActive(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(flags)
}

// DismissFlag handles POST /admin/flags/:id/dismiss. The listing is restored
// to the status it held before the flag; a missing snapshot falls back to the
// default open state.
func (s *Server) DismissFlag(c *fiber.Ctx) error {
	id := c.Params("id")

	flag, err := s.flagRepo.GetByID(c.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Flag", id))
	}
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if flag.Dismissed {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Flag is already dismissed"))
	}

	if err := s.restoreListing(c, flag); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	flag.Dismissed = true
	if err := s.flagRepo.Update(c.Context(), flag); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(flag)
}

// restoreListing puts the flagged listing back into its snapshotted status.
func (s *Server) restoreListing(c *fiber.Ctx, flag *models.FlaggedContent) error {
	switch flag.ItemType {
	case models.ItemTypeRequest:
		request, err := s.requestRepo.GetByID(c.Context(), flag.ItemID)
		if err != nil {
			return err
		}
		if request.Status != models.RequestStatusFlagged {
			return nil
		}
		restored := models.RequestStatusOpen
		if request.PreviousStatus != nil {
			restored = *request.PreviousStatus
		}
		request.Status = restored
		request.PreviousStatus = nil
		return s.requestRepo.Update(c.Context(), request)
	case models.ItemTypeOffer:
		offer, err := s.offerRepo.GetByID(c.Context(), flag.ItemID)
		if err != nil {
			return err
		}
		if offer.Status != models.OfferStatusFlagged {
			return nil
		}
		restored := models.OfferStatusAvailable
		if offer.PreviousStatus != nil {
			restored = *offer.PreviousStatus
		}
		offer.Status = restored
		offer.PreviousStatus = nil
		return s.offerRepo.Update(c.Context(), offer)
	}
	return nil
}

// DeleteFlaggedContent handles DELETE /admin/flags/:id: removes both the
// flagged listing and the flag itself.
func (s *Server) DeleteFlaggedContent(c *fiber.Ctx) error {
	id := c.Params("id")

	flag, err := s.flagRepo.GetByID(c.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Flag", id))
	}
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	switch flag.ItemType {
	case models.ItemTypeRequest:
		if err := s.requestRepo.Delete(c.Context(), flag.ItemID); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	case models.ItemTypeOffer:
		if err := s.offerRepo.Delete(c.Context(), flag.ItemID); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	if err := s.flagRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
