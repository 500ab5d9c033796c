package server

import (
	"errors"
	"time"

	"github.com/techieroshan/studentsupport/cache"
	"github.com/techieroshan/studentsupport/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const partnersCacheKey = "donor_partners:list"

// GetDonorPartners handles GET /donor-partners. The directory changes rarely,
// so it is served cache-aside with a short TTL.
func (s *Server) GetDonorPartners(c *fiber.Ctx) error {
	var partners []*models.DonorPartner
	err := cache.Aside(c.Context(), s.redis, partnersCacheKey, &partners, 5*time.Minute, func() error {
		var ferr error
		partners, ferr = s.partnerRepo.List(c.Context())
		return ferr
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(partners)
}

// CreateDonorPartner handles POST /donor-partners (admin only).
func (s *Server) CreateDonorPartner(c *fiber.Ctx) error {
	var body models.DonorPartner
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if body.Name == "" || body.Category == "" || body.Tier == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name, category, and tier are required"))
	}
	if body.IsAnonymous && body.AnonymousName == "" {
		body.AnonymousName = "Anonymous Donor"
	}

	if err := s.partnerRepo.Create(c.Context(), &body); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	cache.Invalidate(c.Context(), s.redis, partnersCacheKey)
	return c.Status(fiber.StatusCreated).JSON(body)
}

// DeleteDonorPartner handles DELETE /donor-partners/:id (admin only).
func (s *Server) DeleteDonorPartner(c *fiber.Ctx) error {
	id := c.Params("id")

	if _, err := s.partnerRepo.GetByID(c.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Donor partner", id))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if err := s.partnerRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	cache.Invalidate(c.Context(), s.redis, partnersCacheKey)
	return c.SendStatus(fiber.StatusNoContent)
}
