package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/techieroshan/studentsupport/models"
	"github.com/techieroshan/studentsupport/repository"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type offerBody struct {
	City           string              `json:"city"`
	State          string              `json:"state"`
	Zip            string              `json:"zip"`
	Country        string              `json:"country"`
	Latitude       *float64            `json:"latitude"`
	Longitude      *float64            `json:"longitude"`
	Description    string              `json:"description"`
	ImageURL       string              `json:"image_url"`
	DietaryTags    json.RawMessage     `json:"dietary_tags"`
	MedicalTags    json.RawMessage     `json:"medical_tags"`
	Logistics      json.RawMessage     `json:"logistics"`
	Availability   string              `json:"availability"`
	Frequency      string              `json:"frequency"`
	AvailableUntil *time.Time          `json:"available_until"`
	IsAnonymous    *bool               `json:"is_anonymous"`
	Status         *models.OfferStatus `json:"status"`
}

// CreateOffer handles POST /offers (donors only). Creation is gated by the
// donor's weekly meal limit, counted over a trailing 7-day window.
func (s *Server) CreateOffer(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Unknown user"))
	}

	var body offerBody
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if body.Description == "" || body.Frequency == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Description and frequency are required"))
	}

	if user.WeeklyMealLimit != nil {
		since := time.Now().AddDate(0, 0, -7)
		count, err := s.offerRepo.CountByDonorSince(c.Context(), user.ID, since)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if count >= int64(*user.WeeklyMealLimit) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(fmt.Sprintf(
					"Weekly meal limit of %d reached; try again later", *user.WeeklyMealLimit)))
		}
	}

	city, state, zip, country := body.City, body.State, body.Zip, body.Country
	if city == "" {
		city, state, zip, country = user.City, user.State, user.Zip, user.Country
	}
	availableUntil := time.Now().AddDate(0, 0, 7)
	if body.AvailableUntil != nil {
		availableUntil = *body.AvailableUntil
	}
	isAnonymous := user.IsAnonymous
	if body.IsAnonymous != nil {
		isAnonymous = *body.IsAnonymous
	}

	offer := &models.MealOffer{
		DonorID:        user.ID,
		City:           city,
		State:          state,
		Zip:            zip,
		Country:        country,
		Latitude:       body.Latitude,
		Longitude:      body.Longitude,
		Description:    body.Description,
		ImageURL:       body.ImageURL,
		DietaryTags:    body.DietaryTags,
		MedicalTags:    body.MedicalTags,
		Logistics:      body.Logistics,
		Availability:   body.Availability,
		Frequency:      body.Frequency,
		AvailableUntil: availableUntil,
		IsAnonymous:    isAnonymous,
		Status:         models.OfferStatusAvailable,
	}

	if err := s.offerRepo.Create(c.Context(), offer); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(offer)
}

// BrowseOffers handles GET /offers with status/city/diet filters.
func (s *Server) BrowseOffers(c *fiber.Ctx) error {
	filter := repository.ListingFilter{
		Status: c.Query("status"),
		City:   c.Query("city"),
		Diet:   c.Query("diet"),
	}
	if filter.Status != "" && !models.ValidOfferStatus(models.OfferStatus(filter.Status)) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(fmt.Sprintf("Unknown offer status %q", filter.Status)))
	}

	offers, err := s.offerRepo.List(c.Context(), filter)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(offers)
}

// GetMyOffers handles GET /offers/mine (donors only).
func (s *Server) GetMyOffers(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)
	offers, err := s.offerRepo.GetByDonorID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(offers)
}

// GetOffer handles GET /offers/:id.
func (s *Server) GetOffer(c *fiber.Ctx) error {
	id := c.Params("id")
	offer, err := s.offerRepo.GetByID(c.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Offer", id))
	}
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(offer)
}

// UpdateOffer handles PATCH /offers/:id (owner only).
func (s *Server) UpdateOffer(c *fiber.Ctx) error {
	id := c.Params("id")
	userID, _ := c.Locals("userID").(string)
	role, _ := c.Locals("userRole").(models.UserRole)

	offer, err := s.offerRepo.GetByID(c.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Offer", id))
	}
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if offer.DonorID != userID && role != models.RoleAdmin {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Only the offer owner can modify it"))
	}

	var body offerBody
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if body.Status != nil && *body.Status != offer.Status {
		if !models.ValidOfferStatus(*body.Status) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(fmt.Sprintf("Unknown offer status %q", *body.Status)))
		}
		if !models.CanTransitionOffer(offer.Status, *body.Status) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(fmt.Sprintf("Cannot move offer from %s to %s", offer.Status, *body.Status)))
		}
		offer.Status = *body.Status
	}

	if body.Description != "" {
		offer.Description = body.Description
	}
	if body.ImageURL != "" {
		offer.ImageURL = body.ImageURL
	}
	if body.Availability != "" {
		offer.Availability = body.Availability
	}
	if body.Frequency != "" {
		offer.Frequency = body.Frequency
	}
	if body.City != "" {
		offer.City = body.City
	}
	if body.State != "" {
		offer.State = body.State
	}
	if body.Zip != "" {
		offer.Zip = body.Zip
	}
	if body.DietaryTags != nil {
		offer.DietaryTags = body.DietaryTags
	}
	if body.MedicalTags != nil {
		offer.MedicalTags = body.MedicalTags
	}
	if body.Logistics != nil {
		offer.Logistics = body.Logistics
	}
	if body.AvailableUntil != nil {
		offer.AvailableUntil = *body.AvailableUntil
	}
	if body.IsAnonymous != nil {
		offer.IsAnonymous = *body.IsAnonymous
	}

	if err := s.offerRepo.Update(c.Context(), offer); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(offer)
}

// DeleteOffer handles DELETE /offers/:id (owner only).
func (s *Server) DeleteOffer(c *fiber.Ctx) error {
	id := c.Params("id")
	userID, _ := c.Locals("userID").(string)
	role, _ := c.Locals("userRole").(models.UserRole)

	offer, err := s.offerRepo.GetByID(c.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Offer", id))
	}
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if offer.DonorID != userID && role != models.RoleAdmin {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Only the offer owner can delete it"))
	}

	if err := s.offerRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
