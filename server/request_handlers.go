package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/techieroshan/studentsupport/models"
	"github.com/techieroshan/studentsupport/repository"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type requestBody struct {
	City         string                `json:"city"`
	State        string                `json:"state"`
	Zip          string                `json:"zip"`
	Country      string                `json:"country"`
	Latitude     *float64              `json:"latitude"`
	Longitude    *float64              `json:"longitude"`
	DietaryNeeds json.RawMessage       `json:"dietary_needs"`
	MedicalNeeds json.RawMessage       `json:"medical_needs"`
	Logistics    json.RawMessage       `json:"logistics"`
	Description  string                `json:"description"`
	Availability string                `json:"availability"`
	Frequency    string                `json:"frequency"`
	Urgency      string                `json:"urgency"`
	Status       *models.RequestStatus `json:"status"`
}

// CreateRequest handles POST /requests (seekers only).
func (s *Server) CreateRequest(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Unknown user"))
	}

	var body requestBody
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if body.Description == "" || body.Frequency == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Description and frequency are required"))
	}

	// Location defaults to the seeker's profile.
	city, state, zip, country := body.City, body.State, body.Zip, body.Country
	if city == "" {
		city, state, zip, country = user.City, user.State, user.Zip, user.Country
	}
	urgency := body.Urgency
	if urgency == "" {
		urgency = "NORMAL"
	}

	request := &models.MealRequest{
		SeekerID:     user.ID,
		City:         city,
		State:        state,
		Zip:          zip,
		Country:      country,
		Latitude:     body.Latitude,
		Longitude:    body.Longitude,
		DietaryNeeds: body.DietaryNeeds,
		MedicalNeeds: body.MedicalNeeds,
		Logistics:    body.Logistics,
		Description:  body.Description,
		Availability: body.Availability,
		Frequency:    body.Frequency,
		Urgency:      urgency,
		Status:       models.RequestStatusOpen,
	}

	if err := s.requestRepo.Create(c.Context(), request); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

// BrowseRequests handles GET /requests with status/city/diet filters.
func (s *Server) BrowseRequests(c *fiber.Ctx) error {
	filter := repository.ListingFilter{
		Status: c.Query("status"),
		City:   c.Query("city"),
		Diet:   c.Query("diet"),
	}
	if filter.Status != "" && !models.ValidRequestStatus(models.RequestStatus(filter.Status)) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(fmt.Sprintf("Unknown request status %q", filter.Status)))
	}

	requests, err := s.requestRepo.List(c.Context(), filter)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(requests)
}

// GetMyRequests handles GET /requests/mine.
func (s *Server) GetMyRequests(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)
	requests, err := s.requestRepo.GetBySeekerID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(requests)
}

// GetRequest handles GET /requests/:id.
func (s *Server) GetRequest(c *fiber.Ctx) error {
	id := c.Params("id")
	request, err := s.requestRepo.GetByID(c.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Request", id))
	}
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(request)
}

// UpdateRequest handles PATCH /requests/:id (owner only). Status changes are
// validated against the transition table.
func (s *Server) UpdateRequest(c *fiber.Ctx) error {
	id := c.Params("id")
	userID, _ := c.Locals("userID").(string)
	role, _ := c.Locals("userRole").(models.UserRole)

	request, err := s.requestRepo.GetByID(c.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Request", id))
	}
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if request.SeekerID != userID && role != models.RoleAdmin {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Only the request owner can modify it"))
	}

	var body requestBody
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if body.Status != nil && *body.Status != request.Status {
		if !models.ValidRequestStatus(*body.Status) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(fmt.Sprintf("Unknown request status %q", *body.Status)))
		}
		if !models.CanTransitionRequest(request.Status, *body.Status) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(fmt.Sprintf("Cannot move request from %s to %s", request.Status, *body.Status)))
		}
		request.Status = *body.Status
	}

	if body.Description != "" {
		request.Description = body.Description
	}
	if body.Availability != "" {
		request.Availability = body.Availability
	}
	if body.Frequency != "" {
		request.Frequency = body.Frequency
	}
	if body.Urgency != "" {
		request.Urgency = body.Urgency
	}
	if body.City != "" {
		request.City = body.City
	}
	if body.State != "" {
		request.State = body.State
	}
	if body.Zip != "" {
		request.Zip = body.Zip
	}
	if body.DietaryNeeds != nil {
		request.DietaryNeeds = body.DietaryNeeds
	}
	if body.MedicalNeeds != nil {
		request.MedicalNeeds = body.MedicalNeeds
	}
	if body.Logistics != nil {
		request.Logistics = body.Logistics
	}

	if err := s.requestRepo.Update(c.Context(), request); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(request)
}

// DeleteRequest handles DELETE /requests/:id (owner only).
func (s *Server) DeleteRequest(c *fiber.Ctx) error {
	id := c.Params("id")
	userID, _ := c.Locals("userID").(string)
	role, _ := c.Locals("userRole").(models.UserRole)

	request, err := s.requestRepo.GetByID(c.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Request", id))
	}
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if request.SeekerID != userID && role != models.RoleAdmin {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Only the request owner can delete it"))
	}

	if err := s.requestRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
