package server

import (
	"encoding/json"

	"github.com/techieroshan/studentsupport/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /users/me.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Unknown user"))
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PATCH /users/me. Email, role, and verification
// fields are not writable here.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Unknown user"))
	}

	var body struct {
		DisplayName     string          `json:"display_name"`
		AvatarID        *int            `json:"avatar_id"`
		Phone           string          `json:"phone"`
		Address         string          `json:"address"`
		City            string          `json:"city"`
		State           string          `json:"state"`
		Zip             string          `json:"zip"`
		Country         string          `json:"country"`
		Latitude        *float64        `json:"latitude"`
		Longitude       *float64        `json:"longitude"`
		Radius          *float64        `json:"radius"`
		Preferences     json.RawMessage `json:"preferences"`
		Languages       json.RawMessage `json:"languages"`
		IsAnonymous     *bool           `json:"is_anonymous"`
		WeeklyMealLimit *int            `json:"weekly_meal_limit"`
	}
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if body.DisplayName != "" {
		user.DisplayName = body.DisplayName
	}
	if body.AvatarID != nil {
		user.AvatarID = *body.AvatarID
	}
	if body.Phone != "" && body.Phone != user.Phone {
		user.Phone = body.Phone
		user.PhoneVerified = false
	}
	if body.Address != "" {
		user.Address = body.Address
	}
	if body.City != "" {
		user.City = body.City
	}
	if body.State != "" {
		user.State = body.State
	}
	if body.Zip != "" {
		user.Zip = body.Zip
	}
	if body.Country != "" {
		user.Country = body.Country
	}
	if body.Latitude != nil {
		user.Latitude = body.Latitude
	}
	if body.Longitude != nil {
		user.Longitude = body.Longitude
	}
	if body.Radius != nil {
		user.Radius = *body.Radius
	}
	if body.Preferences != nil {
		user.Preferences = body.Preferences
	}
	if body.Languages != nil {
		user.Languages = body.Languages
	}
	if body.IsAnonymous != nil {
		user.IsAnonymous = *body.IsAnonymous
	}
	if body.WeeklyMealLimit != nil {
		if *body.WeeklyMealLimit < 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Weekly meal limit cannot be negative"))
		}
		user.WeeklyMealLimit = body.WeeklyMealLimit
	}

	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(user)
}
