package server

import (
	"errors"

	"github.com/techieroshan/studentsupport/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateRating handles POST /ratings: a post-transaction review of the other
// party.
func (s *Server) CreateRating(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	var body struct {
		ToUserID      string `json:"to_user_id"`
		TransactionID string `json:"transaction_id"`
		Stars         int    `json:"stars"`
		Comment       string `json:"comment"`
		IsPublic      *bool  `json:"is_public"`
	}
	if err := c.BodyParser(&body); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if body.ToUserID == "" || body.TransactionID == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("to_user_id and transaction_id are required"))
	}
	if body.Stars < 1 || body.Stars > 5 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Stars must be between 1 and 5"))
	}
	if body.ToUserID == userID {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("You cannot rate yourself"))
	}

	if _, err := s.userRepo.GetByID(c.Context(), body.ToUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("User", body.ToUserID))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	isPublic := true
	if body.IsPublic != nil {
		isPublic = *body.IsPublic
	}

	rating := &models.Rating{
		FromUserID:    userID,
		ToUserID:      body.ToUserID,
		TransactionID: body.TransactionID,
		Stars:         body.Stars,
		Comment:       body.Comment,
		IsPublic:      isPublic,
	}
	if err := s.ratingRepo.Create(c.Context(), rating); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rating)
}

// GetRatings handles GET /ratings?to_user_id=: public ratings, newest first.
func (s *Server) GetRatings(c *fiber.Ctx) error {
	ratings, err := s.ratingRepo.ListPublic(c.Context(), c.Query("to_user_id"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(ratings)
}
