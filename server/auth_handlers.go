package server

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/techieroshan/studentsupport/models"
	"github.com/techieroshan/studentsupport/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Register handles POST /auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Email       string          `json:"email"`
		Password    string          `json:"password"`
		Role        models.UserRole `json:"role"`
		DisplayName string          `json:"display_name"`
		City        string          `json:"city"`
		State       string          `json:"state"`
		Zip         string          `json:"zip"`
		Country     string          `json:"country"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Email == "" || req.Password == "" || req.DisplayName == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email, password, and display name are required"))
	}

	switch req.Role {
	case models.RoleSeeker, models.RoleDonor:
	default:
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Role must be SEEKER or DONOR"))
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateDisplayName(req.DisplayName); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	existing, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewConflictError("Email already registered"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	country := req.Country
	if country == "" {
		country = "United States"
	}

	// Email is auto-verified at registration; phone verification goes
	// through the OTP flow.
	user := &models.User{
		Email:              req.Email,
		PasswordHash:       string(hashedPassword),
		Role:               req.Role,
		DisplayName:        req.DisplayName,
		City:               req.City,
		State:              req.State,
		Zip:                req.Zip,
		Country:            country,
		EmailVerified:      true,
		VerificationStatus: models.VerificationVerified,
	}

	if err := s.userRepo.Create(c.Context(), user); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	s.notifier.Welcome(c.Context(), user)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Me handles GET /auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Unknown user"))
	}
	return c.JSON(user)
}

// RequestOTP handles POST /auth/request-otp. It issues a 6-digit phone
// verification code, valid for 10 minutes, delivered by SMS.
func (s *Server) RequestOTP(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Unknown user"))
	}

	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Phone != "" {
		user.Phone = req.Phone
		if err := s.userRepo.Update(c.Context(), user); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}
	if user.Phone == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A phone number is required"))
	}

	code, err := randomDigits(6)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	vc := &models.VerificationCode{
		UserID:    user.ID,
		Code:      code,
		CodeType:  "phone",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	if err := s.verifyRepo.Create(c.Context(), vc); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	s.notifier.OTP(c.Context(), user, code)

	return c.JSON(fiber.Map{"message": "Verification code sent"})
}

// VerifyOTP handles POST /auth/verify-otp
func (s *Server) VerifyOTP(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Unknown user"))
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A verification code is required"))
	}

	vc, err := s.verifyRepo.FindValid(c.Context(), user.ID, req.Code, "phone", time.Now())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if vc == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid or expired verification code"))
	}

	if err := s.verifyRepo.MarkUsed(c.Context(), vc.ID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	user.PhoneVerified = true
	user.VerificationStatus = models.VerificationVerified
	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{"message": "Phone verified successfully"})
}

// generateToken creates a JWT token for the given user ID
func (s *Server) generateToken(userID string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iss": "studentsupport-api",
		"aud": "studentsupport-client",
		"exp": now.Add(time.Hour * 24 * 7).Unix(), // 7 days
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"jti": fmt.Sprintf("%d-%s", now.Unix(), uuid.NewString()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// randomDigits returns a uniformly random numeric string of length n.
func randomDigits(n int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < n; i++ {
		max.Mul(max, big.NewInt(10))
	}
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v), nil
}
