// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/techieroshan/studentsupport/cache"
	"github.com/techieroshan/studentsupport/config"
	"github.com/techieroshan/studentsupport/database"
	"github.com/techieroshan/studentsupport/middleware"
	"github.com/techieroshan/studentsupport/models"
	"github.com/techieroshan/studentsupport/notifications"
	"github.com/techieroshan/studentsupport/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	userRepo    repository.UserRepository
	requestRepo repository.RequestRepository
	offerRepo   repository.OfferRepository
	chatRepo    repository.ChatRepository
	flagRepo    repository.FlagRepository
	ratingRepo  repository.RatingRepository
	partnerRepo repository.PartnerRepository
	verifyRepo  repository.VerificationRepository
	notifier    *notifications.Service
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.Connect(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient), nil
}

// NewServerWithDeps wires a server over existing connections. Tests use it
// with in-memory SQLite and miniredis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	return &Server{
		config:      cfg,
		db:          db,
		redis:       redisClient,
		userRepo:    repository.NewUserRepository(db),
		requestRepo: repository.NewRequestRepository(db),
		offerRepo:   repository.NewOfferRepository(db),
		chatRepo:    repository.NewChatRepository(db),
		flagRepo:    repository.NewFlagRepository(db),
		ratingRepo:  repository.NewRatingRepository(db),
		partnerRepo: repository.NewPartnerRepository(db),
		verifyRepo:  repository.NewVerificationRepository(db),
		notifier:    notifications.NewService(cfg, redisClient, middleware.Logger),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Request ID for tracing
	app.Use(requestid.New())

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware
	app.Use(middleware.StructuredLogger())

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// System
	app.Get("/health", s.HealthCheck)
	app.Get("/metrics", monitor.New(monitor.Config{
		Title: "Student Support Backend Metrics",
	}))

	// SEO / metadata
	app.Get("/sitemap.xml", s.Sitemap)
	app.Get("/robots.txt", s.Robots)
	app.Get("/llms.txt", s.LLMsTxt)
	app.Get("/schema.org/organization", s.OrganizationSchema)
	app.Get("/schema.org/faq", s.FAQSchema)

	// Auth routes
	auth := app.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Get("/me", s.AuthRequired(), s.Me)
	auth.Post("/request-otp", s.AuthRequired(), middleware.RateLimit(s.redis, 3, 10*time.Minute, "request_otp"), s.RequestOTP)
	auth.Post("/verify-otp", s.AuthRequired(), s.VerifyOTP)

	// Public browse routes
	app.Get("/requests", s.BrowseRequests)
	app.Get("/offers", s.BrowseOffers)
	app.Get("/ratings", s.GetRatings)
	app.Get("/donor-partners", s.GetDonorPartners)

	// Protected routes
	protected := app.Group("", s.AuthRequired())

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Patch("/me", s.UpdateMyProfile)

	requests := protected.Group("/requests")
	requests.Post("/", s.RequireRole(models.RoleSeeker), s.CreateRequest)
	requests.Get("/mine", s.GetMyRequests)
	requests.Get("/:id", s.GetRequest)
	requests.Patch("/:id", s.UpdateRequest)
	requests.Delete("/:id", s.DeleteRequest)

	offers := protected.Group("/offers")
	offers.Post("/", s.RequireRole(models.RoleDonor), s.CreateOffer)
	offers.Get("/mine", s.RequireRole(models.RoleDonor), s.GetMyOffers)
	offers.Get("/:id", s.GetOffer)
	offers.Patch("/:id", s.UpdateOffer)
	offers.Delete("/:id", s.DeleteOffer)

	chats := protected.Group("/chats")
	chats.Post("/matches/:itemId/accept", s.RequireRole(models.RoleSeeker, models.RoleDonor), s.AcceptMatch)
	chats.Post("/matches/:itemId/verify-pin", s.RequireRole(models.RoleSeeker, models.RoleDonor), s.VerifyPIN)
	chats.Get("/", s.GetChatThreads)
	chats.Get("/:threadId", s.GetChatThread)
	chats.Post("/:threadId/messages", middleware.RateLimit(s.redis, 15, time.Minute, "send_chat"), s.SendMessage)

	protected.Post("/flags", s.CreateFlag)
	protected.Post("/ratings", s.CreateRating)

	admin := protected.Group("/admin", s.RequireRole(models.RoleAdmin))
	admin.Get("/flags", s.GetFlags)
	admin.Post("/flags/:id/dismiss", s.DismissFlag)
	admin.Delete("/flags/:id", s.DeleteFlaggedContent)

	partners := protected.Group("/donor-partners", s.RequireRole(models.RoleAdmin))
	partners.Post("/", s.CreateDonorPartner)
	partners.Delete("/:id", s.DeleteDonorPartner)
}

// HealthCheck handles health check requests
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": "ok",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. It validates the
// bearer token and re-reads the user from storage, so role changes take
// effect immediately.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "studentsupport-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}

		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}

		user, err := s.userRepo.GetByID(c.Context(), sub)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Unknown user"))
		}

		c.Locals("userID", user.ID)
		c.Locals("userRole", user.Role)

		return c.Next()
	}
}

// RequireRole guards a route group to the listed roles. Admins pass every
// guard.
func (s *Server) RequireRole(roles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("userRole").(models.UserRole)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		if role == models.RoleAdmin {
			return c.Next()
		}
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Insufficient role for this action"))
	}
}

// currentUser loads the authenticated user for handlers that need the full record.
func (s *Server) currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userID").(string)
	if !ok || userID == "" {
		return nil, models.NewUnauthorizedError("Authorization required")
	}
	return s.userRepo.GetByID(c.Context(), userID)
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Student Support API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
