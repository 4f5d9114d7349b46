package handler

import (
	"quiz-grader/internal/dto"
	"quiz-grader/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Auth       *AuthHandler
	Submission *SubmissionHandler
	Admin      *AdminHandler
	Tokens     middleware.TokenValidator
}

// SetupRoutes mounts the API under /api.
func SetupRoutes(app fiber.Router, h Handlers) {
	api := app.Group("/api")

	api.Get("/health", Health)
	api.Post("/generate-token", h.Auth.GenerateToken)
	api.Post("/submit-answers", middleware.Protected(h.Tokens), h.Submission.SubmitAnswers)

	api.Post("/admin/login", h.Auth.AdminLogin)
	admin := api.Group("/admin", middleware.Protected(h.Tokens), middleware.RequireRole(dto.RoleAdmin))
	admin.Get("/results", h.Admin.GetResults)
	admin.Get("/top-scores", h.Admin.GetTopScores)
	admin.Get("/stats", h.Admin.GetStats)
}
