package handler

import (
	"quiz-grader/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the aggregate views. Routes are mounted behind the
// admin role check.
type AdminHandler struct {
	service service.ResultsService
}

func NewAdminHandler(service service.ResultsService) *AdminHandler {
	return &AdminHandler{service: service}
}

// GetResults godoc
// @Summary All participant results
// @Description Every registered participant with totals and score. Score is null for participants without responses.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ResultResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /admin/results [get]
func (h *AdminHandler) GetResults(c *fiber.Ctx) error {
	results, err := h.service.ListResults(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(results)
}

// GetTopScores godoc
// @Summary Leaderboard
// @Description The three best participants with at least one response.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.TopScoreResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /admin/top-scores [get]
func (h *AdminHandler) GetTopScores(c *fiber.Ctx) error {
	results, err := h.service.TopScores(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(results)
}

// GetStats godoc
// @Summary System statistics
// @Description Participant and response totals, average score and per-question accuracy.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StatsResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /admin/stats [get]
func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.service.SystemStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
