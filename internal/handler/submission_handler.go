package handler

import (
	"quiz-grader/internal/domain"
	"quiz-grader/internal/dto"
	"quiz-grader/internal/middleware"
	"quiz-grader/internal/service"

	"github.com/gofiber/fiber/v2"
)

const msgNoData = "No se recibieron datos"

// SubmissionHandler handles answer submissions.
type SubmissionHandler struct {
	service service.SubmissionService
}

func NewSubmissionHandler(service service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// SubmitAnswers godoc
// @Summary Submit answers
// @Description Grades the answers against the answer key and stores one response per known question. Unknown or non-numeric question ids are skipped. Repeated submissions are stored again.
// @Tags quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitAnswersRequest true "Answers keyed by question id"
// @Success 200 {object} dto.SubmitAnswersResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /submit-answers [post]
func (h *SubmissionHandler) SubmitAnswers(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)

	if len(c.Body()) == 0 || string(c.Body()) == "null" {
		return domain.NewValidationError(msgNoData)
	}
	var req dto.SubmitAnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError(msgInvalidBody)
	}

	resp, err := h.service.SubmitAnswers(c.UserContext(), claims, req.Answers)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
