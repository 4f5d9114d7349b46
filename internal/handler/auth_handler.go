package handler

import (
	"strings"

	"quiz-grader/internal/domain"
	"quiz-grader/internal/dto"
	"quiz-grader/internal/service"
	"quiz-grader/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	msgAllFieldsRequired  = "Todos los campos son obligatorios"
	msgCredentialsMissing = "Usuario y contraseña son requeridos"
	msgInvalidBody        = "El cuerpo de la solicitud no es JSON válido"
)

// AuthHandler serves participant registration and admin login.
type AuthHandler struct {
	authService service.AuthService
	validator   *validation.Validator
}

func NewAuthHandler(authService service.AuthService, validator *validation.Validator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator,
	}
}

// GenerateToken godoc
// @Summary Register a participant
// @Description Registers the participant on first use of the institutional email and returns a participant token. A known email keeps its stored name.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.GenerateTokenRequest true "Participant data"
// @Success 200 {object} dto.GenerateTokenResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /generate-token [post]
func (h *AuthHandler) GenerateToken(c *fiber.Ctx) error {
	var req dto.GenerateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError(msgInvalidBody)
	}
	if errs := h.validator.ValidateStruct(req); len(errs) > 0 {
		return domain.NewValidationError(msgAllFieldsRequired).WithContext("errors", errs)
	}

	token, participant, err := h.authService.RegisterParticipant(c.UserContext(), &domain.Participant{
		FullName:           strings.TrimSpace(req.NombreCompleto),
		Grade:              strings.TrimSpace(req.Grado),
		Group:              strings.TrimSpace(req.Grupo),
		InstitutionalEmail: strings.TrimSpace(req.CorreoInstitucional),
	})
	if err != nil {
		return err
	}

	return c.JSON(dto.GenerateTokenResponse{
		Token:  token,
		UserID: participant.ID,
	})
}

// AdminLogin godoc
// @Summary Administrator login
// @Description Exchanges the administrator credentials for an admin token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /admin/login [post]
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError(msgInvalidBody)
	}
	if errs := h.validator.ValidateStruct(req); len(errs) > 0 {
		return domain.NewValidationError(msgCredentialsMissing).WithContext("errors", errs)
	}

	token, err := h.authService.AdminLogin(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.TokenResponse{Token: token})
}
