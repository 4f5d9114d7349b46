package middleware

import (
	"context"
	"strings"

	"quiz-grader/internal/domain"
	"quiz-grader/internal/dto"
	"quiz-grader/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	ClaimsKey           = "authClaims" // Key for storing *dto.AuthClaims in fiber.Ctx locals
)

// TokenValidator is the part of service.AuthService the middleware needs.
type TokenValidator interface {
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

// Protected is a middleware function that protects routes by requiring a valid JWT.
// The decoded claims are stored in the context under ClaimsKey.
func Protected(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return domain.NewAuthenticationError("Falta el token de autenticación")
		}

		if !strings.HasPrefix(authHeader, BearerSchema) {
			return domain.NewAuthenticationError("El esquema de autorización debe ser Bearer")
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return domain.NewAuthenticationError("Falta el token de autenticación")
		}

		claims, err := validator.ValidateJWT(c.UserContext(), tokenString)
		if err != nil {
			logger.Get().Debug("JWT rejected", zap.Error(err), zap.String("path", c.Path()))
			return domain.NewAuthenticationError("Token inválido o expirado")
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// RequireRole must run after Protected. Tokens with another role get 403.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := ClaimsFromCtx(c)
		if claims == nil {
			return domain.NewAuthenticationError("Falta el token de autenticación")
		}
		if claims.Role != role {
			logger.Get().Warn("Role check failed",
				zap.String("required", role),
				zap.String("role", claims.Role),
				zap.String("subject", claims.Subject))
			return domain.NewAuthorizationError("Acceso restringido a " + role)
		}
		return c.Next()
	}
}

// ClaimsFromCtx returns the claims stored by Protected, or nil.
func ClaimsFromCtx(c *fiber.Ctx) *dto.AuthClaims {
	claims, _ := c.Locals(ClaimsKey).(*dto.AuthClaims)
	return claims
}
