package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"quiz-grader/internal/domain"
	"quiz-grader/internal/dto"
	"quiz-grader/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Manual mock for the token validator
type mockTokenValidator struct {
	ValidateJWTFunc func(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

func (m *mockTokenValidator) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	return m.ValidateJWTFunc(ctx, tokenString)
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestID())
	return app
}

func decodeError(t *testing.T, resp *http.Response) middleware.ErrorResponse {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestErrorHandler_MapsDomainErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"validation", domain.NewValidationError("No se recibieron respuestas"), 400, "VALIDATION_ERROR", "No se recibieron respuestas"},
		{"unauthenticated", domain.NewAuthenticationError("Credenciales inválidas"), 401, "UNAUTHENTICATED", "Credenciales inválidas"},
		{"forbidden", domain.NewAuthorizationError("Acceso restringido a admin"), 403, "FORBIDDEN", "Acceso restringido a admin"},
		{"configuration", domain.NewConfigurationError("Configuración de administrador no válida", errors.New("ADMIN_PASSWORD empty")), 500, "CONFIGURATION_ERROR", "Configuración de administrador no válida"},
		{"storage", domain.NewStorageError("Error al procesar las respuestas", errors.New("pq: password authentication failed")), 500, "STORAGE_ERROR", "Error al procesar las respuestas"},
		{"unknown", errors.New("dial tcp 10.0.0.5:5432: connection refused"), 500, "INTERNAL_ERROR", "Error interno del servidor"},
		{"fiber", fiber.NewError(fiber.StatusRequestEntityTooLarge, "Request Entity Too Large"), 413, "HTTP_ERROR", "Request Entity Too Large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decodeError(t, resp)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.NotContains(t, body.Message, "10.0.0.5")
			assert.NotContains(t, body.Message, "password authentication")
		})
	}
}

func TestErrorHandler_ValidationDetails(t *testing.T) {
	app := newApp()
	app.Get("/", func(c *fiber.Ctx) error {
		return domain.NewValidationError("Todos los campos son obligatorios").
			WithContext("errors", domain.ValidationErrors{domain.NewMissingFieldError("grado")})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Contains(t, body.Details, "errors")
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	app := newApp()
	app.Get("/", func(c *fiber.Ctx) error {
		return domain.ValidationErrors{domain.NewMissingFieldError("username")}
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body middleware.ValidationErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "username", body.Errors[0].Field)
}

func TestProtected(t *testing.T) {
	validator := &mockTokenValidator{
		ValidateJWTFunc: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
			if tokenString == "good" {
				return &dto.AuthClaims{Role: dto.RoleUser, RegisteredClaims: jwt.RegisteredClaims{Subject: "7"}}, nil
			}
			return nil, errors.New("token has invalid claims: token is expired")
		},
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Get("/", middleware.Protected(validator), func(c *fiber.Ctx) error {
				claims := middleware.ClaimsFromCtx(c)
				return c.SendString(claims.Subject)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(middleware.AuthorizationHeader, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == http.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, "7", string(body))
			} else {
				body := decodeError(t, resp)
				assert.Equal(t, string(domain.CodeUnauthenticated), body.Code)
				assert.NotContains(t, body.Message, "expired")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	validator := &mockTokenValidator{
		ValidateJWTFunc: func(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
			return &dto.AuthClaims{Role: tokenString}, nil
		},
	}

	app := newApp()
	app.Get("/admin", middleware.Protected(validator), middleware.RequireRole(dto.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})
	app.Get("/unprotected", middleware.RequireRole(dto.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	for token, want := range map[string]int{"admin": http.StatusNoContent, "user": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(middleware.AuthorizationHeader, "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, token)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/unprotected", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequestID(t *testing.T) {
	app := newApp()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(middleware.RequestIDFromCtx(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	generated := resp.Header.Get(middleware.RequestIDHeader)
	assert.Len(t, generated, 26)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, generated, string(body))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "upstream-id")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "upstream-id", resp.Header.Get(middleware.RequestIDHeader))
}
