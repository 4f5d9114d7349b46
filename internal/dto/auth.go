package dto

import "github.com/golang-jwt/jwt/v5"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// AuthClaims defines the custom claims for JWT. Subject holds the participant
// id for participant tokens and the username for admin tokens.
type AuthClaims struct {
	FullName           string `json:"nombre_completo,omitempty"`
	InstitutionalEmail string `json:"correo_institucional,omitempty"`
	Role               string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateTokenRequest is the anonymous participant registration body.
// @Description Participant registration
type GenerateTokenRequest struct {
	NombreCompleto      string `json:"nombreCompleto" validate:"notblank,max=255"`
	Grado               string `json:"grado" validate:"notblank,max=50"`
	Grupo               string `json:"grupo" validate:"notblank,max=50"`
	CorreoInstitucional string `json:"correoInstitucional" validate:"notblank,max=255"`
}

// GenerateTokenResponse carries the participant token.
type GenerateTokenResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

// AdminLoginRequest represents the admin login body.
// @Description Administrator credentials
type AdminLoginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse represents the response containing an admin token.
type TokenResponse struct {
	Token string `json:"token"`
}
