package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"quiz-grader/internal/config"
	"quiz-grader/internal/domain"
	"quiz-grader/internal/dto"
	"quiz-grader/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidJWTToken = errors.New("invalid jwt token")

const (
	msgInvalidCredentials  = "Credenciales inválidas"
	msgInvalidAdminConfig  = "Configuración de administrador no válida"
	msgRegistrationFailure = "No se pudo registrar al participante"
	msgLoginFailure        = "No se pudo iniciar sesión"
)

// AuthService issues and validates tokens for participants and the admin.
type AuthService interface {
	// RegisterParticipant returns a token for the participant with the given
	// email, creating the participant on first use.
	RegisterParticipant(ctx context.Context, p *domain.Participant) (string, *domain.Participant, error)
	AdminLogin(ctx context.Context, username, password string) (string, error)
	IssueParticipantToken(p *domain.Participant) (string, error)
	IssueAdminToken(username string) (string, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

type authServiceImpl struct {
	participants domain.ParticipantRepository
	admins       domain.AdminRepository
	views        ViewInvalidator
	jwtCfg       config.JWTConfig
	adminCfg     config.AdminConfig
	now          func() time.Time
}

// NewAuthService creates a new instance of AuthService. views may be nil.
func NewAuthService(
	participants domain.ParticipantRepository,
	admins domain.AdminRepository,
	views ViewInvalidator,
	jwtCfg config.JWTConfig,
	adminCfg config.AdminConfig,
) (AuthService, error) {
	if jwtCfg.Secret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	if jwtCfg.Expiration <= 0 {
		jwtCfg.Expiration = 1800 * time.Second
	}
	return &authServiceImpl{
		participants: participants,
		admins:       admins,
		views:        views,
		jwtCfg:       jwtCfg,
		adminCfg:     adminCfg,
		now:          time.Now,
	}, nil
}

func (s *authServiceImpl) RegisterParticipant(ctx context.Context, p *domain.Participant) (string, *domain.Participant, error) {
	stored, err := s.participants.Register(ctx, p)
	if err != nil {
		return "", nil, domain.NewStorageError(msgRegistrationFailure, err)
	}
	if s.views != nil {
		s.views.InvalidateViews(ctx)
	}

	token, err := s.IssueParticipantToken(stored)
	if err != nil {
		return "", nil, domain.NewInternalError(msgRegistrationFailure, err)
	}
	logger.Get().Info("Participant token issued",
		zap.Int64("userID", stored.ID),
		zap.String("grado", stored.Grade),
		zap.String("grupo", stored.Group))
	return token, stored, nil
}

// AdminLogin refuses every attempt with a configuration error while no admin
// password is set.
func (s *authServiceImpl) AdminLogin(ctx context.Context, username, password string) (string, error) {
	if s.adminCfg.Password == "" {
		return "", domain.NewConfigurationError(msgInvalidAdminConfig, errors.New("admin password is not configured"))
	}

	exists, err := s.admins.AdminExists(ctx, username)
	if err != nil {
		return "", domain.NewStorageError(msgLoginFailure, err)
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminCfg.Username)) == 1
	passwordOK := passwordMatches(s.adminCfg.Password, password)
	if !exists || !usernameOK || !passwordOK {
		logger.Get().Warn("Admin login rejected", zap.String("username", username), zap.Bool("registered", exists))
		return "", domain.NewAuthenticationError(msgInvalidCredentials)
	}

	token, err := s.IssueAdminToken(username)
	if err != nil {
		return "", domain.NewInternalError(msgLoginFailure, err)
	}
	logger.Get().Info("Admin logged in", zap.String("username", username))
	return token, nil
}

// passwordMatches compares against a bcrypt hash when the configured value is
// one, and in constant time otherwise.
func passwordMatches(configured, given string) bool {
	if strings.HasPrefix(configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(given)) == 1
}

func (s *authServiceImpl) IssueParticipantToken(p *domain.Participant) (string, error) {
	if p == nil {
		return "", errors.New("participant cannot be nil")
	}
	return s.sign(dto.AuthClaims{
		FullName:           p.FullName,
		InstitutionalEmail: p.InstitutionalEmail,
		Role:               dto.RoleUser,
		RegisteredClaims:   s.registeredClaims(strconv.FormatInt(p.ID, 10)),
	})
}

func (s *authServiceImpl) IssueAdminToken(username string) (string, error) {
	return s.sign(dto.AuthClaims{
		Role:             dto.RoleAdmin,
		RegisteredClaims: s.registeredClaims(username),
	})
}

func (s *authServiceImpl) registeredClaims(subject string) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.Expiration)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}

func (s *authServiceImpl) sign(claims dto.AuthClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.Secret))
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Debug("JWT token expired", zap.Error(err))
		} else {
			logger.Get().Warn("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	if claims, ok := token.Claims.(*dto.AuthClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidJWTToken
}
