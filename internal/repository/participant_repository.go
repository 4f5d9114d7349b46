package repository

import (
	"context"
	"fmt"
	"strings"

	"quiz-grader/internal/domain"
	"quiz-grader/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

const upsertParticipantQuery = `INSERT INTO users (nombre_completo, grado, grupo, correo_institucional)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (correo_institucional) DO UPDATE SET correo_institucional = EXCLUDED.correo_institucional
	RETURNING id, nombre_completo, grado, grupo, correo_institucional, fecha_registro`

// ParticipantDatabaseAdapter implements domain.ParticipantRepository.
type ParticipantDatabaseAdapter struct {
	db *sqlx.DB
}

func NewParticipantDatabaseAdapter(db *sqlx.DB) domain.ParticipantRepository {
	return &ParticipantDatabaseAdapter{db: db}
}

// Register inserts the participant, or returns the stored row unchanged when
// the institutional email is already registered.
func (a *ParticipantDatabaseAdapter) Register(ctx context.Context, p *domain.Participant) (*domain.Participant, error) {
	if p == nil {
		return nil, fmt.Errorf("participant cannot be nil")
	}

	var row models.User
	err := GetExecutor(ctx, a.db).QueryRowxContext(ctx, upsertParticipantQuery,
		strings.TrimSpace(p.FullName),
		strings.TrimSpace(p.Grade),
		strings.TrimSpace(p.Group),
		strings.TrimSpace(p.InstitutionalEmail),
	).StructScan(&row)
	if err != nil {
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}
	return toDomainParticipant(&row), nil
}

func toDomainParticipant(m *models.User) *domain.Participant {
	if m == nil {
		return nil
	}
	return &domain.Participant{
		ID:                 m.ID,
		FullName:           m.NombreCompleto,
		Grade:              m.Grado,
		Group:              m.Grupo,
		InstitutionalEmail: m.CorreoInstitucional,
		RegisteredAt:       m.FechaRegistro,
	}
}
