package repository

import (
	"context"
	"fmt"
	"time"

	"quiz-grader/internal/domain"
	"quiz-grader/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

const insertResponseQuery = `INSERT INTO user_responses
	(user_id, nombre_completo, pregunta_id, pregunta_texto, respuesta_usuario, respuesta_correcta, es_correcta, fecha_respuesta)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// ResponseDatabaseAdapter implements domain.ResponseRepository.
type ResponseDatabaseAdapter struct {
	db *sqlx.DB
}

func NewResponseDatabaseAdapter(db *sqlx.DB) domain.ResponseRepository {
	return &ResponseDatabaseAdapter{db: db}
}

// CreateResponses appends one row per response. Callers wanting all-or-nothing
// semantics run it inside a transaction.
func (a *ResponseDatabaseAdapter) CreateResponses(ctx context.Context, responses []domain.Response) error {
	exec := GetExecutor(ctx, a.db)
	for i := range responses {
		row := fromDomainResponse(&responses[i])
		if _, err := exec.ExecContext(ctx, insertResponseQuery,
			row.UserID,
			row.NombreCompleto,
			row.PreguntaID,
			row.PreguntaTexto,
			row.RespuestaUsuario,
			row.RespuestaCorrecta,
			row.EsCorrecta,
			row.FechaRespuesta,
		); err != nil {
			return fmt.Errorf("failed to insert response for question %d: %w", row.PreguntaID, err)
		}
	}
	return nil
}

func fromDomainResponse(r *domain.Response) *models.UserResponse {
	answeredAt := r.AnsweredAt
	if answeredAt.IsZero() {
		answeredAt = time.Now()
	}
	return &models.UserResponse{
		ID:                r.ID,
		UserID:            r.ParticipantID,
		NombreCompleto:    r.ParticipantName,
		PreguntaID:        r.QuestionID,
		PreguntaTexto:     r.QuestionText,
		RespuestaUsuario:  r.SubmittedAnswer,
		RespuestaCorrecta: r.CanonicalAnswer,
		EsCorrecta:        r.IsCorrect,
		FechaRespuesta:    answeredAt,
	}
}
