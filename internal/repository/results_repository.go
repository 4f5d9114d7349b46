package repository

import (
	"context"
	"fmt"

	"quiz-grader/internal/domain"
	"quiz-grader/internal/repository/models"
	"quiz-grader/internal/util"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

const (
	correctCountExpr = `SUM(CASE WHEN ur.es_correcta THEN 1 ELSE 0 END)`

	listResultsQuery = `SELECT u.id, u.nombre_completo, u.grado, u.grupo, u.correo_institucional, u.fecha_registro,
	COUNT(ur.id) AS total_respuestas,
	COALESCE(` + correctCountExpr + `, 0) AS respuestas_correctas,
	ROUND((` + correctCountExpr + `::numeric / NULLIF(COUNT(ur.id), 0)) * 100, 2)::float8 AS puntuacion
	FROM users u
	LEFT JOIN user_responses ur ON u.id = ur.user_id
	GROUP BY u.id, u.nombre_completo, u.grado, u.grupo, u.correo_institucional, u.fecha_registro
	ORDER BY puntuacion DESC NULLS LAST, u.fecha_registro DESC, u.id DESC`

	topScoresQuery = `SELECT u.id, u.nombre_completo, u.correo_institucional,
	COUNT(ur.id) AS total_respuestas,
	` + correctCountExpr + ` AS respuestas_correctas,
	ROUND((` + correctCountExpr + `::numeric / COUNT(ur.id)) * 100, 2)::float8 AS puntuacion
	FROM users u
	JOIN user_responses ur ON u.id = ur.user_id
	GROUP BY u.id, u.nombre_completo, u.correo_institucional
	HAVING COUNT(ur.id) > 0
	ORDER BY puntuacion DESC, respuestas_correctas DESC
	LIMIT $1`

	countUsersQuery     = `SELECT COUNT(*) FROM users`
	countResponsesQuery = `SELECT COUNT(*) FROM user_responses`

	averageScoreQuery = `SELECT COALESCE(ROUND(AVG(
	CASE WHEN t.total_respuestas > 0 THEN (t.respuestas_correctas::numeric / t.total_respuestas) * 100 ELSE 0 END
	), 2), 0)::float8
	FROM (
	SELECT u.id, COUNT(ur.id) AS total_respuestas, COALESCE(` + correctCountExpr + `, 0) AS respuestas_correctas
	FROM users u
	LEFT JOIN user_responses ur ON u.id = ur.user_id
	GROUP BY u.id
	) t`

	questionStatsQuery = `SELECT pregunta_id, MIN(pregunta_texto) AS pregunta_texto,
	COUNT(*) AS total_respuestas,
	SUM(CASE WHEN es_correcta THEN 1 ELSE 0 END) AS correctas,
	ROUND((SUM(CASE WHEN es_correcta THEN 1 ELSE 0 END)::numeric / COUNT(*)) * 100, 2)::float8 AS porcentaje_correcto
	FROM user_responses
	GROUP BY pregunta_id
	ORDER BY pregunta_id`
)

// ResultsDatabaseAdapter implements domain.ResultsRepository. Its queries
// are read-only and always run on the pool, never on a context transaction.
type ResultsDatabaseAdapter struct {
	db *sqlx.DB
}

func NewResultsDatabaseAdapter(db *sqlx.DB) domain.ResultsRepository {
	return &ResultsDatabaseAdapter{db: db}
}

// ListResults returns every participant, including those without responses.
func (a *ResultsDatabaseAdapter) ListResults(ctx context.Context) ([]domain.AggregateResult, error) {
	var rows []models.UserResult
	if err := a.db.SelectContext(ctx, &rows, listResultsQuery); err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return toDomainResults(rows), nil
}

// TopScores returns the best participants with at least one response.
func (a *ResultsDatabaseAdapter) TopScores(ctx context.Context, limit int) ([]domain.AggregateResult, error) {
	if limit <= 0 {
		limit = domain.DefaultTopScoresLimit
	}
	var rows []models.UserResult
	if err := a.db.SelectContext(ctx, &rows, topScoresQuery, limit); err != nil {
		return nil, fmt.Errorf("failed to get top scores: %w", err)
	}
	return toDomainResults(rows), nil
}

// SystemStats runs the four statistics queries concurrently.
func (a *ResultsDatabaseAdapter) SystemStats(ctx context.Context) (*domain.SystemStats, error) {
	var (
		stats     domain.SystemStats
		questions []models.QuestionAccuracy
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.db.GetContext(gctx, &stats.TotalUsers, countUsersQuery); err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.db.GetContext(gctx, &stats.TotalResponses, countResponsesQuery); err != nil {
			return fmt.Errorf("failed to count responses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.db.GetContext(gctx, &stats.AverageScore, averageScoreQuery); err != nil {
			return fmt.Errorf("failed to compute average score: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := a.db.SelectContext(gctx, &questions, questionStatsQuery); err != nil {
			return fmt.Errorf("failed to compute question stats: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.QuestionStats = make([]domain.QuestionStat, 0, len(questions))
	for _, q := range questions {
		stats.QuestionStats = append(stats.QuestionStats, domain.QuestionStat{
			QuestionID:       q.PreguntaID,
			QuestionText:     q.PreguntaTexto,
			TotalResponses:   q.TotalRespuestas,
			CorrectResponses: q.Correctas,
			Percentage:       q.PorcentajeCorrecto,
		})
	}
	return &stats, nil
}

func toDomainResults(rows []models.UserResult) []domain.AggregateResult {
	results := make([]domain.AggregateResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, domain.AggregateResult{
			ParticipantID:      r.ID,
			FullName:           r.NombreCompleto,
			Grade:              r.Grado,
			Group:              r.Grupo,
			InstitutionalEmail: r.CorreoInstitucional,
			RegisteredAt:       r.FechaRegistro,
			TotalResponses:     r.TotalRespuestas,
			CorrectResponses:   r.RespuestasCorrectas,
			Percentage:         util.NullFloat64ToPtr(r.Puntuacion),
		})
	}
	return results
}
