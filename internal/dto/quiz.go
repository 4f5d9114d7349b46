package dto

import (
	"encoding/json"
	"time"
)

// SubmitAnswersRequest carries question id to answer pairs. Answers is kept
// raw so the grader can tell an absent map from a wrongly typed one.
// @Description Answers keyed by question id
type SubmitAnswersRequest struct {
	Answers json.RawMessage `json:"answers" swaggertype:"object"`
}

// SubmitAnswersResponse is the score of one submission.
type SubmitAnswersResponse struct {
	Success        bool    `json:"success"`
	Score          float64 `json:"score"`
	CorrectAnswers int     `json:"correct_answers"`
	TotalQuestions int     `json:"total_questions"`
}

// ResultResponse is one participant row of the admin results view. Puntuacion
// is null for participants without responses.
type ResultResponse struct {
	ID                  int64     `json:"id"`
	NombreCompleto      string    `json:"nombre_completo"`
	Grado               string    `json:"grado"`
	Grupo               string    `json:"grupo"`
	CorreoInstitucional string    `json:"correo_institucional"`
	FechaRegistro       time.Time `json:"fecha_registro"`
	TotalRespuestas     int       `json:"total_respuestas"`
	RespuestasCorrectas int       `json:"respuestas_correctas"`
	Puntuacion          *float64  `json:"puntuacion"`
}

// TopScoreResponse is one leaderboard row.
type TopScoreResponse struct {
	NombreCompleto      string   `json:"nombre_completo"`
	CorreoInstitucional string   `json:"correo_institucional"`
	TotalRespuestas     int      `json:"total_respuestas"`
	RespuestasCorrectas int      `json:"respuestas_correctas"`
	Puntuacion          *float64 `json:"puntuacion"`
}

type QuestionStatResponse struct {
	PreguntaID         int     `json:"pregunta_id"`
	PreguntaTexto      string  `json:"pregunta_texto"`
	TotalRespuestas    int     `json:"total_respuestas"`
	Correctas          int     `json:"correctas"`
	PorcentajeCorrecto float64 `json:"porcentaje_correcto"`
}

// StatsResponse is the admin statistics view.
type StatsResponse struct {
	TotalUsers     int                    `json:"total_users"`
	TotalResponses int                    `json:"total_responses"`
	AverageScore   float64                `json:"average_score"`
	QuestionStats  []QuestionStatResponse `json:"question_stats"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
