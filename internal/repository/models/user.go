package models

import (
	"database/sql"
	"time"
)

// User is a row of the users table (a quiz participant).
type User struct {
	ID                  int64     `db:"id"`
	NombreCompleto      string    `db:"nombre_completo"`
	Grado               string    `db:"grado"`
	Grupo               string    `db:"grupo"`
	CorreoInstitucional string    `db:"correo_institucional"`
	FechaRegistro       time.Time `db:"fecha_registro"`
}

// UserResponse is a row of the append-only user_responses table.
type UserResponse struct {
	ID                int64     `db:"id"`
	UserID            int64     `db:"user_id"`
	NombreCompleto    string    `db:"nombre_completo"`
	PreguntaID        int       `db:"pregunta_id"`
	PreguntaTexto     string    `db:"pregunta_texto"`
	RespuestaUsuario  string    `db:"respuesta_usuario"`
	RespuestaCorrecta string    `db:"respuesta_correcta"`
	EsCorrecta        bool      `db:"es_correcta"`
	FechaRespuesta    time.Time `db:"fecha_respuesta"`
}

// UserResult is one row of the per-participant aggregate queries. The
// leaderboard query selects a subset of these columns.
type UserResult struct {
	ID                  int64           `db:"id"`
	NombreCompleto      string          `db:"nombre_completo"`
	Grado               string          `db:"grado"`
	Grupo               string          `db:"grupo"`
	CorreoInstitucional string          `db:"correo_institucional"`
	FechaRegistro       time.Time       `db:"fecha_registro"`
	TotalRespuestas     int             `db:"total_respuestas"`
	RespuestasCorrectas int             `db:"respuestas_correctas"`
	Puntuacion          sql.NullFloat64 `db:"puntuacion"`
}

// QuestionAccuracy is one row of the per-question statistics query.
type QuestionAccuracy struct {
	PreguntaID         int     `db:"pregunta_id"`
	PreguntaTexto      string  `db:"pregunta_texto"`
	TotalRespuestas    int     `db:"total_respuestas"`
	Correctas          int     `db:"correctas"`
	PorcentajeCorrecto float64 `db:"porcentaje_correcto"`
}
