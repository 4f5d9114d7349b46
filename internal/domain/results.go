package domain

import (
	"context"
	"time"
)

// Participant is an anonymous quiz taker keyed by institutional email.
type Participant struct {
	ID                 int64
	FullName           string
	Grade              string
	Group              string
	InstitutionalEmail string
	RegisteredAt       time.Time
}

// AggregateResult summarizes one participant's responses. Percentage is nil
// when the participant has no responses.
type AggregateResult struct {
	ParticipantID      int64
	FullName           string
	Grade              string
	Group              string
	InstitutionalEmail string
	RegisteredAt       time.Time
	TotalResponses     int
	CorrectResponses   int
	Percentage         *float64
}

// QuestionStat is the accuracy over every stored response to one question.
type QuestionStat struct {
	QuestionID       int
	QuestionText     string
	TotalResponses   int
	CorrectResponses int
	Percentage       float64
}

type SystemStats struct {
	TotalUsers     int
	TotalResponses int
	// AverageScore counts participants without responses as 0.
	AverageScore  float64
	QuestionStats []QuestionStat
}

// DefaultTopScoresLimit is the leaderboard size used by the admin view.
const DefaultTopScoresLimit = 3

// ParticipantRepository persists participants.
type ParticipantRepository interface {
	// Register returns the existing participant for the email, or creates it.
	Register(ctx context.Context, p *Participant) (*Participant, error)
}

// ResponseRepository appends graded responses.
type ResponseRepository interface {
	CreateResponses(ctx context.Context, responses []Response) error
}

// ResultsRepository runs the read-only aggregate queries.
type ResultsRepository interface {
	ListResults(ctx context.Context) ([]AggregateResult, error)
	TopScores(ctx context.Context, limit int) ([]AggregateResult, error)
	SystemStats(ctx context.Context) (*SystemStats, error)
}

// AdminRepository answers whether a username is a registered administrator.
type AdminRepository interface {
	AdminExists(ctx context.Context, username string) (bool, error)
	EnsureAdmin(ctx context.Context, username string) error
}

// TransactionManager runs fn in a single database transaction. Repositories
// pick the transaction up from the context passed to fn.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
