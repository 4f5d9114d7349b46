package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"quiz-grader/internal/domain"
	"quiz-grader/internal/dto"
	"quiz-grader/internal/logger"

	"go.uber.org/zap"
)

const (
	msgNoAnswers          = "No se recibieron respuestas"
	msgAnswersNotObject   = "Las respuestas deben ser un objeto"
	msgMissingParticipant = "Usuario no autenticado"
	msgSubmissionFailure  = "Error al procesar las respuestas"
)

// SubmissionService grades and stores answer submissions.
type SubmissionService interface {
	SubmitAnswers(ctx context.Context, claims *dto.AuthClaims, rawAnswers json.RawMessage) (*dto.SubmitAnswersResponse, error)
}

type submissionServiceImpl struct {
	key       *domain.AnswerKey
	responses domain.ResponseRepository
	txManager domain.TransactionManager
	views     ViewInvalidator
	now       func() time.Time
}

// NewSubmissionService creates a SubmissionService. views may be nil.
func NewSubmissionService(
	key *domain.AnswerKey,
	responses domain.ResponseRepository,
	txManager domain.TransactionManager,
	views ViewInvalidator,
) SubmissionService {
	return &submissionServiceImpl{
		key:       key,
		responses: responses,
		txManager: txManager,
		views:     views,
		now:       time.Now,
	}
}

// SubmitAnswers stores every gradable answer in one transaction and returns
// the score. Nothing is stored when any insert fails.
func (s *submissionServiceImpl) SubmitAnswers(ctx context.Context, claims *dto.AuthClaims, rawAnswers json.RawMessage) (*dto.SubmitAnswersResponse, error) {
	participantID, err := ParticipantID(claims)
	if err != nil {
		return nil, err
	}

	answers, err := DecodeAnswers(rawAnswers)
	if err != nil {
		return nil, err
	}

	graded := domain.Grade(s.key, participantID, claims.FullName, answers)
	answeredAt := s.now()
	for i := range graded.Responses {
		graded.Responses[i].AnsweredAt = answeredAt
	}

	if len(graded.Responses) > 0 {
		err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			return s.responses.CreateResponses(txCtx, graded.Responses)
		})
		if err != nil {
			return nil, domain.NewStorageError(msgSubmissionFailure, err)
		}
		if s.views != nil {
			s.views.InvalidateViews(ctx)
		}
	}

	logger.Get().Info("Answers graded",
		zap.Int64("userID", participantID),
		zap.Int("stored", len(graded.Responses)),
		zap.Int("correct", graded.Score.CorrectAnswers),
		zap.Float64("score", graded.Score.Percentage))

	return &dto.SubmitAnswersResponse{
		Success:        true,
		Score:          graded.Score.Percentage,
		CorrectAnswers: graded.Score.CorrectAnswers,
		TotalQuestions: graded.Score.TotalQuestions,
	}, nil
}

// ParticipantID reads the numeric participant id from the token subject.
func ParticipantID(claims *dto.AuthClaims) (int64, error) {
	if claims == nil || strings.TrimSpace(claims.Subject) == "" {
		return 0, domain.NewAuthenticationError(msgMissingParticipant)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(claims.Subject), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewAuthenticationError(msgMissingParticipant)
	}
	return id, nil
}

// DecodeAnswers turns the raw answers value into a question key to value map.
// Absent, null and empty or zero-like values are reported as no answers; any
// other non-object value is rejected.
func DecodeAnswers(raw json.RawMessage) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, domain.NewValidationError(msgNoAnswers)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, domain.NewValidationError(msgAnswersNotObject)
	}

	if isEmptyAnswers(value) {
		return nil, domain.NewValidationError(msgNoAnswers)
	}
	answers, ok := value.(map[string]interface{})
	if !ok {
		return nil, domain.NewValidationError(msgAnswersNotObject)
	}
	return answers, nil
}

func isEmptyAnswers(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(val) == 0
	case []interface{}:
		return len(val) == 0
	case string:
		return val == ""
	case bool:
		return !val
	case json.Number:
		f, err := val.Float64()
		return err == nil && f == 0
	default:
		return false
	}
}
