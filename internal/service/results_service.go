package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"quiz-grader/internal/cache"
	"quiz-grader/internal/domain"
	"quiz-grader/internal/dto"
	"quiz-grader/internal/logger"

	"go.uber.org/zap"
)

const (
	resultsCacheService = "results"
	resultsCacheObject  = "view"
	msgResultsFailure   = "No se pudieron obtener los resultados"

	listResultsView = "list"
	topScoresView   = "top"
	statsView       = "stats"

	defaultViewTTL = 30 * time.Second
)

// generationCacheKey holds a counter that is part of every view key. Bumping
// it orphans all cached views at once, including ones a slow read stores
// after the bump.
var generationCacheKey = cache.GenerateCacheKey(resultsCacheService, resultsCacheObject, "generation")

// ViewInvalidator drops cached aggregate views after a write.
type ViewInvalidator interface {
	InvalidateViews(ctx context.Context)
}

// ResultsService serves the admin aggregate views.
type ResultsService interface {
	ViewInvalidator
	ListResults(ctx context.Context) ([]dto.ResultResponse, error)
	TopScores(ctx context.Context) ([]dto.TopScoreResponse, error)
	SystemStats(ctx context.Context) (*dto.StatsResponse, error)
}

type resultsServiceImpl struct {
	repo  domain.ResultsRepository
	cache domain.Cache
	ttl   time.Duration
}

// NewResultsService creates a ResultsService. A nil cache disables caching.
// Views are cached for ttl, or 30s when ttl is not positive.
func NewResultsService(repo domain.ResultsRepository, c domain.Cache, ttl time.Duration) ResultsService {
	if ttl <= 0 {
		ttl = defaultViewTTL
	}
	return &resultsServiceImpl{repo: repo, cache: c, ttl: ttl}
}

func (s *resultsServiceImpl) ListResults(ctx context.Context) ([]dto.ResultResponse, error) {
	return readThrough(ctx, s, listResultsView, func(ctx context.Context) ([]dto.ResultResponse, error) {
		results, err := s.repo.ListResults(ctx)
		if err != nil {
			return nil, err
		}
		resp := make([]dto.ResultResponse, 0, len(results))
		for _, r := range results {
			resp = append(resp, dto.ResultResponse{
				ID:                  r.ParticipantID,
				NombreCompleto:      r.FullName,
				Grado:               r.Grade,
				Grupo:               r.Group,
				CorreoInstitucional: r.InstitutionalEmail,
				FechaRegistro:       r.RegisteredAt,
				TotalRespuestas:     r.TotalResponses,
				RespuestasCorrectas: r.CorrectResponses,
				Puntuacion:          r.Percentage,
			})
		}
		return resp, nil
	})
}

func (s *resultsServiceImpl) TopScores(ctx context.Context) ([]dto.TopScoreResponse, error) {
	return readThrough(ctx, s, topScoresView, func(ctx context.Context) ([]dto.TopScoreResponse, error) {
		results, err := s.repo.TopScores(ctx, domain.DefaultTopScoresLimit)
		if err != nil {
			return nil, err
		}
		resp := make([]dto.TopScoreResponse, 0, len(results))
		for _, r := range results {
			resp = append(resp, dto.TopScoreResponse{
				NombreCompleto:      r.FullName,
				CorreoInstitucional: r.InstitutionalEmail,
				TotalRespuestas:     r.TotalResponses,
				RespuestasCorrectas: r.CorrectResponses,
				Puntuacion:          r.Percentage,
			})
		}
		return resp, nil
	})
}

func (s *resultsServiceImpl) SystemStats(ctx context.Context) (*dto.StatsResponse, error) {
	return readThrough(ctx, s, statsView, func(ctx context.Context) (*dto.StatsResponse, error) {
		stats, err := s.repo.SystemStats(ctx)
		if err != nil {
			return nil, err
		}
		resp := &dto.StatsResponse{
			TotalUsers:     stats.TotalUsers,
			TotalResponses: stats.TotalResponses,
			AverageScore:   stats.AverageScore,
			QuestionStats:  make([]dto.QuestionStatResponse, 0, len(stats.QuestionStats)),
		}
		for _, q := range stats.QuestionStats {
			resp.QuestionStats = append(resp.QuestionStats, dto.QuestionStatResponse{
				PreguntaID:         q.QuestionID,
				PreguntaTexto:      q.QuestionText,
				TotalRespuestas:    q.TotalResponses,
				Correctas:          q.CorrectResponses,
				PorcentajeCorrecto: q.Percentage,
			})
		}
		return resp, nil
	})
}

// InvalidateViews moves every view to a new generation. Failures are logged
// only; the views then expire after the TTL.
func (s *resultsServiceImpl) InvalidateViews(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, generationCacheKey); err != nil {
		logger.Get().Error("Failed to invalidate cached result views", zap.Error(err))
	}
}

// viewKey returns the key of view under the current generation. It reports
// false when the generation cannot be read, and the view then bypasses the
// cache.
func (s *resultsServiceImpl) viewKey(ctx context.Context, view string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	gen, err := s.cache.Get(ctx, generationCacheKey)
	switch {
	case errors.Is(err, domain.ErrCacheMiss):
		gen = "0"
	case err != nil:
		logger.Get().Warn("Cache read failed", zap.String("key", generationCacheKey), zap.Error(err))
		return "", false
	}
	return cache.GenerateCacheKey(resultsCacheService, resultsCacheObject, view, gen), true
}

// readThrough serves view from the cache, loading and storing it on a miss.
// The generation is read before load, so a load that races an invalidation
// is stored under a key no later read uses. Cache errors fall through to load.
func readThrough[T any](ctx context.Context, s *resultsServiceImpl, view string, load func(context.Context) (T, error)) (T, error) {
	var value T

	key, cacheable := s.viewKey(ctx, view)
	if cacheable {
		cached, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			errUnmarshal := json.Unmarshal([]byte(cached), &value)
			if errUnmarshal == nil {
				logger.Get().Debug("Result view served from cache", zap.String("key", key))
				return value, nil
			}
			logger.Get().Warn("Failed to unmarshal cached result view", zap.String("key", key), zap.Error(errUnmarshal))
		case errors.Is(err, domain.ErrCacheMiss):
		default:
			logger.Get().Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, domain.NewStorageError(msgResultsFailure, err)
	}

	if cacheable {
		if data, errMarshal := json.Marshal(value); errMarshal != nil {
			logger.Get().Warn("Failed to marshal result view for cache", zap.String("key", key), zap.Error(errMarshal))
		} else if errSet := s.cache.Set(ctx, key, string(data), s.ttl); errSet != nil {
			logger.Get().Warn("Cache write failed", zap.String("key", key), zap.Error(errSet))
		}
	}
	return value, nil
}
