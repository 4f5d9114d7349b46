package service

import (
	"context"
	"time"

	"quiz-grader/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockParticipantRepository ---
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) Register(ctx context.Context, p *domain.Participant) (*domain.Participant, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Participant), args.Error(1)
}

// --- MockAdminRepository ---
type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) AdminExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdminRepository) EnsureAdmin(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

// --- MockResponseRepository ---
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) CreateResponses(ctx context.Context, responses []domain.Response) error {
	args := m.Called(ctx, responses)
	return args.Error(0)
}

// --- MockResultsRepository ---
type MockResultsRepository struct {
	mock.Mock
}

func (m *MockResultsRepository) ListResults(ctx context.Context) ([]domain.AggregateResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AggregateResult), args.Error(1)
}

func (m *MockResultsRepository) TopScores(ctx context.Context, limit int) ([]domain.AggregateResult, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AggregateResult), args.Error(1)
}

func (m *MockResultsRepository) SystemStats(ctx context.Context) (*domain.SystemStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemStats), args.Error(1)
}

// --- MockTransactionManager ---
// Runs fn directly; Called records the attempt.
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockCache) Incr(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockViewInvalidator ---
type MockViewInvalidator struct {
	mock.Mock
}

func (m *MockViewInvalidator) InvalidateViews(ctx context.Context) {
	m.Called(ctx)
}
