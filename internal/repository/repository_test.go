package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"quiz-grader/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "pgx"), mock
}

var userColumns = []string{"id", "nombre_completo", "grado", "grupo", "correo_institucional", "fecha_registro"}

func TestParticipantRegister_New(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewParticipantDatabaseAdapter(db)
	now := time.Now().Truncate(time.Second)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (nombre_completo, grado, grupo, correo_institucional)")).
		WithArgs("Ana Pérez", "3", "B", "ana@school.edu").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(7), "Ana Pérez", "3", "B", "ana@school.edu", now))

	p, err := repo.Register(context.Background(), &domain.Participant{
		FullName:           "  Ana Pérez ",
		Grade:              "3",
		Group:              "B",
		InstitutionalEmail: "ana@school.edu ",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "Ana Pérez", p.FullName)
	assert.True(t, now.Equal(p.RegisteredAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantRegister_ExistingEmailKeepsStoredName(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewParticipantDatabaseAdapter(db)
	now := time.Now().Truncate(time.Second)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (correo_institucional) DO UPDATE")).
		WithArgs("Other Name", "4", "C", "ana@school.edu").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(7), "Ana Pérez", "3", "B", "ana@school.edu", now))

	p, err := repo.Register(context.Background(), &domain.Participant{
		FullName:           "Other Name",
		Grade:              "4",
		Group:              "C",
		InstitutionalEmail: "ana@school.edu",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), p.ID)
	assert.Equal(t, "Ana Pérez", p.FullName)
	assert.Equal(t, "3", p.Grade)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantRegister_Errors(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewParticipantDatabaseAdapter(db)

	_, err := repo.Register(context.Background(), nil)
	assert.Error(t, err)

	dbErr := errors.New("connection reset")
	mock.ExpectQuery("INSERT INTO users").WillReturnError(dbErr)
	_, err = repo.Register(context.Background(), &domain.Participant{FullName: "a", InstitutionalEmail: "a@b"})
	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateResponses_InsideTransaction(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewResponseDatabaseAdapter(db)
	tm := NewTransactionManagerAdapter(db)
	answeredAt := time.Now()

	responses := []domain.Response{
		{ParticipantID: 7, ParticipantName: "Ana", QuestionID: 1, QuestionText: "Q1", SubmittedAnswer: "codon", CanonicalAnswer: "CODON", IsCorrect: true, AnsweredAt: answeredAt},
		{ParticipantID: 7, ParticipantName: "Ana", QuestionID: 2, QuestionText: "Q2", SubmittedAnswer: "x", CanonicalAnswer: "ADN", IsCorrect: false, AnsweredAt: answeredAt},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_responses")).
		WithArgs(int64(7), "Ana", 1, "Q1", "codon", "CODON", true, answeredAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_responses")).
		WithArgs(int64(7), "Ana", 2, "Q2", "x", "ADN", false, answeredAt).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		return repo.CreateResponses(ctx, responses)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateResponses_FailureRollsBack(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewResponseDatabaseAdapter(db)
	tm := NewTransactionManagerAdapter(db)
	dbErr := errors.New("insert failed")

	responses := []domain.Response{
		{ParticipantID: 7, QuestionID: 1, AnsweredAt: time.Now()},
		{ParticipantID: 7, QuestionID: 2, AnsweredAt: time.Now()},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO user_responses").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO user_responses").WillReturnError(dbErr)
	mock.ExpectRollback()

	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		return repo.CreateResponses(ctx, responses)
	})
	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateResponses_FillsMissingTimestamp(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewResponseDatabaseAdapter(db)

	mock.ExpectExec("INSERT INTO user_responses").
		WithArgs(int64(1), "", 3, "", "", "", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.CreateResponses(context.Background(), []domain.Response{{ParticipantID: 1, QuestionID: 3}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_BeginError(t *testing.T) {
	db, mock := setupTestDB(t)
	tm := NewTransactionManagerAdapter(db)

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))
	called := false
	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestWithTransaction_PanicRollsBack(t *testing.T) {
	db, mock := setupTestDB(t)
	tm := NewTransactionManagerAdapter(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = tm.WithTransaction(context.Background(), func(ctx context.Context) error {
			panic("boom")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetExecutor(t *testing.T) {
	db, mock := setupTestDB(t)

	assert.Same(t, db, GetExecutor(context.Background(), db))

	mock.ExpectBegin()
	tx, err := db.Beginx()
	require.NoError(t, err)
	ctx := context.WithValue(context.Background(), TransactionContextKey, tx)
	assert.Same(t, tx, GetExecutor(ctx, db))
}

func TestAdminExists(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAdminDatabaseAdapter(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM admin_users WHERE username = $1)")).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.AdminExists(context.Background(), "admin")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.AdminExists(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureAdmin(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewAdminDatabaseAdapter(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admin_users (username) VALUES ($1) ON CONFLICT (username) DO NOTHING")).
		WithArgs("admin").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admin_users")).
		WithArgs("admin").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureAdmin(context.Background(), "admin"))
	require.NoError(t, repo.EnsureAdmin(context.Background(), "admin"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
