package database

import (
	"context"
	"fmt"
	"time"

	"quiz-grader/internal/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const driverName = "pgx"

// Options controls connection setup.
type Options struct {
	MaxRetries   int
	RetryDelay   time.Duration
	MaxOpenConns int
}

// OpenFunc opens and verifies one connection pool.
type OpenFunc func(ctx context.Context) (*sqlx.DB, error)

// NewSQLXPostgresDB connects to Postgres, retrying with a fixed delay.
func NewSQLXPostgresDB(ctx context.Context, dsn string, opts Options) (*sqlx.DB, error) {
	db, err := ConnectWithRetry(ctx, postgresOpener(dsn), opts.MaxRetries, opts.RetryDelay)
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}
	return db, nil
}

func postgresOpener(dsn string) OpenFunc {
	return func(ctx context.Context) (*sqlx.DB, error) {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return sqlx.ConnectContext(pingCtx, driverName, dsn)
	}
}

// ConnectWithRetry calls open up to maxRetries times, sleeping delay between
// attempts. The last error is returned once attempts are exhausted or ctx is
// done.
func ConnectWithRetry(ctx context.Context, open OpenFunc, maxRetries int, delay time.Duration) (*sqlx.DB, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err := open(ctx)
		if err == nil {
			logger.Get().Info("Connected to database", zap.Int("attempt", attempt))
			return db, nil
		}
		lastErr = err
		logger.Get().Warn("Database connection failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)
		if attempt == maxRetries {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("database connection aborted: %w", ctx.Err())
		case <-timer.C:
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, lastErr)
}
