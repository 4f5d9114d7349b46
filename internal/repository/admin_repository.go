package repository

import (
	"context"
	"fmt"

	"quiz-grader/internal/domain"

	"github.com/jmoiron/sqlx"
)

// AdminDatabaseAdapter implements domain.AdminRepository over admin_users.
type AdminDatabaseAdapter struct {
	db *sqlx.DB
}

func NewAdminDatabaseAdapter(db *sqlx.DB) domain.AdminRepository {
	return &AdminDatabaseAdapter{db: db}
}

func (a *AdminDatabaseAdapter) AdminExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM admin_users WHERE username = $1)`
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &exists, query, username); err != nil {
		return false, fmt.Errorf("failed to look up admin user: %w", err)
	}
	return exists, nil
}

// EnsureAdmin registers username. Calling it again for the same name is a no-op.
func (a *AdminDatabaseAdapter) EnsureAdmin(ctx context.Context, username string) error {
	query := `INSERT INTO admin_users (username) VALUES ($1) ON CONFLICT (username) DO NOTHING`
	if _, err := GetExecutor(ctx, a.db).ExecContext(ctx, query, username); err != nil {
		return fmt.Errorf("failed to register admin user: %w", err)
	}
	return nil
}
