package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/studylog/internal/db"
	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/google/uuid"
)

// SQLiteUserRepo implements UserRepo using a SQLite database.
type SQLiteUserRepo struct {
	db db.DBTX
}

// NewSQLiteUserRepo creates a new SQLiteUserRepo.
func NewSQLiteUserRepo(conn db.DBTX) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: conn}
}

// GetOrCreateByEmail returns the user registered under email, creating one
// with a fresh ID on first sign-in. Emails match case-insensitively.
func (r *SQLiteUserRepo) GetOrCreateByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	email = strings.TrimSpace(email)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, created_at) VALUES (?, ?, ?) ON CONFLICT(email) DO NOTHING`,
		uuid.New().String(), email, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("registering user: %w", err)
	}
	row := r.db.QueryRowContext(ctx, `SELECT id, email, created_at FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *SQLiteUserRepo) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, email, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*domain.Identity, error) {
	var u domain.Identity
	var createdStr string
	if err := row.Scan(&u.ID, &u.Email, &createdStr); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	t, err := parseTime(createdStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	u.CreatedAt = t
	return &u, nil
}
