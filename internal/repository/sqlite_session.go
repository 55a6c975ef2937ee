package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/studylog/internal/db"
	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/google/uuid"
)

// SQLiteSessionRepo implements SessionRepo using a SQLite database.
// Create issues several statements; run it inside a UnitOfWork.
type SQLiteSessionRepo struct {
	db db.DBTX
}

// NewSQLiteSessionRepo creates a new SQLiteSessionRepo.
func NewSQLiteSessionRepo(conn db.DBTX) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: conn}
}

const sessionColumns = `id, user_id, start_time, end_time, study_duration_seconds, break_duration_seconds, created_at`

// Create assigns an ID when s has none and writes the session with its breaks.
func (r *SQLiteSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	query := `INSERT INTO study_sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		formatTime(s.StartTime),
		formatTime(s.EndTime),
		s.StudyDurationSeconds,
		s.BreakDurationSeconds,
		formatTime(s.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting study session: %w", err)
	}

	for i, b := range s.Breaks {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO session_breaks (session_id, position, start_time, end_time, reason, proof_image)
			VALUES (?, ?, ?, ?, ?, ?)`,
			s.ID, i, formatTime(b.StartTime), formatTime(b.EndTime), b.Reason, b.ProofImage,
		)
		if err != nil {
			return fmt.Errorf("inserting break %d: %w", i+1, err)
		}
	}
	return nil
}

func (r *SQLiteSessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM study_sessions WHERE id = ?`, id)

	var s domain.Session
	var startStr, endStr, createdStr string
	err := row.Scan(&s.ID, &s.UserID, &startStr, &endStr,
		&s.StudyDurationSeconds, &s.BreakDurationSeconds, &createdStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("study session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning study session: %w", err)
	}
	if err := populateSession(&s, startStr, endStr, createdStr); err != nil {
		return nil, err
	}

	breaks, err := r.listBreaks(ctx, `WHERE b.session_id = ?`, id)
	if err != nil {
		return nil, err
	}
	s.Breaks = breaks[s.ID]
	return &s, nil
}

// ListByUser returns every session owned by userID in insertion order, each
// with its breaks in the order they were submitted.
func (r *SQLiteSessionRepo) ListByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM study_sessions WHERE user_id = ? ORDER BY created_at, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions by user: %w", err)
	}
	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	breaks, err := r.listBreaks(ctx,
		`JOIN study_sessions s ON s.id = b.session_id WHERE s.user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].Breaks = breaks[sessions[i].ID]
	}
	return sessions, nil
}

// listBreaks loads breaks grouped by session ID. where is appended after the
// FROM clause and must reference the breaks table as b.
func (r *SQLiteSessionRepo) listBreaks(ctx context.Context, where string, args ...any) (map[string][]domain.Break, error) {
	query := `SELECT b.session_id, b.start_time, b.end_time, b.reason, b.proof_image
		FROM session_breaks b ` + where + ` ORDER BY b.session_id, b.position`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing breaks: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Break)
	for rows.Next() {
		var sessionID, startStr, endStr string
		var b domain.Break
		if err := rows.Scan(&sessionID, &startStr, &endStr, &b.Reason, &b.ProofImage); err != nil {
			return nil, fmt.Errorf("scanning break row: %w", err)
		}
		if b.StartTime, err = parseTime(startStr); err != nil {
			return nil, fmt.Errorf("parsing break start_time: %w", err)
		}
		if b.EndTime, err = parseTime(endStr); err != nil {
			return nil, fmt.Errorf("parsing break end_time: %w", err)
		}
		out[sessionID] = append(out[sessionID], b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating breaks: %w", err)
	}
	return out, nil
}

// scanSessions scans multiple sessions from *sql.Rows and closes them.
func scanSessions(rows *sql.Rows) ([]domain.Session, error) {
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		var s domain.Session
		var startStr, endStr, createdStr string
		err := rows.Scan(&s.ID, &s.UserID, &startStr, &endStr,
			&s.StudyDurationSeconds, &s.BreakDurationSeconds, &createdStr)
		if err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		if err := populateSession(&s, startStr, endStr, createdStr); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

// populateSession fills in parsed fields on a Session after scanning raw strings.
func populateSession(s *domain.Session, startStr, endStr, createdStr string) error {
	var err error
	if s.StartTime, err = parseTime(startStr); err != nil {
		return fmt.Errorf("parsing start_time: %w", err)
	}
	if s.EndTime, err = parseTime(endStr); err != nil {
		return fmt.Errorf("parsing end_time: %w", err)
	}
	if s.CreatedAt, err = parseTime(createdStr); err != nil {
		return fmt.Errorf("parsing created_at: %w", err)
	}
	return nil
}
