package testutil

import (
	"database/sql"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/studylog/internal/domain"
	"github.com/google/uuid"
)

// ProofPayload is a stored proof placeholder for sessions built without
// going through the encoder.
const ProofPayload = "data:image/png;base64,iVBORw0KGgo="

// TinyPNG is a valid 1x1 PNG.
var TinyPNG = mustDecode("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg==")

func mustDecode(s string) []byte {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// WriteProof writes TinyPNG to dir/name and returns the path.
func WriteProof(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, TinyPNG, 0o644); err != nil {
		t.Fatalf("writing proof: %v", err)
	}
	return path
}

// CreateUser inserts a user row directly and returns its identity.
func CreateUser(t *testing.T, database *sql.DB, email string) *domain.Identity {
	t.Helper()
	u := &domain.Identity{ID: uuid.New().String(), Email: email, CreatedAt: time.Now().UTC()}
	_, err := database.Exec(`INSERT INTO users (id, email, created_at) VALUES (?, ?, ?)`,
		u.ID, u.Email, u.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return u
}

// Session options
type SessionOption func(*domain.Session)

// WithBreak adds a break starting offsetMin after the session start and
// lasting lenMin minutes.
func WithBreak(offsetMin, lenMin int, reason string) SessionOption {
	return func(s *domain.Session) {
		start := s.StartTime.Add(time.Duration(offsetMin) * time.Minute)
		s.Breaks = append(s.Breaks, domain.Break{
			StartTime:  start,
			EndTime:    start.Add(time.Duration(lenMin) * time.Minute),
			Reason:     reason,
			ProofImage: ProofPayload,
		})
	}
}

func WithCreatedAt(t time.Time) SessionOption {
	return func(s *domain.Session) {
		s.CreatedAt = t
	}
}

func WithSessionID(id string) SessionOption {
	return func(s *domain.Session) {
		s.ID = id
	}
}

// NewTestSession builds a session of the given length with derived totals.
// CreatedAt defaults to the session end.
func NewTestSession(userID string, start time.Time, minutes int, opts ...SessionOption) *domain.Session {
	s := &domain.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		StartTime: start,
		EndTime:   start.Add(time.Duration(minutes) * time.Minute),
	}
	s.CreatedAt = s.EndTime
	for _, opt := range opts {
		opt(s)
	}
	s.Derive()
	return s
}
