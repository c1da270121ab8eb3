package editor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists sessions. Writes replace the whole record and the last
// write wins.
type Store interface {
	Create(ctx context.Context, s *Session) error

	// Load returns ErrNotFound for unknown sessions.
	Load(ctx context.Context, id uuid.UUID) (*Session, error)

	// ReplaceEdits returns ErrNotFound for unknown sessions.
	ReplaceEdits(ctx context.Context, id uuid.UUID, rev Revision) error

	// MarkStatus sets the status of the current record and leaves its
	// edits, timestamp and expiry alone. It returns ErrNotFound for
	// unknown sessions.
	MarkStatus(ctx context.Context, id uuid.UUID, status Status) error

	// Delete succeeds when the session does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context) ([]Summary, error)

	// Expired returns sessions whose ExpiresAt is not after now.
	Expired(ctx context.Context, now time.Time) ([]Session, error)

	// DeleteExpired removes the session only if it is still expired as of
	// now. It reports whether a record was removed.
	DeleteExpired(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
}

// Revision is the mutable part of a session written by ReplaceEdits.
type Revision struct {
	Edits     Edits
	Status    Status
	Timestamp time.Time
	ExpiresAt time.Time
}

func (s *Session) apply(rev Revision) {
	s.Edits = rev.Edits
	s.Status = rev.Status
	s.Timestamp = rev.Timestamp
	s.ExpiresAt = rev.ExpiresAt
}

func expired(s *Session, now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !s.ExpiresAt.After(now)
}
