package editor

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-editor/pkg/repository"
)

const sessionTable = "pdf_editor_sessions"

var sessionColumns = []string{
	"session_id", "pdf_path", "original_name", "edits",
	"status", "created_at", "updated_at", "expires_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type postgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore keeps sessions in the pdf_editor_sessions table.
func NewPostgresStore(db *sql.DB, logger *slog.Logger) Store {
	return &postgresStore{
		db:     db,
		logger: logger.With("store", StorePostgres),
	}
}

func (p *postgresStore) Create(ctx context.Context, s *Session) error {
	edits, err := json.Marshal(s.Edits)
	if err != nil {
		return fmt.Errorf("encode edits: %w", err)
	}

	q, args, err := psql.
		Insert(sessionTable).
		Columns(sessionColumns...).
		Values(s.ID, s.PDFPath, s.OriginalName, string(edits), s.Status, s.CreatedAt, s.Timestamp, s.ExpiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	_, err = repository.WithTx(ctx, p.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, q, args...)
	})
	if err != nil {
		return fmt.Errorf("insert session: %w", repository.MapError(err, ErrNotFound, ErrValidation))
	}
	return nil
}

func (p *postgresStore) Load(ctx context.Context, id uuid.UUID) (*Session, error) {
	q, args, err := psql.
		Select(sessionColumns...).
		From(sessionTable).
		Where(sq.Eq{"session_id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	s, err := repository.QueryOne(ctx, p.db, q, args, scanSession)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrValidation)
	}
	return &s, nil
}

func (p *postgresStore) ReplaceEdits(ctx context.Context, id uuid.UUID, rev Revision) error {
	edits, err := json.Marshal(rev.Edits)
	if err != nil {
		return fmt.Errorf("encode edits: %w", err)
	}

	q, args, err := psql.
		Update(sessionTable).
		Set("edits", string(edits)).
		Set("status", rev.Status).
		Set("updated_at", rev.Timestamp).
		Set("expires_at", rev.ExpiresAt).
		Where(sq.Eq{"session_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	_, err = repository.WithTx(ctx, p.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, q, args...)
	})
	return repository.MapError(err, ErrNotFound, ErrValidation)
}

func (p *postgresStore) MarkStatus(ctx context.Context, id uuid.UUID, status Status) error {
	q, args, err := psql.
		Update(sessionTable).
		Set("status", status).
		Where(sq.Eq{"session_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	_, err = repository.WithTx(ctx, p.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, q, args...)
	})
	return repository.MapError(err, ErrNotFound, ErrValidation)
}

func (p *postgresStore) DeleteExpired(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	q, args, err := psql.
		Delete(sessionTable).
		Where(sq.Eq{"session_id": id}).
		Where(sq.LtOrEq{"expires_at": now}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete: %w", err)
	}

	res, err := p.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, fmt.Errorf("delete expired session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete expired session: %w", err)
	}
	return n > 0, nil
}

func (p *postgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	q, args, err := psql.
		Delete(sessionTable).
		Where(sq.Eq{"session_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (p *postgresStore) List(ctx context.Context) ([]Summary, error) {
	q, args, err := psql.
		Select("session_id", "pdf_path", "updated_at", "jsonb_array_length(edits)").
		From(sessionTable).
		OrderBy("updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	summaries, err := repository.QueryMany(ctx, p.db, q, args, scanSummary)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if summaries == nil {
		summaries = []Summary{}
	}
	return summaries, nil
}

func (p *postgresStore) Expired(ctx context.Context, now time.Time) ([]Session, error) {
	q, args, err := psql.
		Select(sessionColumns...).
		From(sessionTable).
		Where(sq.LtOrEq{"expires_at": now}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build expired: %w", err)
	}

	sessions, err := repository.QueryMany(ctx, p.db, q, args, scanSession)
	if err != nil {
		return nil, fmt.Errorf("query expired sessions: %w", err)
	}
	return sessions, nil
}

func scanSession(s repository.Scanner) (Session, error) {
	var (
		out   Session
		edits []byte
	)
	err := s.Scan(
		&out.ID, &out.PDFPath, &out.OriginalName, &edits,
		&out.Status, &out.CreatedAt, &out.Timestamp, &out.ExpiresAt,
	)
	if err != nil {
		return out, err
	}

	out.Edits = Edits{}
	if len(edits) > 0 {
		if err := json.Unmarshal(edits, &out.Edits); err != nil {
			return out, fmt.Errorf("decode edits: %w", err)
		}
	}
	return out, nil
}

func scanSummary(s repository.Scanner) (Summary, error) {
	var out Summary
	err := s.Scan(&out.SessionID, &out.PDFPath, &out.Timestamp, &out.EditCount)
	return out, err
}
