package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"
)

// badgerRecord is the persisted form of a Session. Edits stay in their JSON
// envelope form and times are stored as Unix nanoseconds for range queries.
type badgerRecord struct {
	ID           string
	PDFPath      string
	OriginalName string
	Edits        []byte
	Status       string
	CreatedAt    int64
	UpdatedAt    int64
	ExpiresAt    int64
}

// BadgerStore keeps sessions in an embedded badger database.
type BadgerStore struct {
	store  *badgerhold.Store
	logger *slog.Logger
}

// NewBadgerStore opens (or creates) the badger database at path.
func NewBadgerStore(path string, logger *slog.Logger) (*BadgerStore, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create badger directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &BadgerStore{
		store:  store,
		logger: logger.With("store", StoreBadger),
	}, nil
}

func (b *BadgerStore) Close() error {
	return b.store.Close()
}

func (b *BadgerStore) Create(ctx context.Context, s *Session) error {
	rec, err := toRecord(s)
	if err != nil {
		return err
	}
	if err := b.store.Insert(rec.ID, rec); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("%w: session %s already exists", ErrValidation, s.ID)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (b *BadgerStore) Load(ctx context.Context, id uuid.UUID) (*Session, error) {
	var rec badgerRecord
	if err := b.store.Get(id.String(), &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return fromRecord(&rec)
}

func (b *BadgerStore) ReplaceEdits(ctx context.Context, id uuid.UUID, rev Revision) error {
	s, err := b.Load(ctx, id)
	if err != nil {
		return err
	}
	s.apply(rev)

	rec, err := toRecord(s)
	if err != nil {
		return err
	}
	if err := b.store.Upsert(rec.ID, rec); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (b *BadgerStore) MarkStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return b.store.Badger().Update(func(tx *badger.Txn) error {
		var rec badgerRecord
		if err := b.store.TxGet(tx, id.String(), &rec); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get session: %w", err)
		}

		rec.Status = string(status)
		if err := b.store.TxUpdate(tx, rec.ID, &rec); err != nil {
			return fmt.Errorf("update session status: %w", err)
		}
		return nil
	})
}

func (b *BadgerStore) DeleteExpired(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	deleted := false
	err := b.store.Badger().Update(func(tx *badger.Txn) error {
		var rec badgerRecord
		if err := b.store.TxGet(tx, id.String(), &rec); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("get session: %w", err)
		}
		if rec.ExpiresAt == 0 || rec.ExpiresAt > now.UnixNano() {
			return nil
		}

		if err := b.store.TxDelete(tx, rec.ID, &badgerRecord{}); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (b *BadgerStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := b.store.Delete(id.String(), &badgerRecord{}); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (b *BadgerStore) List(ctx context.Context) ([]Summary, error) {
	var recs []badgerRecord
	if err := b.store.Find(&recs, badgerhold.Where("UpdatedAt").Ge(int64(0)).SortBy("UpdatedAt").Reverse()); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	summaries := make([]Summary, 0, len(recs))
	for i := range recs {
		s, err := fromRecord(&recs[i])
		if err != nil {
			b.logger.Warn("skipping unreadable session", "session_id", recs[i].ID, "error", err)
			continue
		}
		summaries = append(summaries, s.Summary())
	}
	return summaries, nil
}

func (b *BadgerStore) Expired(ctx context.Context, now time.Time) ([]Session, error) {
	var recs []badgerRecord
	query := badgerhold.Where("ExpiresAt").Le(now.UnixNano()).And("ExpiresAt").Gt(int64(0))
	if err := b.store.Find(&recs, query); err != nil {
		return nil, fmt.Errorf("query expired sessions: %w", err)
	}

	sessions := make([]Session, 0, len(recs))
	for i := range recs {
		s, err := fromRecord(&recs[i])
		if err != nil {
			b.logger.Warn("skipping unreadable session", "session_id", recs[i].ID, "error", err)
			continue
		}
		sessions = append(sessions, *s)
	}
	return sessions, nil
}

func toRecord(s *Session) (*badgerRecord, error) {
	edits, err := json.Marshal(s.Edits)
	if err != nil {
		return nil, fmt.Errorf("encode edits: %w", err)
	}
	return &badgerRecord{
		ID:           s.ID.String(),
		PDFPath:      s.PDFPath,
		OriginalName: s.OriginalName,
		Edits:        edits,
		Status:       string(s.Status),
		CreatedAt:    unixNano(s.CreatedAt),
		UpdatedAt:    unixNano(s.Timestamp),
		ExpiresAt:    unixNano(s.ExpiresAt),
	}, nil
}

func fromRecord(rec *badgerRecord) (*Session, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}

	s := &Session{
		ID:           id,
		PDFPath:      rec.PDFPath,
		OriginalName: rec.OriginalName,
		Edits:        Edits{},
		Status:       Status(rec.Status),
		CreatedAt:    fromUnixNano(rec.CreatedAt),
		Timestamp:    fromUnixNano(rec.UpdatedAt),
		ExpiresAt:    fromUnixNano(rec.ExpiresAt),
	}
	if len(rec.Edits) > 0 {
		if err := json.Unmarshal(rec.Edits, &s.Edits); err != nil {
			return nil, fmt.Errorf("decode edits: %w", err)
		}
	}
	return s, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
