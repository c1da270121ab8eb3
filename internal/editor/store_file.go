package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-editor/pkg/storage"
)

const sessionPrefix = "pdf/sessions"

type fileStore struct {
	storage storage.System
	logger  *slog.Logger
}

// NewFileStore keeps each session as a JSON document at
// pdf/sessions/{id}.json in blob storage. List orders sessions by most
// recent update.
func NewFileStore(store storage.System, logger *slog.Logger) Store {
	return &fileStore{
		storage: store,
		logger:  logger.With("store", StoreFile),
	}
}

func (f *fileStore) Create(ctx context.Context, s *Session) error {
	return f.write(ctx, s)
}

func (f *fileStore) Load(ctx context.Context, id uuid.UUID) (*Session, error) {
	return f.read(ctx, sessionKey(id))
}

func (f *fileStore) ReplaceEdits(ctx context.Context, id uuid.UUID, rev Revision) error {
	s, err := f.Load(ctx, id)
	if err != nil {
		return err
	}
	s.apply(rev)
	return f.write(ctx, s)
}

func (f *fileStore) MarkStatus(ctx context.Context, id uuid.UUID, status Status) error {
	s, err := f.Load(ctx, id)
	if err != nil {
		return err
	}
	s.Status = status
	return f.write(ctx, s)
}

func (f *fileStore) DeleteExpired(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	s, err := f.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !expired(s, now) {
		return false, nil
	}
	if err := f.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

func (f *fileStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := f.storage.Delete(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (f *fileStore) List(ctx context.Context) ([]Summary, error) {
	sessions, err := f.all(ctx)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(sessions, func(a, b Session) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	summaries := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, s.Summary())
	}
	return summaries, nil
}

func (f *fileStore) Expired(ctx context.Context, now time.Time) ([]Session, error) {
	sessions, err := f.all(ctx)
	if err != nil {
		return nil, err
	}

	var out []Session
	for _, s := range sessions {
		if expired(&s, now) {
			out = append(out, s)
		}
	}
	return out, nil
}

// all reads every session record. Unreadable records are logged and skipped.
func (f *fileStore) all(ctx context.Context) ([]Session, error) {
	keys, err := f.storage.List(ctx, sessionPrefix)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]Session, 0, len(keys))
	for _, key := range keys {
		if path.Ext(key) != ".json" {
			continue
		}
		s, err := f.read(ctx, key)
		if err != nil {
			f.logger.Warn("skipping unreadable session", "key", key, "error", err)
			continue
		}
		sessions = append(sessions, *s)
	}
	return sessions, nil
}

func (f *fileStore) read(ctx context.Context, key string) (*Session, error) {
	data, err := f.storage.Retrieve(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", strings.TrimSuffix(path.Base(key), ".json"), err)
	}
	if s.Edits == nil {
		s.Edits = Edits{}
	}
	return &s, nil
}

func (f *fileStore) write(ctx context.Context, s *Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := f.storage.Store(ctx, sessionKey(s.ID), data); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func sessionKey(id uuid.UUID) string {
	return path.Join(sessionPrefix, id.String()+".json")
}
