package editor_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/pdf-editor/internal/editor"
	"github.com/JaimeStill/pdf-editor/internal/pdftest"
	"github.com/JaimeStill/pdf-editor/migrations"
)

func storeBackends(t *testing.T) map[string]func(t *testing.T) editor.Store {
	return map[string]func(t *testing.T) editor.Store{
		editor.StoreFile: func(t *testing.T) editor.Store {
			return editor.NewFileStore(pdftest.Storage(t), pdftest.Logger())
		},
		editor.StoreBadger: func(t *testing.T) editor.Store {
			s, err := editor.NewBadgerStore(filepath.Join(t.TempDir(), "sessions.badger"), pdftest.Logger())
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		editor.StorePostgres: func(t *testing.T) editor.Store {
			dsn := os.Getenv("DATABASE_TEST_DSN")
			if dsn == "" {
				t.Skip("DATABASE_TEST_DSN not set")
			}
			db, err := sql.Open("pgx", dsn)
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })

			require.NoError(t, migrations.Up(db))
			_, err = db.Exec("DELETE FROM pdf_editor_sessions")
			require.NoError(t, err)

			return editor.NewPostgresStore(db, pdftest.Logger())
		},
	}
}

func newSession(expires time.Time) *editor.Session {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &editor.Session{
		ID:           uuid.New(),
		PDFPath:      "pdf/templates/doc.pdf",
		OriginalName: "doc.pdf",
		Edits:        editor.Edits{},
		Status:       editor.StatusActive,
		CreatedAt:    now,
		Timestamp:    now,
		ExpiresAt:    expires.UTC().Truncate(time.Millisecond),
	}
}

func TestStores(t *testing.T) {
	for name, open := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("create and load", func(t *testing.T) {
				store := open(t)
				ctx := context.Background()
				s := newSession(time.Now().Add(time.Hour))

				require.NoError(t, store.Create(ctx, s))

				got, err := store.Load(ctx, s.ID)
				require.NoError(t, err)
				assert.Equal(t, s.ID, got.ID)
				assert.Equal(t, s.PDFPath, got.PDFPath)
				assert.Equal(t, s.OriginalName, got.OriginalName)
				assert.Equal(t, editor.StatusActive, got.Status)
				assert.NotNil(t, got.Edits)
				assert.Empty(t, got.Edits)
				assert.True(t, s.CreatedAt.Equal(got.CreatedAt))
				assert.True(t, s.ExpiresAt.Equal(got.ExpiresAt))
			})

			t.Run("load unknown", func(t *testing.T) {
				store := open(t)
				_, err := store.Load(context.Background(), uuid.New())
				assert.ErrorIs(t, err, editor.ErrNotFound)
			})

			t.Run("replace edits", func(t *testing.T) {
				store := open(t)
				ctx := context.Background()
				s := newSession(time.Now().Add(time.Hour))
				require.NoError(t, store.Create(ctx, s))

				later := time.Now().UTC().Add(time.Minute).Truncate(time.Millisecond)
				rev := editor.Revision{
					Edits: editor.Edits{
						editor.FormFieldEdit{FieldName: "tenant", Value: "Ada", Timestamp: later},
						editor.UnknownEdit{Type: "highlight", Raw: []byte(`{"type":"highlight","page":2}`)},
					},
					Status:    editor.StatusSaved,
					Timestamp: later,
					ExpiresAt: later.Add(24 * time.Hour),
				}
				require.NoError(t, store.ReplaceEdits(ctx, s.ID, rev))

				got, err := store.Load(ctx, s.ID)
				require.NoError(t, err)
				assert.Equal(t, editor.StatusSaved, got.Status)
				require.Len(t, got.Edits, 2)
				assert.Equal(t, "Ada", got.Edits[0].(editor.FormFieldEdit).Value)
				assert.Equal(t, "highlight", got.Edits[1].EditType())
				assert.True(t, later.Equal(got.Timestamp))
				assert.True(t, rev.ExpiresAt.Equal(got.ExpiresAt))
				assert.True(t, s.CreatedAt.Equal(got.CreatedAt), "created_at is preserved")

				err = store.ReplaceEdits(ctx, uuid.New(), rev)
				assert.ErrorIs(t, err, editor.ErrNotFound)
			})

			t.Run("delete is idempotent", func(t *testing.T) {
				store := open(t)
				ctx := context.Background()
				s := newSession(time.Now().Add(time.Hour))
				require.NoError(t, store.Create(ctx, s))

				require.NoError(t, store.Delete(ctx, s.ID))
				_, err := store.Load(ctx, s.ID)
				assert.ErrorIs(t, err, editor.ErrNotFound)

				assert.NoError(t, store.Delete(ctx, s.ID))
			})

			t.Run("list", func(t *testing.T) {
				store := open(t)
				ctx := context.Background()

				empty, err := store.List(ctx)
				require.NoError(t, err)
				assert.NotNil(t, empty)
				assert.Empty(t, empty)

				a := newSession(time.Now().Add(time.Hour))
				b := newSession(time.Now().Add(time.Hour))
				require.NoError(t, store.Create(ctx, a))
				require.NoError(t, store.Create(ctx, b))

				later := time.Now().UTC().Add(time.Minute)
				require.NoError(t, store.ReplaceEdits(ctx, b.ID, editor.Revision{
					Edits:     editor.Edits{editor.FormFieldEdit{FieldName: "x", Value: "1"}},
					Status:    editor.StatusSaved,
					Timestamp: later,
					ExpiresAt: later.Add(time.Hour),
				}))

				summaries, err := store.List(ctx)
				require.NoError(t, err)
				require.Len(t, summaries, 2)

				counts := map[uuid.UUID]int{}
				for _, s := range summaries {
					counts[s.SessionID] = s.EditCount
				}
				assert.Equal(t, 0, counts[a.ID])
				assert.Equal(t, 1, counts[b.ID])

				latest := time.Now().UTC().Add(2 * time.Minute)
				require.NoError(t, store.ReplaceEdits(ctx, a.ID, editor.Revision{
					Edits:     editor.Edits{},
					Status:    editor.StatusSaved,
					Timestamp: latest,
					ExpiresAt: latest.Add(time.Hour),
				}))

				summaries, err = store.List(ctx)
				require.NoError(t, err)
				require.Len(t, summaries, 2)
				assert.Equal(t, a.ID, summaries[0].SessionID, "most recently updated first")
				assert.Equal(t, b.ID, summaries[1].SessionID)
			})

			t.Run("mark status", func(t *testing.T) {
				store := open(t)
				ctx := context.Background()
				s := newSession(time.Now().Add(time.Hour))
				require.NoError(t, store.Create(ctx, s))

				later := time.Now().UTC().Add(time.Minute).Truncate(time.Millisecond)
				rev := editor.Revision{
					Edits:     editor.Edits{editor.FormFieldEdit{FieldName: "tenant", Value: "Ada", Timestamp: later}},
					Status:    editor.StatusSaved,
					Timestamp: later,
					ExpiresAt: later.Add(24 * time.Hour),
				}
				require.NoError(t, store.ReplaceEdits(ctx, s.ID, rev))
				require.NoError(t, store.MarkStatus(ctx, s.ID, editor.StatusExported))

				got, err := store.Load(ctx, s.ID)
				require.NoError(t, err)
				assert.Equal(t, editor.StatusExported, got.Status)
				assert.Equal(t, map[string]string{"tenant": "Ada"}, got.Edits.FormValues())
				assert.True(t, later.Equal(got.Timestamp))
				assert.True(t, rev.ExpiresAt.Equal(got.ExpiresAt))

				err = store.MarkStatus(ctx, uuid.New(), editor.StatusExported)
				assert.ErrorIs(t, err, editor.ErrNotFound)
			})

			t.Run("delete expired", func(t *testing.T) {
				store := open(t)
				ctx := context.Background()
				now := time.Now()

				stale := newSession(now.Add(-time.Minute))
				fresh := newSession(now.Add(time.Hour))
				require.NoError(t, store.Create(ctx, stale))
				require.NoError(t, store.Create(ctx, fresh))

				deleted, err := store.DeleteExpired(ctx, stale.ID, now)
				require.NoError(t, err)
				assert.True(t, deleted)
				_, err = store.Load(ctx, stale.ID)
				assert.ErrorIs(t, err, editor.ErrNotFound)

				deleted, err = store.DeleteExpired(ctx, fresh.ID, now)
				require.NoError(t, err)
				assert.False(t, deleted)
				_, err = store.Load(ctx, fresh.ID)
				assert.NoError(t, err)

				deleted, err = store.DeleteExpired(ctx, uuid.New(), now)
				require.NoError(t, err)
				assert.False(t, deleted)
			})

			t.Run("expired", func(t *testing.T) {
				store := open(t)
				ctx := context.Background()
				now := time.Now()

				stale := newSession(now.Add(-time.Minute))
				fresh := newSession(now.Add(time.Hour))
				require.NoError(t, store.Create(ctx, stale))
				require.NoError(t, store.Create(ctx, fresh))

				expired, err := store.Expired(ctx, now)
				require.NoError(t, err)
				require.Len(t, expired, 1)
				assert.Equal(t, stale.ID, expired[0].ID)

				expired, err = store.Expired(ctx, now.Add(2*time.Hour))
				require.NoError(t, err)
				assert.Len(t, expired, 2)
			})
		})
	}
}

func TestBadgerStore_DuplicateCreate(t *testing.T) {
	store, err := editor.NewBadgerStore(t.TempDir(), pdftest.Logger())
	require.NoError(t, err)
	defer store.Close()

	s := newSession(time.Now().Add(time.Hour))
	require.NoError(t, store.Create(context.Background(), s))
	assert.ErrorIs(t, store.Create(context.Background(), s), editor.ErrValidation)
}

func TestBadgerStore_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s := newSession(time.Now().Add(time.Hour))

	store, err := editor.NewBadgerStore(dir, pdftest.Logger())
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, s))
	require.NoError(t, store.Close())

	store, err = editor.NewBadgerStore(dir, pdftest.Logger())
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.PDFPath, got.PDFPath)
}

func TestFileStore_SkipsUnreadableRecords(t *testing.T) {
	blobs := pdftest.Storage(t)
	store := editor.NewFileStore(blobs, pdftest.Logger())
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, newSession(time.Now().Add(time.Hour))))
	require.NoError(t, blobs.Store(ctx, "pdf/sessions/broken.json", []byte("{not json")))
	require.NoError(t, blobs.Store(ctx, "pdf/sessions/notes.txt", []byte("ignored")))

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}
