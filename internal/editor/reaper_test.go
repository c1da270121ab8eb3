package editor_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/pdf-editor/internal/editor"
	"github.com/JaimeStill/pdf-editor/internal/pdftest"
	"github.com/JaimeStill/pdf-editor/pkg/lifecycle"
)

func expire(t *testing.T, f *fixture, result *editor.LoadResult) {
	t.Helper()
	ctx := context.Background()
	session, err := f.store.Load(ctx, result.SessionID)
	require.NoError(t, err)

	past := time.Now().Add(-time.Minute)
	require.NoError(t, f.store.ReplaceEdits(ctx, result.SessionID, editor.Revision{
		Edits:     session.Edits,
		Status:    session.Status,
		Timestamp: past,
		ExpiresAt: past,
	}))
}

func TestReaper_RunOnce(t *testing.T) {
	f := newFixture(t)
	expire(t, f, f.load(t))
	f.load(t)

	r, err := editor.NewReaper(f.sys, "@every 1h", pdftest.Logger())
	require.NoError(t, err)

	n, err := r.RunOnce(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	summaries, err := f.sys.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestReaper_InvalidSchedule(t *testing.T) {
	f := newFixture(t)

	_, err := editor.NewReaper(f.sys, "every now and then", pdftest.Logger())
	assert.Error(t, err)
}

func TestReaper_Lifecycle(t *testing.T) {
	f := newFixture(t)
	expired := f.load(t)
	expire(t, f, expired)

	r, err := editor.NewReaper(f.sys, "@every 1s", pdftest.Logger())
	require.NoError(t, err)

	lc := lifecycle.New()
	require.NoError(t, r.Start(lc))
	lc.WaitForStartup()

	assert.Eventually(t, func() bool {
		_, err := f.store.Load(context.Background(), expired.SessionID)
		return err != nil
	}, 5*time.Second, 100*time.Millisecond)

	require.NoError(t, lc.Shutdown(5*time.Second))
}

type contextRecorder struct {
	editor.System
	mu  sync.Mutex
	ctx context.Context
}

func (c *contextRecorder) Reap(ctx context.Context, now time.Time) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx = ctx
	return 0, nil
}

func (c *contextRecorder) last() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

func TestReaper_UsesLifecycleContext(t *testing.T) {
	rec := &contextRecorder{}
	r, err := editor.NewReaper(rec, "@every 1s", pdftest.Logger())
	require.NoError(t, err)

	lc := lifecycle.New()
	require.NoError(t, r.Start(lc))
	lc.WaitForStartup()

	require.Eventually(t, func() bool { return rec.last() != nil }, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, lc.Context(), rec.last())

	require.NoError(t, lc.Shutdown(5*time.Second))
	assert.Error(t, rec.last().Err(), "job context is cancelled on shutdown")
}
