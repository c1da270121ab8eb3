package editor_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/pdf-editor/internal/editor"
	"github.com/JaimeStill/pdf-editor/internal/pdftest"
	"github.com/JaimeStill/pdf-editor/internal/toolkit"
	"github.com/JaimeStill/pdf-editor/pkg/storage"
)

const fieldsDump = `---
FieldType: Text
FieldName: tenant
FieldValue: 
---
FieldType: Text
FieldName: signature
---
FieldType: Button
FieldName: hidden
FieldStateOption: Off
FieldStateOption: Yes
`

const metadataDump = `InfoBegin
InfoKey: Title
InfoValue: Lease
NumberOfPages: 2
PageMediaDimensions: 612 792
`

type fixture struct {
	sys   editor.System
	store editor.Store
	gw    *pdftest.Gateway
	blobs storage.System
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	blobs := pdftest.Storage(t)
	gw := &pdftest.Gateway{}
	store := editor.NewFileStore(blobs, pdftest.Logger())

	cfg := &editor.Config{}
	require.NoError(t, cfg.Finalize(nil))

	applier := editor.NewApplier(gw, fillOpts, cfg.Batch(), pdftest.Logger())
	sys := editor.New(store, blobs, gw, applier, cfg, pdftest.Logger())

	return &fixture{sys: sys, store: store, gw: gw, blobs: blobs}
}

func leaseForm() []byte {
	return pdftest.Form(2,
		pdftest.Field{Name: "tenant", Page: 1, X: 72, Y: 700, W: 200, H: 20},
		pdftest.Field{Name: "signature", Page: 2, X: 100, Y: 120, W: 180, H: 30},
	)
}

func (f *fixture) load(t *testing.T) *editor.LoadResult {
	t.Helper()
	f.gw.On("Fields", mock.Anything, mock.Anything).Return(fieldsDump, nil).Once()
	f.gw.On("Metadata", mock.Anything, mock.Anything).Return(metadataDump, nil).Once()

	result, err := f.sys.Load(context.Background(), editor.Upload{Filename: "my lease.pdf", Data: leaseForm()})
	require.NoError(t, err)
	return result
}

func TestService_Load(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result := f.load(t)

	assert.NotEqual(t, uuid.Nil, result.SessionID)
	assert.True(t, strings.HasPrefix(result.PDFPath, "pdf/templates/"+result.SessionID.String()+"_"))
	assert.True(t, strings.HasSuffix(result.PDFPath, "my_lease.pdf"))
	assert.Equal(t, "my lease.pdf", result.OriginalName)
	assert.Equal(t, 2, result.PageCount)
	assert.True(t, result.BackupCreated)
	assert.Equal(t, "Lease", result.EditableRegions.Metadata["Title"])
	assert.NotNil(t, result.EditableRegions.TextRegions)

	fields := result.EditableRegions.FormFields
	require.Len(t, fields, 3)

	assert.Equal(t, "tenant", fields[0].Name)
	assert.Equal(t, editor.RegionID("tenant"), fields[0].ID)
	assert.True(t, fields[0].Editable)
	assert.Equal(t, toolkit.Rect{X: 72, Y: 700, Width: 200, Height: 20, Page: 1}, fields[0].Coordinates)
	assert.Equal(t, 2, fields[1].Coordinates.Page)
	assert.Equal(t, toolkit.DefaultRect, fields[2].Coordinates, "fields without a widget use the default rectangle")
	assert.Equal(t, []string{"Off", "Yes"}, fields[2].Options)

	backups, err := f.blobs.List(ctx, "pdf/backups")
	require.NoError(t, err)
	assert.Len(t, backups, 1)

	session, err := f.store.Load(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, editor.StatusActive, session.Status)
	assert.Empty(t, session.Edits)
	assert.Equal(t, result.PDFPath, session.PDFPath)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), session.ExpiresAt, time.Minute)
}

func TestService_Load_ToolkitFailureDegrades(t *testing.T) {
	f := newFixture(t)

	f.gw.On("Fields", mock.Anything, mock.Anything).Return("", &toolkit.Error{Op: "dump_data_fields", Err: toolkit.ErrProcess})
	f.gw.On("Metadata", mock.Anything, mock.Anything).Return("", &toolkit.Error{Op: "dump_data", Err: toolkit.ErrTimeout})

	result, err := f.sys.Load(context.Background(), editor.Upload{Filename: "doc.pdf", Data: pdftest.Document(1)})
	require.NoError(t, err)

	assert.Empty(t, result.EditableRegions.FormFields)
	assert.NotNil(t, result.EditableRegions.FormFields)
	assert.Equal(t, toolkit.FallbackMetadata(), result.EditableRegions.Metadata)
	assert.Equal(t, 1, result.PageCount)
}

func TestService_Load_Empty(t *testing.T) {
	f := newFixture(t)

	_, err := f.sys.Load(context.Background(), editor.Upload{Filename: "doc.pdf"})
	assert.ErrorIs(t, err, editor.ErrValidation)
}

func TestService_Document(t *testing.T) {
	f := newFixture(t)
	result := f.load(t)

	docPath, err := f.sys.Document(context.Background(), result.SessionID)
	require.NoError(t, err)

	data, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.Equal(t, leaseForm(), data)

	_, err = f.sys.Document(context.Background(), uuid.New())
	assert.ErrorIs(t, err, editor.ErrNotFound)
}

func TestService_SaveEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	result := f.load(t)

	before, err := f.store.Load(ctx, result.SessionID)
	require.NoError(t, err)

	edits := editor.Edits{
		editor.FormFieldEdit{FieldName: "tenant", Value: "Ada"},
		editor.ShapeEdit{Layout: editor.Layout{Page: 1}, Shape: "circle"},
		editor.FormFieldEdit{FieldName: "tenant", Value: "Grace"},
	}
	require.NoError(t, f.sys.SaveEdits(ctx, result.SessionID, edits))

	session, err := f.store.Load(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, editor.StatusSaved, session.Status)
	require.Len(t, session.Edits, 2)
	assert.Equal(t, "Grace", session.Edits[0].(editor.FormFieldEdit).Value)
	assert.False(t, session.ExpiresAt.Before(before.ExpiresAt))
	assert.Equal(t, before.CreatedAt.Unix(), session.CreatedAt.Unix())

	require.NoError(t, f.sys.SaveEdits(ctx, result.SessionID, editor.Edits{}))
	session, err = f.store.Load(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Empty(t, session.Edits, "save replaces rather than appends")
}

func TestService_SaveEdits_NotFound(t *testing.T) {
	f := newFixture(t)

	err := f.sys.SaveEdits(context.Background(), uuid.New(), editor.Edits{})
	assert.ErrorIs(t, err, editor.ErrNotFound)
}

func TestService_UpdateFormField(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	result := f.load(t)

	require.NoError(t, f.sys.UpdateFormField(ctx, result.SessionID, "tenant", "Ada"))
	require.NoError(t, f.sys.UpdateFormField(ctx, result.SessionID, "signature", "A.L."))
	require.NoError(t, f.sys.UpdateFormField(ctx, result.SessionID, "tenant", "Grace"))

	session, err := f.store.Load(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, editor.StatusActive, session.Status)
	assert.Equal(t, map[string]string{"tenant": "Grace", "signature": "A.L."}, session.Edits.FormValues())
	require.Len(t, session.Edits, 2)
	assert.Equal(t, "tenant", session.Edits[0].(editor.FormFieldEdit).FieldName)

	assert.ErrorIs(t, f.sys.UpdateFormField(ctx, result.SessionID, " ", "x"), editor.ErrValidation)
	assert.ErrorIs(t, f.sys.UpdateFormField(ctx, uuid.New(), "tenant", "x"), editor.ErrNotFound)
}

func TestService_Preview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	result := f.load(t)

	require.NoError(t, f.sys.UpdateFormField(ctx, result.SessionID, "tenant", "Ada"))

	f.gw.On("FillForm", mock.Anything, mock.Anything, map[string]string{"tenant": "Ada"}, fillOpts, mock.Anything).
		Run(writesOutput("%PDF-preview")).Return(nil, nil).Once()

	out, err := f.sys.Preview(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "preview.pdf", out.Filename)
	assert.Contains(t, out.Path, "preview_")

	data, err := os.ReadFile(out.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-preview", string(data))

	base, err := f.sys.Document(ctx, result.SessionID)
	require.NoError(t, err)
	original, err := os.ReadFile(base)
	require.NoError(t, err)
	assert.Equal(t, leaseForm(), original, "preview never modifies the base document")

	out.Cleanup()
	_, err = os.Stat(out.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestService_Export(t *testing.T) {
	tests := []struct {
		requested string
		want      string
	}{
		{"", "edited-document.pdf"},
		{"lease-final", "lease-final.pdf"},
		{"signed.PDF", "signed.PDF"},
		{"../../etc/passwd", "passwd.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			result := f.load(t)

			out, err := f.sys.Export(ctx, result.SessionID, tt.requested)
			require.NoError(t, err)
			defer out.Cleanup()

			assert.Equal(t, tt.want, out.Filename)
			assert.Contains(t, out.Path, "final_")

			data, err := os.ReadFile(out.Path)
			require.NoError(t, err)
			assert.Equal(t, leaseForm(), data, "no edits exports a copy of the base")

			session, err := f.store.Load(ctx, result.SessionID)
			require.NoError(t, err)
			assert.Equal(t, editor.StatusExported, session.Status)
		})
	}
}

func TestService_Export_KeepsConcurrentEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	result := f.load(t)

	require.NoError(t, f.sys.UpdateFormField(ctx, result.SessionID, "tenant", "Ada"))

	f.gw.On("FillForm", mock.Anything, mock.Anything, map[string]string{"tenant": "Ada"}, fillOpts, mock.Anything).
		Run(func(args mock.Arguments) {
			require.NoError(t, f.sys.UpdateFormField(ctx, result.SessionID, "signature", "A.L."))
			writesOutput("%PDF-final")(args)
		}).
		Return(nil, nil).Once()

	out, err := f.sys.Export(ctx, result.SessionID, "lease")
	require.NoError(t, err)
	defer out.Cleanup()

	session, err := f.store.Load(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, editor.StatusExported, session.Status)
	assert.Equal(t, map[string]string{"tenant": "Ada", "signature": "A.L."}, session.Edits.FormValues())
}

func TestService_Export_ApplicationFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	result := f.load(t)

	require.NoError(t, f.sys.UpdateFormField(ctx, result.SessionID, "tenant", "Ada"))
	f.gw.On("FillForm", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &toolkit.Error{Op: "fill_form", Err: toolkit.ErrProcess})

	_, err := f.sys.Export(ctx, result.SessionID, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, editor.ErrApplication)
	assert.Equal(t, 500, editor.MapHTTPStatus(err))

	generated, err := f.blobs.List(ctx, "pdf/generated")
	require.NoError(t, err)
	assert.Empty(t, generated)

	session, err := f.store.Load(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, editor.StatusActive, session.Status)
}

func TestService_MissingBaseDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	result := f.load(t)

	require.NoError(t, f.blobs.Delete(ctx, result.PDFPath))

	_, err := f.sys.Preview(ctx, result.SessionID)
	assert.ErrorIs(t, err, editor.ErrDocumentMissing)
	assert.Equal(t, 404, editor.MapHTTPStatus(err))
}

func TestService_FormFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	result := f.load(t)

	f.gw.On("Fields", mock.Anything, mock.Anything).Return(fieldsDump, nil).Once()
	fields, err := f.sys.FormFields(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Len(t, fields, 3)

	f.gw.On("Fields", mock.Anything, mock.Anything).Return("", &toolkit.Error{Op: "dump_data_fields", Err: toolkit.ErrProcess}).Once()
	_, err = f.sys.FormFields(ctx, result.SessionID)
	assert.ErrorIs(t, err, editor.ErrToolkit)
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	result := f.load(t)

	require.NoError(t, f.sys.Delete(ctx, result.SessionID))

	_, err := f.store.Load(ctx, result.SessionID)
	assert.ErrorIs(t, err, editor.ErrNotFound)

	exists, err := f.blobs.Validate(ctx, result.PDFPath)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, f.sys.Delete(ctx, result.SessionID), "deleting twice succeeds")
	assert.NoError(t, f.sys.Delete(ctx, uuid.New()))
}

func TestService_Delete_BaseMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	result := f.load(t)

	require.NoError(t, f.blobs.Delete(ctx, result.PDFPath))

	require.NoError(t, f.sys.Delete(ctx, result.SessionID))

	_, err := f.store.Load(ctx, result.SessionID)
	assert.ErrorIs(t, err, editor.ErrNotFound)
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.load(t)
	second := f.load(t)
	require.NoError(t, f.sys.UpdateFormField(ctx, second.SessionID, "tenant", "Ada"))

	summaries, err := f.sys.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	counts := map[uuid.UUID]int{}
	for _, s := range summaries {
		counts[s.SessionID] = s.EditCount
	}
	assert.Equal(t, 0, counts[first.SessionID])
	assert.Equal(t, 1, counts[second.SessionID])
}

func TestService_Reap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stale := f.load(t)
	fresh := f.load(t)

	session, err := f.store.Load(ctx, stale.SessionID)
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, f.store.ReplaceEdits(ctx, stale.SessionID, editor.Revision{
		Edits:     session.Edits,
		Status:    session.Status,
		Timestamp: past,
		ExpiresAt: past,
	}))

	n, err := f.sys.Reap(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = f.store.Load(ctx, stale.SessionID)
	assert.True(t, errors.Is(err, editor.ErrNotFound))

	_, err = f.store.Load(ctx, fresh.SessionID)
	assert.NoError(t, err)

	exists, err := f.blobs.Validate(ctx, stale.PDFPath)
	require.NoError(t, err)
	assert.False(t, exists)
}

// refreshingStore runs refresh after Expired returns, standing in for a
// save that lands between the expiry query and the delete.
type refreshingStore struct {
	editor.Store
	refresh func()
}

func (s *refreshingStore) Expired(ctx context.Context, now time.Time) ([]editor.Session, error) {
	sessions, err := s.Store.Expired(ctx, now)
	s.refresh()
	return sessions, err
}

func TestService_Reap_SkipsRefreshedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	result := f.load(t)
	expire(t, f, result)

	cfg := &editor.Config{}
	require.NoError(t, cfg.Finalize(nil))
	applier := editor.NewApplier(f.gw, fillOpts, cfg.Batch(), pdftest.Logger())

	var sys editor.System
	store := &refreshingStore{
		Store: f.store,
		refresh: func() {
			edits := editor.Edits{editor.FormFieldEdit{FieldName: "tenant", Value: "Ada", Timestamp: time.Now()}}
			require.NoError(t, sys.SaveEdits(ctx, result.SessionID, edits))
		},
	}
	sys = editor.New(store, f.blobs, f.gw, applier, cfg, pdftest.Logger())

	n, err := sys.Reap(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	session, err := f.store.Load(ctx, result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"tenant": "Ada"}, session.Edits.FormValues())
	assert.True(t, session.ExpiresAt.After(time.Now()))

	exists, err := f.blobs.Validate(ctx, result.PDFPath)
	require.NoError(t, err)
	assert.True(t, exists, "base document survives")
}

func TestRegionID(t *testing.T) {
	assert.Equal(t, "field_d41d8cd98f00b204e9800998ecf8427e", editor.RegionID(""))
	assert.Equal(t, editor.RegionID("tenant"), editor.RegionID("tenant"))
	assert.NotEqual(t, editor.RegionID("tenant"), editor.RegionID("Tenant"))
}
