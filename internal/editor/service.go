package editor

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-editor/internal/toolkit"
	"github.com/JaimeStill/pdf-editor/pkg/storage"
)

const (
	templatePrefix  = "pdf/templates"
	backupPrefix    = "pdf/backups"
	tempPrefix      = "pdf/temp"
	generatedPrefix = "pdf/generated"

	defaultExportName = "edited-document.pdf"
)

type service struct {
	store   Store
	blobs   storage.System
	gateway toolkit.Gateway
	applier *Applier
	ttl     time.Duration
	logger  *slog.Logger
}

// New creates the editor system. cfg must be finalized.
func New(store Store, blobs storage.System, gateway toolkit.Gateway, applier *Applier, cfg *Config, logger *slog.Logger) System {
	return &service{
		store:   store,
		blobs:   blobs,
		gateway: gateway,
		applier: applier,
		ttl:     cfg.TTLDuration(),
		logger:  logger.With("system", "editor"),
	}
}

func (s *service) Load(ctx context.Context, upload Upload) (*LoadResult, error) {
	s.logger.Debug("loading document", "filename", upload.Filename, "size", len(upload.Data))

	if len(upload.Data) == 0 {
		return nil, fmt.Errorf("%w: pdf_file is empty", ErrValidation)
	}

	id := uuid.New()
	key := path.Join(templatePrefix, id.String()+"_"+sanitizeFilename(upload.Filename))

	if err := s.blobs.Store(ctx, key, upload.Data); err != nil {
		return nil, fmt.Errorf("store template: %w", err)
	}

	docPath, err := s.blobs.Path(ctx, key)
	if err != nil {
		s.cleanup(key)
		return nil, fmt.Errorf("resolve template: %w", err)
	}

	backupCreated := s.backup(ctx, key)
	regions, pageCount := s.inspect(ctx, docPath)

	now := time.Now().UTC()
	session := &Session{
		ID:           id,
		PDFPath:      key,
		OriginalName: upload.Filename,
		Edits:        Edits{},
		Status:       StatusActive,
		CreatedAt:    now,
		Timestamp:    now,
		ExpiresAt:    now.Add(s.ttl),
	}

	if err := s.store.Create(ctx, session); err != nil {
		s.cleanup(key)
		s.logger.Error("session create failed", "session_id", id, "error", err)
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("document loaded",
		"session_id", id,
		"pdf_path", key,
		"page_count", pageCount,
		"form_fields", len(regions.FormFields),
		"backup_created", backupCreated,
	)

	return &LoadResult{
		SessionID:       id,
		PDFPath:         key,
		OriginalName:    upload.Filename,
		PageCount:       pageCount,
		EditableRegions: regions,
		BackupCreated:   backupCreated,
	}, nil
}

func (s *service) Document(ctx context.Context, id uuid.UUID) (string, error) {
	session, err := s.store.Load(ctx, id)
	if err != nil {
		return "", err
	}
	return s.basePath(ctx, session)
}

func (s *service) SaveEdits(ctx context.Context, id uuid.UUID, edits Edits) error {
	s.logger.Debug("saving edits", "session_id", id, "edits", len(edits))

	now := time.Now().UTC()
	rev := Revision{
		Edits:     edits.Normalize(),
		Status:    StatusSaved,
		Timestamp: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.store.ReplaceEdits(ctx, id, rev); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("save edits failed", "session_id", id, "error", err)
		}
		return err
	}

	s.logger.Info("edits saved", "session_id", id, "edits", len(rev.Edits))
	return nil
}

func (s *service) UpdateFormField(ctx context.Context, id uuid.UUID, field, value string) error {
	s.logger.Debug("updating form field", "session_id", id, "field", field)

	if strings.TrimSpace(field) == "" {
		return fmt.Errorf("%w: field_name is required", ErrValidation)
	}

	session, err := s.store.Load(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	rev := Revision{
		Edits:     session.Edits.Upsert(field, value, now),
		Status:    session.Status,
		Timestamp: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.store.ReplaceEdits(ctx, id, rev); err != nil {
		s.logger.Error("update form field failed", "session_id", id, "field", field, "error", err)
		return err
	}

	s.logger.Info("form field updated", "session_id", id, "field", field)
	return nil
}

func (s *service) Preview(ctx context.Context, id uuid.UUID) (*Output, error) {
	s.logger.Debug("generating preview", "session_id", id)

	session, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	key := path.Join(tempPrefix, "preview_"+uuid.NewString()+".pdf")
	out, err := s.render(ctx, session, key, "preview.pdf")
	if err != nil {
		return nil, err
	}

	s.logger.Info("preview generated", "session_id", id, "edits", len(session.Edits))
	return out, nil
}

func (s *service) Export(ctx context.Context, id uuid.UUID, filename string) (*Output, error) {
	filename = exportName(filename)
	s.logger.Debug("exporting document", "session_id", id, "filename", filename)

	session, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	key := path.Join(generatedPrefix, "final_"+uuid.NewString()+".pdf")
	out, err := s.render(ctx, session, key, filename)
	if err != nil {
		return nil, err
	}

	if err := s.store.MarkStatus(ctx, id, StatusExported); err != nil {
		s.logger.Warn("export status not recorded", "session_id", id, "error", err)
	}

	s.logger.Info("document exported", "session_id", id, "filename", filename, "edits", len(session.Edits))
	return out, nil
}

func (s *service) FormFields(ctx context.Context, id uuid.UUID) ([]toolkit.FormField, error) {
	session, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	docPath, err := s.basePath(ctx, session)
	if err != nil {
		return nil, err
	}

	raw, err := s.gateway.Fields(ctx, docPath)
	if err != nil {
		s.logger.Error("form field extraction failed", "session_id", id, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrToolkit, err)
	}

	return toolkit.ParseFields(raw), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	s.logger.Debug("deleting session", "session_id", id)

	session, err := s.store.Load(ctx, id)
	switch {
	case err == nil:
		if err := s.blobs.Delete(ctx, session.PDFPath); err != nil {
			s.logger.Warn("base document not removed", "session_id", id, "pdf_path", session.PDFPath, "error", err)
		}
	case errors.Is(err, ErrNotFound):
	default:
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Error("session delete failed", "session_id", id, "error", err)
		return err
	}

	s.logger.Info("session deleted", "session_id", id)
	return nil
}

func (s *service) List(ctx context.Context) ([]Summary, error) {
	return s.store.List(ctx)
}

func (s *service) Reap(ctx context.Context, now time.Time) (int, error) {
	sessions, err := s.store.Expired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("find expired sessions: %w", err)
	}

	reaped := 0
	for _, session := range sessions {
		deleted, err := s.store.DeleteExpired(ctx, session.ID, now)
		if err != nil {
			s.logger.Error("reap failed", "session_id", session.ID, "error", err)
			continue
		}
		if !deleted {
			s.logger.Debug("session refreshed before reap", "session_id", session.ID)
			continue
		}

		if err := s.blobs.Delete(ctx, session.PDFPath); err != nil {
			s.logger.Warn("base document not removed", "session_id", session.ID, "pdf_path", session.PDFPath, "error", err)
		}
		reaped++
	}

	if reaped > 0 {
		s.logger.Info("expired sessions reaped", "count", reaped)
	}
	return reaped, nil
}

// render applies the session's edits into a new blob at key.
func (s *service) render(ctx context.Context, session *Session, key, filename string) (*Output, error) {
	base, err := s.basePath(ctx, session)
	if err != nil {
		return nil, err
	}

	outPath, err := s.blobs.Path(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("resolve output: %w", err)
	}

	if err := s.applier.Apply(ctx, base, session.Edits, outPath); err != nil {
		s.logger.Error("render failed", "session_id", session.ID, "error", err)
		return nil, err
	}

	return &Output{
		Path:     outPath,
		Filename: filename,
		Cleanup:  func() { s.cleanup(key) },
	}, nil
}

func (s *service) basePath(ctx context.Context, session *Session) (string, error) {
	exists, err := s.blobs.Validate(ctx, session.PDFPath)
	if err != nil {
		return "", fmt.Errorf("check base document: %w", err)
	}
	if !exists {
		return "", ErrDocumentMissing
	}
	return s.blobs.Path(ctx, session.PDFPath)
}

// backup copies the stored template beside the other backups. Failure is
// reported but never fails the load.
func (s *service) backup(ctx context.Context, key string) bool {
	stem := strings.TrimSuffix(path.Base(key), path.Ext(key))
	dst := path.Join(backupPrefix, fmt.Sprintf("%s_backup_%d.pdf", stem, time.Now().Unix()))

	if err := s.blobs.Copy(ctx, key, dst); err != nil {
		s.logger.Warn("backup failed", "pdf_path", key, "error", err)
		return false
	}
	return true
}

// inspect reads fields, metadata and widget geometry of the document.
// Toolkit failures degrade to empty fields and fallback metadata.
func (s *service) inspect(ctx context.Context, docPath string) (EditableRegions, int) {
	fields := []toolkit.FormField{}
	if raw, err := s.gateway.Fields(ctx, docPath); err != nil {
		s.logger.Warn("form field extraction failed", "path", docPath, "error", err)
	} else {
		fields = toolkit.ParseFields(raw)
	}

	meta := toolkit.FallbackMetadata()
	rawMeta := ""
	if raw, err := s.gateway.Metadata(ctx, docPath); err != nil {
		s.logger.Warn("metadata extraction failed", "path", docPath, "error", err)
	} else {
		meta = toolkit.ParseMetadata(raw)
		rawMeta = raw
	}

	rects := map[string]toolkit.Rect{}
	if len(fields) > 0 {
		if r, err := toolkit.FieldGeometry(docPath); err != nil {
			s.logger.Debug("field geometry unavailable", "path", docPath, "error", err)
		} else {
			rects = r
		}
	}

	regions := EditableRegions{
		FormFields:  make([]RegionField, 0, len(fields)),
		TextRegions: []any{},
		Metadata:    meta,
	}
	for _, f := range fields {
		rect, ok := rects[f.Name]
		if !ok {
			rect = toolkit.DefaultRect
		}
		regions.FormFields = append(regions.FormFields, RegionField{
			FormField:   f,
			ID:          RegionID(f.Name),
			Editable:    true,
			Coordinates: rect,
		})
	}

	return regions, toolkit.ResolvePageCount(meta, rawMeta)
}

func (s *service) cleanup(key string) {
	if err := s.blobs.Delete(context.Background(), key); err != nil {
		s.logger.Warn("cleanup failed", "key", key, "error", err)
	}
}

// RegionID is the stable client identifier of a form field.
func RegionID(name string) string {
	sum := md5.Sum([]byte(name))
	return "field_" + hex.EncodeToString(sum[:])
}

func exportName(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	if name == "" || name == "." || name == "/" {
		return defaultExportName
	}
	if !strings.EqualFold(path.Ext(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	name = replacer.Replace(name)
	if name == "" || name == "." {
		name = "document"
	}
	if !strings.EqualFold(path.Ext(name), ".pdf") {
		name += ".pdf"
	}
	return name
}
