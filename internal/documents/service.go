package documents

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-editor/internal/toolkit"
	"github.com/JaimeStill/pdf-editor/pkg/storage"
)

const tempPrefix = "pdf/temp"

type service struct {
	blobs   storage.System
	gateway toolkit.Gateway
	fill    toolkit.FillOptions
	logger  *slog.Logger
}

// New creates the document system.
func New(blobs storage.System, gateway toolkit.Gateway, fill toolkit.FillOptions, logger *slog.Logger) System {
	return &service{
		blobs:   blobs,
		gateway: gateway,
		fill:    fill,
		logger:  logger.With("system", "documents"),
	}
}

func (s *service) FormFields(ctx context.Context, file *File) ([]toolkit.FormField, error) {
	var fields []toolkit.FormField
	err := s.withStaged(ctx, []*File{file}, func(paths []string) error {
		raw, err := s.gateway.Fields(ctx, paths[0])
		if err != nil {
			return err
		}
		fields = toolkit.ParseFields(raw)
		return nil
	})
	if err != nil {
		return nil, s.fail("form fields", err)
	}

	s.logger.Info("form fields extracted", "filename", file.Filename, "fields", len(fields))
	return fields, nil
}

func (s *service) Fill(ctx context.Context, file *File, values map[string]string) ([]byte, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: form_data is required", ErrInvalidInput)
	}

	out, err := s.produce(ctx, []*File{file}, func(paths []string) ([]byte, error) {
		return s.gateway.FillForm(ctx, paths[0], values, s.fill, "")
	})
	if err != nil {
		return nil, s.fail("fill form", err)
	}

	s.logger.Info("form filled", "filename", file.Filename, "fields", len(values))
	return out, nil
}

func (s *service) Merge(ctx context.Context, files []*File) ([]byte, error) {
	if len(files) < 2 {
		return nil, fmt.Errorf("%w: at least two pdf_files are required", ErrInvalidInput)
	}

	out, err := s.produce(ctx, files, func(paths []string) ([]byte, error) {
		return s.gateway.Merge(ctx, paths, "")
	})
	if err != nil {
		return nil, s.fail("merge", err)
	}

	s.logger.Info("documents merged", "count", len(files), "size", len(out))
	return out, nil
}

// Split bursts the document into single pages and returns them as a zip
// archive of page_NN.pdf entries.
func (s *service) Split(ctx context.Context, file *File) ([]byte, error) {
	var archive []byte
	err := s.withStaged(ctx, []*File{file}, func(paths []string) error {
		dir, err := s.blobs.Path(ctx, path.Join(tempPrefix, "split_"+uuid.NewString()))
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)

		pages, err := s.gateway.Burst(ctx, paths[0], dir)
		if err != nil {
			return err
		}

		archive, err = zipFiles(pages)
		return err
	})
	if err != nil {
		return nil, s.fail("split", err)
	}

	s.logger.Info("document split", "filename", file.Filename, "pages", file.PageCount)
	return archive, nil
}

func (s *service) Info(ctx context.Context, file *File) (toolkit.Metadata, error) {
	var meta toolkit.Metadata
	err := s.withStaged(ctx, []*File{file}, func(paths []string) error {
		raw, err := s.gateway.Metadata(ctx, paths[0])
		if err != nil {
			return err
		}
		meta = toolkit.ParseMetadata(raw)
		return nil
	})
	if err != nil {
		return nil, s.fail("info", err)
	}
	return meta, nil
}

func (s *service) Encrypt(ctx context.Context, file *File, userPassword, ownerPassword string) ([]byte, error) {
	if userPassword == "" {
		return nil, fmt.Errorf("%w: user_password is required", ErrInvalidInput)
	}

	out, err := s.produce(ctx, []*File{file}, func(paths []string) ([]byte, error) {
		return s.gateway.Encrypt(ctx, paths[0], userPassword, ownerPassword, "")
	})
	if err != nil {
		return nil, s.fail("encrypt", err)
	}
	return out, nil
}

func (s *service) Decrypt(ctx context.Context, file *File, password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	out, err := s.produce(ctx, []*File{file}, func(paths []string) ([]byte, error) {
		return s.gateway.Decrypt(ctx, paths[0], password, "")
	})
	if err != nil {
		return nil, s.fail("decrypt", err)
	}
	return out, nil
}

func (s *service) Rotate(ctx context.Context, file *File, rotation toolkit.Rotation, pages string) ([]byte, error) {
	out, err := s.produce(ctx, []*File{file}, func(paths []string) ([]byte, error) {
		return s.gateway.Rotate(ctx, paths[0], pages, rotation, "")
	})
	if err != nil {
		return nil, s.fail("rotate", err)
	}
	return out, nil
}

func (s *service) produce(ctx context.Context, files []*File, fn func(paths []string) ([]byte, error)) ([]byte, error) {
	var out []byte
	err := s.withStaged(ctx, files, func(paths []string) error {
		var err error
		out, err = fn(paths)
		return err
	})
	return out, err
}

// withStaged writes files to temporary storage, runs fn with their paths,
// and removes them afterwards.
func (s *service) withStaged(ctx context.Context, files []*File, fn func(paths []string) error) error {
	keys := make([]string, 0, len(files))
	defer func() {
		for _, key := range keys {
			if err := s.blobs.Delete(context.Background(), key); err != nil {
				s.logger.Warn("temp cleanup failed", "key", key, "error", err)
			}
		}
	}()

	paths := make([]string, 0, len(files))
	for _, f := range files {
		key := path.Join(tempPrefix, uuid.NewString()+".pdf")
		if err := s.blobs.Store(ctx, key, f.Data); err != nil {
			return fmt.Errorf("stage upload: %w", err)
		}
		keys = append(keys, key)

		p, err := s.blobs.Path(ctx, key)
		if err != nil {
			return fmt.Errorf("resolve upload: %w", err)
		}
		paths = append(paths, p)
	}

	return fn(paths)
}

func (s *service) fail(op string, err error) error {
	s.logger.Error("document operation failed", "op", op, "error", err)
	if errors.Is(err, toolkit.ErrInvalidInput) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func zipFiles(paths []string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read page: %w", err)
		}
		w, err := zw.Create(filepath.Base(p))
		if err != nil {
			return nil, fmt.Errorf("add page: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("write page: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}
