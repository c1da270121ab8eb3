package editor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/pdf-editor/internal/toolkit"
)

const partialSuffix = ".partial"

// Applier builds output documents by applying a session's edits to its base
// document through the toolkit gateway.
type Applier struct {
	gateway toolkit.Gateway
	fill    toolkit.FillOptions
	batch   bool
	logger  *slog.Logger
}

func NewApplier(gateway toolkit.Gateway, fill toolkit.FillOptions, batch bool, logger *slog.Logger) *Applier {
	return &Applier{
		gateway: gateway,
		fill:    fill,
		batch:   batch,
		logger:  logger.With("system", "applier"),
	}
}

// Apply writes the result of applying edits to base at output. The base
// document is never modified, and output is only replaced when every edit
// succeeds.
func (a *Applier) Apply(ctx context.Context, base string, edits Edits, output string) error {
	a.logger.Debug("applying edits", "base", base, "output", output, "edits", len(edits), "batch", a.batch)

	partial := output + partialSuffix
	defer os.Remove(partial)

	var err error
	if a.batch {
		err = a.applyBatch(ctx, base, edits, partial)
	} else {
		err = a.applyEach(ctx, base, edits, partial)
	}
	if err != nil {
		a.logger.Error("edit application failed", "base", base, "error", err)
		return err
	}

	if err := os.Rename(partial, output); err != nil {
		return fmt.Errorf("finalize output: %w", err)
	}

	a.logger.Info("edits applied", "output", output, "edits", len(edits))
	return nil
}

func (a *Applier) applyBatch(ctx context.Context, base string, edits Edits, partial string) error {
	first := -1
	for i, edit := range edits {
		switch e := edit.(type) {
		case FormFieldEdit:
			if first < 0 {
				first = i
			}
		case TextAnnotationEdit, ShapeEdit:
			a.logger.Debug("edit type not rendered, passing through", "index", i, "type", e.EditType())
		case UnknownEdit:
			a.logger.Warn("unknown edit type skipped", "index", i, "type", e.Type)
		}
	}

	if first < 0 {
		return copyFile(base, partial)
	}

	if _, err := a.gateway.FillForm(ctx, base, edits.FormValues(), a.fill, partial); err != nil {
		return &ApplicationError{Index: first, Type: TypeFormField, Err: err}
	}
	return nil
}

// applyEach replays edits one at a time, feeding each step's output into
// the next.
func (a *Applier) applyEach(ctx context.Context, base string, edits Edits, partial string) error {
	current := base
	step := partial + ".step"
	defer os.Remove(step)

	for i, edit := range edits {
		switch e := edit.(type) {
		case FormFieldEdit:
			values := map[string]string{e.FieldName: e.Value}
			if _, err := a.gateway.FillForm(ctx, current, values, a.fill, step); err != nil {
				return &ApplicationError{Index: i, Type: TypeFormField, Err: err}
			}
			if err := os.Rename(step, partial); err != nil {
				return &ApplicationError{Index: i, Type: TypeFormField, Err: err}
			}
			current = partial
		case TextAnnotationEdit, ShapeEdit:
			a.logger.Debug("edit type not rendered, passing through", "index", i, "type", e.EditType())
		case UnknownEdit:
			a.logger.Warn("unknown edit type skipped", "index", i, "type", e.Type)
		}
	}

	if current == base {
		return copyFile(base, partial)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDocumentMissing, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy document: %w", err)
	}
	return out.Close()
}
