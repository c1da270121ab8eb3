package editor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-editor/internal/toolkit"
)

// System defines the session-based editing workflow: a base document is
// loaded once, edits accumulate against it, and previews or exports are
// produced by applying those edits to a fresh output file.
type System interface {
	Load(ctx context.Context, upload Upload) (*LoadResult, error)
	Document(ctx context.Context, id uuid.UUID) (string, error)
	SaveEdits(ctx context.Context, id uuid.UUID, edits Edits) error
	UpdateFormField(ctx context.Context, id uuid.UUID, field, value string) error
	Preview(ctx context.Context, id uuid.UUID) (*Output, error)
	Export(ctx context.Context, id uuid.UUID, filename string) (*Output, error)
	FormFields(ctx context.Context, id uuid.UUID) ([]toolkit.FormField, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]Summary, error)
	Reap(ctx context.Context, now time.Time) (int, error)
}
