package editor

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/pdf-editor/internal/toolkit"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusSaved    Status = "saved"
	StatusExported Status = "exported"
)

// Session is an editing session over an immutable base document.
// PDFPath is a storage key, not a filesystem path.
type Session struct {
	ID           uuid.UUID `json:"session_id"`
	PDFPath      string    `json:"pdf_path"`
	OriginalName string    `json:"original_name"`
	Edits        Edits     `json:"edits"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	Timestamp    time.Time `json:"timestamp"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Summary describes a session in listings.
type Summary struct {
	SessionID uuid.UUID `json:"session_id"`
	PDFPath   string    `json:"pdf_path"`
	Timestamp time.Time `json:"timestamp"`
	EditCount int       `json:"edit_count"`
}

func (s *Session) Summary() Summary {
	return Summary{
		SessionID: s.ID,
		PDFPath:   s.PDFPath,
		Timestamp: s.Timestamp,
		EditCount: len(s.Edits),
	}
}

// Upload is a PDF submitted for editing.
type Upload struct {
	Filename string
	Data     []byte
}

// LoadResult describes a newly created session.
type LoadResult struct {
	SessionID       uuid.UUID       `json:"session_id"`
	PDFPath         string          `json:"pdf_path"`
	OriginalName    string          `json:"original_name"`
	PageCount       int             `json:"page_count"`
	EditableRegions EditableRegions `json:"editable_regions"`
	BackupCreated   bool            `json:"backup_created"`
}

// EditableRegions lists what a client may edit on the loaded document.
type EditableRegions struct {
	FormFields  []RegionField    `json:"form_fields"`
	TextRegions []any            `json:"text_regions"`
	Metadata    toolkit.Metadata `json:"metadata"`
}

type RegionField struct {
	toolkit.FormField
	ID          string       `json:"id"`
	Editable    bool         `json:"editable"`
	Coordinates toolkit.Rect `json:"coordinates"`
}

// Output is a generated document on disk. Cleanup removes it once it has
// been delivered.
type Output struct {
	Path     string
	Filename string
	Cleanup  func()
}
