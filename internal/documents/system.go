// Package documents provides stateless PDF operations over uploaded files:
// form inspection and filling, merge, split, metadata, encryption and
// rotation.
package documents

import (
	"context"

	"github.com/JaimeStill/pdf-editor/internal/toolkit"
)

// System defines the document operations. Each call stages its inputs in
// temporary storage, runs the toolkit, and removes the staged files.
type System interface {
	FormFields(ctx context.Context, file *File) ([]toolkit.FormField, error)
	Fill(ctx context.Context, file *File, values map[string]string) ([]byte, error)
	Merge(ctx context.Context, files []*File) ([]byte, error)
	Split(ctx context.Context, file *File) ([]byte, error)
	Info(ctx context.Context, file *File) (toolkit.Metadata, error)
	Encrypt(ctx context.Context, file *File, userPassword, ownerPassword string) ([]byte, error)
	Decrypt(ctx context.Context, file *File, password string) ([]byte, error)
	Rotate(ctx context.Context, file *File, rotation toolkit.Rotation, pages string) ([]byte, error)
}
