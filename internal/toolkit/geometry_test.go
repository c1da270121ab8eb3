package toolkit_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/pdf-editor/internal/pdftest"
	"github.com/JaimeStill/pdf-editor/internal/toolkit"
)

func TestFieldGeometry(t *testing.T) {
	path := pdftest.WriteFile(t, "form.pdf", pdftest.Form(2,
		pdftest.Field{Name: "tenant", Page: 1, X: 72, Y: 700, W: 200, H: 20},
		pdftest.Field{Name: "signature", Page: 2, X: 100, Y: 120, W: 180, H: 30},
	))

	rects, err := toolkit.FieldGeometry(path)
	require.NoError(t, err)

	assert.Equal(t, toolkit.Rect{X: 72, Y: 700, Width: 200, Height: 20, Page: 1}, rects["tenant"])
	assert.Equal(t, toolkit.Rect{X: 100, Y: 120, Width: 180, Height: 30, Page: 2}, rects["signature"])
}

func TestFieldGeometry_NoForm(t *testing.T) {
	path := pdftest.WriteFile(t, "plain.pdf", pdftest.Document(1))

	rects, err := toolkit.FieldGeometry(path)
	require.NoError(t, err)

	assert.Empty(t, rects)
}

func TestFieldGeometry_Errors(t *testing.T) {
	_, err := toolkit.FieldGeometry(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)

	bad := pdftest.WriteFile(t, "bad.pdf", []byte("not a pdf"))
	_, err = toolkit.FieldGeometry(bad)
	assert.Error(t, err)
}
