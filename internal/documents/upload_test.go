package documents_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/pdf-editor/internal/documents"
	"github.com/JaimeStill/pdf-editor/internal/pdftest"
)

func TestValidatePDF(t *testing.T) {
	count, err := documents.ValidatePDF(pdftest.Document(3))
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = documents.ValidatePDF([]byte("hello world"))
	assert.ErrorIs(t, err, documents.ErrInvalidFile)

	_, err = documents.ValidatePDF([]byte("%PDF-1.7\ngarbage"))
	assert.ErrorIs(t, err, documents.ErrInvalidFile)
}

func TestReadPDF(t *testing.T) {
	req := pdftest.MultipartRequest(t, "/pdf/info", []pdftest.Part{
		{Field: "pdf_file", Filename: "form.pdf", Data: pdftest.Document(2)},
	}, nil)

	file, err := documents.ReadPDF(req, "pdf_file", 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "form.pdf", file.Filename)
	assert.Equal(t, 2, file.PageCount)
}

func TestReadPDF_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     func(t *testing.T) *http.Request
		maxSize int64
		want    error
	}{
		{
			name: "missing field",
			req: func(t *testing.T) *http.Request {
				return pdftest.MultipartRequest(t, "/", nil, map[string]string{"other": "x"})
			},
			maxSize: 1 << 20,
			want:    documents.ErrInvalidFile,
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
			},
			maxSize: 1 << 20,
			want:    documents.ErrInvalidFile,
		},
		{
			name: "not a pdf",
			req: func(t *testing.T) *http.Request {
				return pdftest.MultipartRequest(t, "/", []pdftest.Part{
					{Field: "pdf_file", Filename: "a.txt", Data: []byte("plain text")},
				}, nil)
			},
			maxSize: 1 << 20,
			want:    documents.ErrInvalidFile,
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return pdftest.MultipartRequest(t, "/", []pdftest.Part{
					{Field: "pdf_file", Filename: "a.pdf", Data: pdftest.Document(1)},
				}, nil)
			},
			maxSize: 16,
			want:    documents.ErrFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := documents.ReadPDF(tt.req(t), "pdf_file", tt.maxSize)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadPDF_BodyLimit(t *testing.T) {
	req := pdftest.MultipartRequest(t, "/", []pdftest.Part{
		{Field: "pdf_file", Filename: "a.pdf", Data: make([]byte, 3<<20)},
	}, nil)
	rec := httptest.NewRecorder()

	documents.LimitBody(rec, req, 1024, 1)

	_, err := documents.ReadPDF(req, "pdf_file", 1024)
	assert.ErrorIs(t, err, documents.ErrFileTooLarge)
}

func TestReadPDFs_Order(t *testing.T) {
	req := pdftest.MultipartRequest(t, "/", []pdftest.Part{
		{Field: "pdf_files", Filename: "first.pdf", Data: pdftest.Document(1)},
		{Field: "pdf_files", Filename: "second.pdf", Data: pdftest.Document(2)},
	}, nil)

	files, err := documents.ReadPDFs(req, "pdf_files", 1<<20)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "first.pdf", files[0].Filename)
	assert.Equal(t, 2, files[1].PageCount)
}

func TestReadPDFs_BracketName(t *testing.T) {
	req := pdftest.MultipartRequest(t, "/", []pdftest.Part{
		{Field: "pdf_files[]", Filename: "a.pdf", Data: pdftest.Document(1)},
	}, nil)

	files, err := documents.ReadPDFs(req, "pdf_files", 1<<20)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{documents.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{documents.ErrInvalidFile, http.StatusBadRequest},
		{documents.ErrInvalidInput, http.StatusBadRequest},
		{errors.New("pdftk exploded"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, documents.MapHTTPStatus(tt.err), tt.err.Error())
	}

	assert.Equal(t, "pdf processing failed", documents.PublicMessage(errors.New("stderr detail")))
}
