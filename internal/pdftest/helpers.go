package pdftest

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/pdf-editor/pkg/storage"
)

// Logger discards all output.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Storage returns filesystem storage rooted in a temp directory.
func Storage(t testing.TB) storage.System {
	t.Helper()
	s, err := storage.New(&storage.Config{BasePath: t.TempDir()}, Logger())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	return s
}

// Part is one multipart file upload.
type Part struct {
	Field    string
	Filename string
	Data     []byte
}

// MultipartRequest builds a POST request carrying files and form values.
func MultipartRequest(t testing.TB, target string, files []Part, values map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for _, p := range files {
		w, err := mw.CreateFormFile(p.Field, p.Filename)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		w.Write(p.Data)
	}
	for k, v := range values {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
