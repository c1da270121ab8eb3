package handlers_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/pdf-editor/pkg/handlers"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRespondJSON(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		data     any
		wantBody string
	}{
		{"ok with map", http.StatusOK, map[string]string{"message": "hello"}, `{"message":"hello"}`},
		{
			"created with struct",
			http.StatusCreated,
			struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			}{1, "test"},
			`{"id":1,"name":"test"}`,
		},
		{"ok with slice", http.StatusOK, []int{1, 2, 3}, `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			handlers.RespondJSON(w, tt.status, tt.data)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want %q", ct, "application/json")
			}

			body, _ := io.ReadAll(resp.Body)
			var got, want any
			json.Unmarshal(body, &got)
			json.Unmarshal([]byte(tt.wantBody), &want)

			gotJSON, _ := json.Marshal(got)
			wantJSON, _ := json.Marshal(want)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("body = %s, want %s", gotJSON, wantJSON)
			}
		})
	}
}

func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()

	handlers.RespondError(w, discardLogger(), http.StatusNotFound, errors.New("session not found"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}

	var result map[string]string
	json.Unmarshal(w.Body.Bytes(), &result)
	if result["error"] != "session not found" {
		t.Errorf("error = %q, want %q", result["error"], "session not found")
	}
}

func TestRespondErrorMessage_HidesDetail(t *testing.T) {
	w := httptest.NewRecorder()
	err := errors.New("pdftk: exit status 1: Error: Unexpected Exception")

	handlers.RespondErrorMessage(w, discardLogger(), http.StatusInternalServerError, err, "pdf processing failed")

	var result map[string]string
	json.Unmarshal(w.Body.Bytes(), &result)
	if result["error"] != "pdf processing failed" {
		t.Errorf("error = %q, want %q", result["error"], "pdf processing failed")
	}
}

func TestRespondBytes(t *testing.T) {
	w := httptest.NewRecorder()

	handlers.RespondBytes(w, "application/pdf", []byte("%PDF-1.7"))

	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/pdf")
	}
	if cl := w.Header().Get("Content-Length"); cl != "8" {
		t.Errorf("Content-Length = %q, want %q", cl, "8")
	}
	if w.Header().Get("Content-Disposition") != "" {
		t.Error("inline response should not set Content-Disposition")
	}
	if w.Body.String() != "%PDF-1.7" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestRespondFile(t *testing.T) {
	w := httptest.NewRecorder()

	handlers.RespondFile(w, "application/pdf", "edited document.pdf", []byte("%PDF-1.7"))

	disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	if err != nil {
		t.Fatalf("parse Content-Disposition: %v", err)
	}
	if disposition != "attachment" {
		t.Errorf("disposition = %q, want attachment", disposition)
	}
	if params["filename"] != "edited document.pdf" {
		t.Errorf("filename = %q, want %q", params["filename"], "edited document.pdf")
	}
}
