package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/JaimeStill/pdf-editor/internal/documents"
	"github.com/JaimeStill/pdf-editor/internal/images"
	"github.com/JaimeStill/pdf-editor/pkg/handlers"
	"github.com/JaimeStill/pdf-editor/pkg/routes"
)

const (
	pdfContentType = "application/pdf"
	maxJSONBody    = 4 << 20
)

// Handler provides HTTP endpoints for editing sessions.
type Handler struct {
	sys           System
	images        images.System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates an editor handler with the specified upload limit.
func NewHandler(sys System, img images.System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		images:        img,
		logger:        logger.With("handler", "editor"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the editor endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/pdf-editor",
		Tags:        []string{"Editor"},
		Description: "Session-based PDF editing",
		Schemas:     Spec.Schemas(),
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/load", Handler: h.Load, OpenAPI: Spec.Load},
			{Method: "GET", Pattern: "/data", Handler: h.Data, OpenAPI: Spec.Data},
			{Method: "POST", Pattern: "/save", Handler: h.Save, OpenAPI: Spec.Save},
			{Method: "GET", Pattern: "/preview", Handler: h.Preview, OpenAPI: Spec.Preview},
			{Method: "POST", Pattern: "/export", Handler: h.Export, OpenAPI: Spec.Export},
			{Method: "GET", Pattern: "/form-fields", Handler: h.FormFields, OpenAPI: Spec.FormFields},
			{Method: "POST", Pattern: "/update-field", Handler: h.UpdateField, OpenAPI: Spec.UpdateField},
			{Method: "DELETE", Pattern: "/session", Handler: h.DeleteSession, OpenAPI: Spec.DeleteSession},
			{Method: "GET", Pattern: "/sessions", Handler: h.Sessions, OpenAPI: Spec.Sessions},
			{Method: "GET", Pattern: "/page-image", Handler: h.PageImage, OpenAPI: Spec.PageImage},
		},
	}
}

type loadResponse struct {
	Success bool `json:"success"`
	*LoadResult
	Message string `json:"message"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	documents.LimitBody(w, r, h.maxUploadSize, 1)

	file, err := documents.ReadPDF(r, "pdf_file", h.maxUploadSize)
	if err != nil {
		handlers.RespondErrorMessage(w, h.logger, documents.MapHTTPStatus(err), err, documents.PublicMessage(err))
		return
	}

	result, err := h.sys.Load(r.Context(), Upload{Filename: file.Filename, Data: file.Data})
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, loadResponse{
		Success:    true,
		LoadResult: result,
		Message:    "PDF loaded successfully",
	})
}

func (h *Handler) Data(w http.ResponseWriter, r *http.Request) {
	id, err := ParseSessionID(r.URL.Query().Get("session_id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	docPath, err := h.sys.Document(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondPDF(w, docPath)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if !h.decode(w, r, &req) {
		return
	}

	id, err := ParseSessionID(req.SessionID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.sys.SaveEdits(r.Context(), id, req.Edits); err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Edits saved successfully"})
}

func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	id, err := ParseSessionID(r.URL.Query().Get("session_id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	out, err := h.sys.Preview(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	defer out.Cleanup()

	h.respondPDF(w, out.Path)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if !h.decode(w, r, &req) {
		return
	}

	id, err := ParseSessionID(req.SessionID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	out, err := h.sys.Export(r.Context(), id, req.Filename)
	if err != nil {
		h.respondError(w, err)
		return
	}
	defer out.Cleanup()

	data, err := os.ReadFile(out.Path)
	if err != nil {
		h.respondError(w, fmt.Errorf("read export: %w", err))
		return
	}

	handlers.RespondFile(w, pdfContentType, out.Filename, data)
}

func (h *Handler) FormFields(w http.ResponseWriter, r *http.Request) {
	id, err := ParseSessionID(r.URL.Query().Get("session_id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	fields, err := h.sys.FormFields(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"fields":  fields,
	})
}

func (h *Handler) UpdateField(w http.ResponseWriter, r *http.Request) {
	var req UpdateFieldRequest
	if !h.decode(w, r, &req) {
		return
	}

	id, err := ParseSessionID(req.SessionID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.sys.UpdateFormField(r.Context(), id, req.FieldName, req.FieldValue); err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Form field updated successfully"})
}

// DeleteSession reads session_id from a JSON body, falling back to the
// query string when the body is empty.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, fmt.Errorf("%w: invalid JSON body", ErrValidation))
		return
	}
	if req.SessionID == "" {
		req.SessionID = r.URL.Query().Get("session_id")
	}

	id, err := ParseSessionID(req.SessionID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Session deleted successfully"})
}

func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sys.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"sessions": sessions,
	})
}

func (h *Handler) PageImage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	id, err := ParseSessionID(q.Get("session_id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	opts, err := renderOptions(q.Get("page"), q.Get("format"), q.Get("dpi"), q.Get("quality"))
	if err != nil {
		h.respondImageError(w, err)
		return
	}

	docPath, err := h.sys.Document(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	data, contentType, err := h.images.Render(r.Context(), docPath, opts)
	if err != nil {
		h.respondImageError(w, err)
		return
	}

	handlers.RespondBytes(w, contentType, data)
}

func renderOptions(page, format, dpi, quality string) (images.RenderOptions, error) {
	var opts images.RenderOptions

	f, err := images.ParseImageFormat(format)
	if err != nil {
		return opts, err
	}
	opts.Format = f

	if opts.Page, err = intParam("page", page, 1); err != nil {
		return opts, err
	}
	if opts.DPI, err = intParam("dpi", dpi, images.DefaultDPI); err != nil {
		return opts, err
	}
	if quality != "" {
		q, err := intParam("quality", quality, 0)
		if err != nil {
			return opts, err
		}
		opts.Quality = &q
	}

	return opts, nil
}

func intParam(name, value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", images.ErrInvalidRenderOption, name)
	}
	return n, nil
}

// decode reads a JSON request body into req and validates it.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.respondError(w, fmt.Errorf("%w: invalid JSON body", ErrValidation))
		return false
	}
	if err := Validate(req); err != nil {
		h.respondError(w, err)
		return false
	}
	return true
}

func (h *Handler) respondPDF(w http.ResponseWriter, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: %v", ErrDocumentMissing, err)
		}
		h.respondError(w, err)
		return
	}
	handlers.RespondBytes(w, pdfContentType, data)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	handlers.RespondErrorMessage(w, h.logger, MapHTTPStatus(err), err, PublicMessage(err))
}

func (h *Handler) respondImageError(w http.ResponseWriter, err error) {
	status := images.MapHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "pdf processing failed"
	}
	handlers.RespondErrorMessage(w, h.logger, status, err, message)
}
