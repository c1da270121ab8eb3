package documents

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JaimeStill/pdf-editor/internal/toolkit"
	"github.com/JaimeStill/pdf-editor/pkg/handlers"
	"github.com/JaimeStill/pdf-editor/pkg/routes"
)

const (
	pdfContentType = "application/pdf"
	zipContentType = "application/zip"

	formDataField = "form_data"
)

// Handler provides HTTP endpoints for document operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a document handler with the specified upload limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "documents"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the document endpoint route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/pdf",
		Tags:        []string{"PDF"},
		Description: "Stateless PDF operations",
		Schemas:     Spec.Schemas(),
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/form-fields", Handler: h.FormFields, OpenAPI: Spec.FormFields},
			{Method: "POST", Pattern: "/fill-form", Handler: h.FillForm, OpenAPI: Spec.FillForm},
			{Method: "POST", Pattern: "/merge", Handler: h.Merge, OpenAPI: Spec.Merge},
			{Method: "POST", Pattern: "/split", Handler: h.Split, OpenAPI: Spec.Split},
			{Method: "POST", Pattern: "/info", Handler: h.Info, OpenAPI: Spec.Info},
			{Method: "POST", Pattern: "/encrypt", Handler: h.Encrypt, OpenAPI: Spec.Encrypt},
			{Method: "POST", Pattern: "/decrypt", Handler: h.Decrypt, OpenAPI: Spec.Decrypt},
			{Method: "POST", Pattern: "/rotate", Handler: h.Rotate, OpenAPI: Spec.Rotate},
		},
	}
}

func (h *Handler) FormFields(w http.ResponseWriter, r *http.Request) {
	file, ok := h.readFile(w, r)
	if !ok {
		return
	}

	fields, err := h.sys.FormFields(r.Context(), file)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"fields":  fields,
		"message": "Form fields extracted successfully",
	})
}

func (h *Handler) FillForm(w http.ResponseWriter, r *http.Request) {
	file, ok := h.readFile(w, r)
	if !ok {
		return
	}

	values, err := formValues(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	out, err := h.sys.Fill(r.Context(), file, values)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondFile(w, pdfContentType, "filled-form.pdf", out)
}

func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	LimitBody(w, r, h.maxUploadSize, maxMergeFiles)

	files, err := ReadPDFs(r, "pdf_files", h.maxUploadSize)
	if err != nil {
		h.respondError(w, err)
		return
	}

	out, err := h.sys.Merge(r.Context(), files)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondFile(w, pdfContentType, "merged.pdf", out)
}

func (h *Handler) Split(w http.ResponseWriter, r *http.Request) {
	file, ok := h.readFile(w, r)
	if !ok {
		return
	}

	out, err := h.sys.Split(r.Context(), file)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondFile(w, zipContentType, "split_pages.zip", out)
}

func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	file, ok := h.readFile(w, r)
	if !ok {
		return
	}

	info, err := h.sys.Info(r.Context(), file)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"info":    info,
		"message": "PDF information retrieved successfully",
	})
}

func (h *Handler) Encrypt(w http.ResponseWriter, r *http.Request) {
	file, ok := h.readFile(w, r)
	if !ok {
		return
	}

	out, err := h.sys.Encrypt(r.Context(), file, r.FormValue("user_password"), r.FormValue("owner_password"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondFile(w, pdfContentType, "encrypted.pdf", out)
}

func (h *Handler) Decrypt(w http.ResponseWriter, r *http.Request) {
	file, ok := h.readFile(w, r)
	if !ok {
		return
	}

	out, err := h.sys.Decrypt(r.Context(), file, r.FormValue("password"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondFile(w, pdfContentType, "decrypted.pdf", out)
}

func (h *Handler) Rotate(w http.ResponseWriter, r *http.Request) {
	file, ok := h.readFile(w, r)
	if !ok {
		return
	}

	rotation, err := toolkit.ParseRotation(r.FormValue("rotation"))
	if err != nil {
		h.respondError(w, fmt.Errorf("%w: %v", ErrInvalidInput, err))
		return
	}

	out, err := h.sys.Rotate(r.Context(), file, rotation, r.FormValue("pages"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondFile(w, pdfContentType, "rotated.pdf", out)
}

const maxMergeFiles = 20

func (h *Handler) readFile(w http.ResponseWriter, r *http.Request) (*File, bool) {
	LimitBody(w, r, h.maxUploadSize, 1)

	file, err := ReadPDF(r, "pdf_file", h.maxUploadSize)
	if err != nil {
		h.respondError(w, err)
		return nil, false
	}
	return file, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	handlers.RespondErrorMessage(w, h.logger, MapHTTPStatus(err), err, PublicMessage(err))
}

// formValues reads form_data either as a JSON object or as bracketed
// form_data[name] fields.
func formValues(r *http.Request) (map[string]string, error) {
	values := map[string]string{}

	if raw := r.FormValue(formDataField); raw != "" {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return nil, fmt.Errorf("%w: form_data must be a JSON object", ErrInvalidInput)
		}
		for name, v := range decoded {
			values[name] = stringify(v)
		}
		return values, nil
	}

	prefix := formDataField + "["
	for key, vs := range r.MultipartForm.Value {
		if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "]") || len(vs) == 0 {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(key, prefix), "]")
		if name != "" {
			values[name] = vs[0]
		}
	}
	return values, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "Yes"
		}
		return "Off"
	default:
		return fmt.Sprint(t)
	}
}
