package images

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/image"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const pdfContentType = "application/pdf"

// System renders pages of PDF documents on disk.
type System interface {
	// Render returns the image bytes and content type of one page.
	Render(ctx context.Context, path string, opts RenderOptions) ([]byte, string, error)
}

type renderer struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) System {
	return &renderer{logger: logger.With("system", "images")}
}

func (r *renderer) Render(ctx context.Context, path string, opts RenderOptions) ([]byte, string, error) {
	if err := opts.Validate(); err != nil {
		return nil, "", err
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", ErrDocumentNotFound
		}
		return nil, "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	count, err := api.PageCountFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w: page count: %v", ErrRenderFailed, err)
	}
	if opts.Page > count {
		return nil, "", fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, opts.Page, count)
	}

	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	r.logger.Debug("rendering page", "path", path, "page", opts.Page, "format", opts.Format, "dpi", opts.DPI)

	doc, err := document.Open(path, pdfContentType)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	defer doc.Close()

	imgRenderer, err := image.NewImageMagickRenderer(opts.ToImageConfig())
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	page, err := doc.ExtractPage(opts.Page)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	data, err := page.ToImage(imgRenderer, nil)
	if err != nil {
		r.logger.Error("page render failed", "path", path, "page", opts.Page, "error", err)
		return nil, "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	contentType, err := opts.Format.MimeType()
	if err != nil {
		contentType = http.DetectContentType(data)
	}

	r.logger.Info("page rendered", "page", opts.Page, "format", opts.Format, "size", len(data))
	return data, contentType, nil
}
