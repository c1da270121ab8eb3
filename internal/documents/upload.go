package documents

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// multipartOverhead is the allowance for form fields and part headers on
// top of the file payload.
const multipartOverhead = 1 << 20

var pdfMagic = []byte("%PDF")

// File is a validated PDF upload.
type File struct {
	Filename  string
	Data      []byte
	PageCount int
}

// LimitBody caps the request body for a request carrying up to files
// uploads of maxSize bytes each.
func LimitBody(w http.ResponseWriter, r *http.Request, maxSize int64, files int) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize*int64(files)+multipartOverhead)
}

// ReadPDF reads and validates the single PDF in form field name.
func ReadPDF(r *http.Request, name string, maxSize int64) (*File, error) {
	if err := parseForm(r, maxSize); err != nil {
		return nil, err
	}

	file, header, err := r.FormFile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is required", ErrInvalidFile, name)
	}
	defer file.Close()

	return readPart(file, header, maxSize)
}

// ReadPDFs reads and validates every PDF in form field name, in order.
func ReadPDFs(r *http.Request, name string, maxSize int64) ([]*File, error) {
	if err := parseForm(r, maxSize); err != nil {
		return nil, err
	}

	headers := r.MultipartForm.File[name]
	if len(headers) == 0 {
		headers = r.MultipartForm.File[name+"[]"]
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: %s is required", ErrInvalidFile, name)
	}

	files := make([]*File, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrInvalidFile, header.Filename, err)
		}
		pdf, err := readPart(f, header, maxSize)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, pdf)
	}
	return files, nil
}

// ValidatePDF checks the PDF signature and that the document parses.
// It returns the page count.
func ValidatePDF(data []byte) (int, error) {
	if !bytes.HasPrefix(data, pdfMagic) {
		return 0, fmt.Errorf("%w: not a PDF document", ErrInvalidFile)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	count, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("%w: unreadable PDF: %v", ErrInvalidFile, err)
	}
	return count, nil
}

func parseForm(r *http.Request, maxSize int64) error {
	if r.MultipartForm != nil {
		return nil
	}
	if err := r.ParseMultipartForm(maxSize + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrFileTooLarge
		}
		return fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return nil
}

func readPart(file multipart.File, header *multipart.FileHeader, maxSize int64) (*File, error) {
	if header.Size > maxSize {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidFile, header.Filename, err)
	}
	if int64(len(data)) > maxSize {
		return nil, ErrFileTooLarge
	}

	count, err := ValidatePDF(data)
	if err != nil {
		return nil, err
	}

	return &File{
		Filename:  header.Filename,
		Data:      data,
		PageCount: count,
	}, nil
}
