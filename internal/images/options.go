package images

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
)

const (
	DefaultDPI = 150
	MinDPI     = 72
	MaxDPI     = 600
)

// RenderOptions specifies how a single page is rendered.
type RenderOptions struct {
	Page    int                  `json:"page"`
	Format  document.ImageFormat `json:"format"`
	DPI     int                  `json:"dpi"`
	Quality *int                 `json:"quality,omitempty"`
}

// Validate applies defaults and checks ranges. Page 0 means page 1; the
// upper page bound is checked against the document at render time.
func (o *RenderOptions) Validate() error {
	if o.Page == 0 {
		o.Page = 1
	} else if o.Page < 0 {
		return fmt.Errorf("%w: page must be positive", ErrPageOutOfRange)
	}

	format, err := ParseImageFormat(string(o.Format))
	if err != nil {
		return err
	}
	o.Format = format

	if o.DPI == 0 {
		o.DPI = DefaultDPI
	} else if o.DPI < MinDPI || o.DPI > MaxDPI {
		return fmt.Errorf("%w: dpi must be between %d and %d", ErrInvalidRenderOption, MinDPI, MaxDPI)
	}

	if o.Quality != nil && (*o.Quality < 1 || *o.Quality > 100) {
		return fmt.Errorf("%w: quality must be between 1 and 100", ErrInvalidRenderOption)
	}

	return nil
}

// ParseImageFormat accepts png, jpg or jpeg in any case. An empty string
// selects png.
func ParseImageFormat(s string) (document.ImageFormat, error) {
	if strings.TrimSpace(s) == "" {
		return document.PNG, nil
	}
	format, err := document.ParseImageFormat(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return "", fmt.Errorf("%w: format must be 'png' or 'jpg'", ErrInvalidRenderOption)
	}
	return format, nil
}

// ToImageConfig converts render options to document-context ImageConfig.
func (o RenderOptions) ToImageConfig() config.ImageConfig {
	cfg := config.ImageConfig{
		Format:  string(o.Format),
		DPI:     o.DPI,
		Options: map[string]any{"background": "white"},
	}

	if o.Quality != nil {
		cfg.Quality = *o.Quality
	} else if o.Format == document.JPEG {
		cfg.Quality = 90
	}

	return cfg
}
