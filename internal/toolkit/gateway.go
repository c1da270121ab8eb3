package toolkit

import (
	"context"
	"fmt"
	"strings"
)

// Gateway is the set of toolkit capabilities the service relies on.
// Operations that produce a document write it to output when output is
// non-empty and return nil bytes; with an empty output the document bytes
// are returned directly.
type Gateway interface {
	Fields(ctx context.Context, doc string) (string, error)
	Metadata(ctx context.Context, doc string) (string, error)
	FillForm(ctx context.Context, doc string, values map[string]string, opts FillOptions, output string) ([]byte, error)
	Merge(ctx context.Context, docs []string, output string) ([]byte, error)
	Burst(ctx context.Context, doc, outputDir string) ([]string, error)
	Encrypt(ctx context.Context, doc, userPassword, ownerPassword, output string) ([]byte, error)
	Decrypt(ctx context.Context, doc, password, output string) ([]byte, error)
	Rotate(ctx context.Context, doc, pages string, rotation Rotation, output string) ([]byte, error)
}

type FillOptions struct {
	Flatten         bool
	NeedAppearances bool
}

// Rotation is a pdftk page orientation: north, east, south, west, left,
// right or down.
type Rotation string

const (
	RotateNorth Rotation = "north"
	RotateEast  Rotation = "east"
	RotateSouth Rotation = "south"
	RotateWest  Rotation = "west"
	RotateLeft  Rotation = "left"
	RotateRight Rotation = "right"
	RotateDown  Rotation = "down"
)

var degreeRotations = map[string]Rotation{
	"0":   RotateNorth,
	"90":  RotateEast,
	"180": RotateSouth,
	"270": RotateWest,
}

// ParseRotation accepts a pdftk orientation name or 0, 90, 180 or 270 degrees.
func ParseRotation(s string) (Rotation, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if r, ok := degreeRotations[s]; ok {
		return r, nil
	}

	switch r := Rotation(s); r {
	case RotateNorth, RotateEast, RotateSouth, RotateWest, RotateLeft, RotateRight, RotateDown:
		return r, nil
	}

	return "", fmt.Errorf("%w: unsupported rotation %q", ErrInvalidInput, s)
}
