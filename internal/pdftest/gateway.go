package pdftest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JaimeStill/pdf-editor/internal/toolkit"
)

// Gateway is a testify mock of toolkit.Gateway.
type Gateway struct {
	mock.Mock
}

var _ toolkit.Gateway = (*Gateway)(nil)

func (g *Gateway) Fields(ctx context.Context, doc string) (string, error) {
	args := g.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

func (g *Gateway) Metadata(ctx context.Context, doc string) (string, error) {
	args := g.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

func (g *Gateway) FillForm(ctx context.Context, doc string, values map[string]string, opts toolkit.FillOptions, output string) ([]byte, error) {
	args := g.Called(ctx, doc, values, opts, output)
	return bytesArg(args, 0), args.Error(1)
}

func (g *Gateway) Merge(ctx context.Context, docs []string, output string) ([]byte, error) {
	args := g.Called(ctx, docs, output)
	return bytesArg(args, 0), args.Error(1)
}

func (g *Gateway) Burst(ctx context.Context, doc, outputDir string) ([]string, error) {
	args := g.Called(ctx, doc, outputDir)
	if fn, ok := args.Get(0).(func(context.Context, string, string) []string); ok {
		return fn(ctx, doc, outputDir), args.Error(1)
	}
	pages, _ := args.Get(0).([]string)
	return pages, args.Error(1)
}

func (g *Gateway) Encrypt(ctx context.Context, doc, userPassword, ownerPassword, output string) ([]byte, error) {
	args := g.Called(ctx, doc, userPassword, ownerPassword, output)
	return bytesArg(args, 0), args.Error(1)
}

func (g *Gateway) Decrypt(ctx context.Context, doc, password, output string) ([]byte, error) {
	args := g.Called(ctx, doc, password, output)
	return bytesArg(args, 0), args.Error(1)
}

func (g *Gateway) Rotate(ctx context.Context, doc, pages string, rotation toolkit.Rotation, output string) ([]byte, error) {
	args := g.Called(ctx, doc, pages, rotation, output)
	return bytesArg(args, 0), args.Error(1)
}

func bytesArg(args mock.Arguments, i int) []byte {
	b, _ := args.Get(i).([]byte)
	return b
}
