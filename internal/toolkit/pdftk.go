package toolkit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	burstPattern = "page_%02d.pdf"
	burstDocData = "doc_data.txt"
)

type pdftk struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewPdftk creates a Gateway that shells out to the pdftk binary.
// cfg must be finalized.
func NewPdftk(cfg *Config, logger *slog.Logger) Gateway {
	p := &pdftk{
		binary:  cfg.Binary,
		timeout: cfg.TimeoutDuration(),
		logger:  logger.With("system", "toolkit"),
	}

	if _, err := exec.LookPath(p.binary); err != nil {
		p.logger.Warn("pdftk binary not resolvable", "binary", p.binary, "error", err)
	}

	return p
}

func (p *pdftk) Fields(ctx context.Context, doc string) (string, error) {
	out, err := p.run(ctx, "dump_data_fields", nil, doc, "dump_data_fields_utf8")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (p *pdftk) Metadata(ctx context.Context, doc string) (string, error) {
	out, err := p.run(ctx, "dump_data", nil, doc, "dump_data_utf8")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (p *pdftk) FillForm(ctx context.Context, doc string, values map[string]string, opts FillOptions, output string) ([]byte, error) {
	xfdf, err := encodeXFDF(values)
	if err != nil {
		return nil, &Error{Op: "fill_form", Err: fmt.Errorf("%w: encode xfdf: %v", ErrInvalidInput, err)}
	}

	args := []string{doc, "fill_form", "-", "output", outputArg(output)}
	if opts.NeedAppearances {
		args = append(args, "need_appearances")
	}
	if opts.Flatten {
		args = append(args, "flatten")
	}

	return p.produce(ctx, "fill_form", xfdf, output, args...)
}

func (p *pdftk) Merge(ctx context.Context, docs []string, output string) ([]byte, error) {
	if len(docs) == 0 {
		return nil, &Error{Op: "cat", Err: fmt.Errorf("%w: no documents to merge", ErrInvalidInput)}
	}
	return p.produce(ctx, "cat", nil, output, MergeArgs(docs, output)...)
}

func (p *pdftk) Burst(ctx context.Context, doc, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, &Error{Op: "burst", Err: fmt.Errorf("create output dir: %w", err)}
	}

	if _, err := p.run(ctx, "burst", nil, doc, "burst", "output", filepath.Join(outputDir, burstPattern)); err != nil {
		return nil, err
	}

	os.Remove(filepath.Join(outputDir, burstDocData))

	pages, err := filepath.Glob(filepath.Join(outputDir, "page_*.pdf"))
	if err != nil {
		return nil, &Error{Op: "burst", Err: err}
	}

	slices.SortFunc(pages, func(a, b string) int {
		return pageIndex(a) - pageIndex(b)
	})

	return pages, nil
}

func (p *pdftk) Encrypt(ctx context.Context, doc, userPassword, ownerPassword, output string) ([]byte, error) {
	if userPassword == "" {
		return nil, &Error{Op: "encrypt", Err: fmt.Errorf("%w: user password required", ErrInvalidInput)}
	}

	args := []string{doc, "output", outputArg(output), "user_pw", userPassword}
	if ownerPassword != "" {
		args = append(args, "owner_pw", ownerPassword)
	}
	args = append(args, "encrypt_128bit")

	return p.produce(ctx, "encrypt", nil, output, args...)
}

func (p *pdftk) Decrypt(ctx context.Context, doc, password, output string) ([]byte, error) {
	return p.produce(ctx, "decrypt", nil, output, doc, "input_pw", password, "output", outputArg(output))
}

func (p *pdftk) Rotate(ctx context.Context, doc, pages string, rotation Rotation, output string) ([]byte, error) {
	if pages == "" {
		pages = "1-end"
	}
	return p.produce(ctx, "rotate", nil, output, doc, "rotate", pages+string(rotation), "output", outputArg(output))
}

// MergeArgs builds the cat arguments for docs: one input handle per
// document followed by a full page range for each handle, in input order.
func MergeArgs(docs []string, output string) []string {
	args := make([]string, 0, len(docs)*2+3)
	ranges := make([]string, 0, len(docs))

	for i, doc := range docs {
		h := handle(i)
		args = append(args, h+"="+doc)
		ranges = append(ranges, h+"1-end")
	}

	args = append(args, "cat")
	args = append(args, ranges...)
	return append(args, "output", outputArg(output))
}

// produce runs a document-producing command. Bytes are returned only when
// output is empty and the document was streamed to stdout.
func (p *pdftk) produce(ctx context.Context, op string, stdin []byte, output string, args ...string) ([]byte, error) {
	out, err := p.run(ctx, op, stdin, args...)
	if err != nil {
		return nil, err
	}
	if output != "" {
		return nil, nil
	}
	return out, nil
}

func (p *pdftk) run(ctx context.Context, op string, stdin []byte, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	start := time.Now()
	p.logger.Debug("pdftk started", "op", op)

	if err := cmd.Run(); err != nil {
		tkErr := &Error{Op: op, Stderr: strings.TrimSpace(stderr.String()), Err: classify(ctx, err)}
		p.logger.Error("pdftk failed",
			"op", op,
			"error", err,
			"stderr", tkErr.Stderr,
			"duration", time.Since(start),
		)
		return nil, tkErr
	}

	p.logger.Debug("pdftk completed", "op", op, "duration", time.Since(start))
	return stdout.Bytes(), nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrBinaryNotFound, err)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrProcess, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("%w: exit status %d", ErrProcess, exitErr.ExitCode())
	}
	return fmt.Errorf("%w: %v", ErrProcess, err)
}

func outputArg(output string) string {
	if output == "" {
		return "-"
	}
	return output
}

// handle returns the pdftk input handle for index i: A..Z, then AA, AB, ...
func handle(i int) string {
	var b []byte
	for i++; i > 0; i = (i - 1) / 26 {
		b = append([]byte{byte('A' + (i-1)%26)}, b...)
	}
	return string(b)
}

func pageIndex(path string) int {
	name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "page_"), ".pdf")
	n, err := strconv.Atoi(name)
	if err != nil {
		return 0
	}
	return n
}
