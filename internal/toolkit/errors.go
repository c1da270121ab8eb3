package toolkit

import (
	"errors"
	"fmt"
)

var (
	ErrProcess        = errors.New("pdftk process failed")
	ErrTimeout        = errors.New("pdftk timed out")
	ErrBinaryNotFound = errors.New("pdftk binary not found")
	ErrInvalidInput   = errors.New("invalid toolkit input")
)

// Error reports a failed toolkit operation. Stderr carries the process
// diagnostics for logging and is never part of Error().
type Error struct {
	Op     string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pdftk %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
