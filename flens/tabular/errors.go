package tabular

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrIO                = errors.New("io error")
	ErrParse             = errors.New("parse error")
	ErrColumnNotFound    = errors.New("column not found")
)

// UnsupportedFormatError is returned when no reader is registered for an
// extension.
type UnsupportedFormatError struct {
	FileName  string
	Extension string
	Path      string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type %s, %s, %s", e.FileName, e.Extension, e.Path)
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// IOError wraps a filesystem failure for one path.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error        { return e.Err }
func (e *IOError) Is(target error) bool { return target == ErrIO }

// ParseError reports content that is malformed for its declared format.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error        { return e.Err }
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// ColumnNotFoundError reports a column absent from a file's header.
type ColumnNotFoundError struct {
	Column string
	Path   string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found in %s", e.Column, e.Path)
}

func (e *ColumnNotFoundError) Is(target error) bool { return target == ErrColumnNotFound }
