package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound matches LoadErrors of kind FileNotFound.
	ErrFileNotFound = errors.New("file not found")
	// ErrParse matches LoadErrors of kind ParseError.
	ErrParse = errors.New("parse error")
	// ErrUnknownColumn is returned when a column name is absent from a dataset.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNotNumeric is returned when a numeric operation targets a text column.
	ErrNotNumeric = errors.New("column is not numeric")
)

// LoadErrorKind classifies loader failures.
type LoadErrorKind int

const (
	FileNotFound LoadErrorKind = iota + 1
	ParseError
)

func (k LoadErrorKind) String() string {
	switch k {
	case FileNotFound:
		return "file_not_found"
	case ParseError:
		return "parse_error"
	default:
		return "unknown"
	}
}

// LoadError reports why a source could not be turned into a Dataset.
type LoadError struct {
	Kind   LoadErrorKind
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	prefix := "file not found"
	if e.Kind == ParseError {
		prefix = "parse error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Source, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Source)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is lets errors.Is match the ErrFileNotFound and ErrParse sentinels.
func (e *LoadError) Is(target error) bool {
	switch target {
	case ErrFileNotFound:
		return e.Kind == FileNotFound
	case ErrParse:
		return e.Kind == ParseError
	}
	return false
}

// EntryError reports an invalid manual entry point.
type EntryError struct {
	Point  int // 1-based; 0 when the error concerns the whole entry
	Field  string
	Reason string
}

func (e *EntryError) Error() string {
	if e.Point == 0 {
		return fmt.Sprintf("invalid manual entry: %s", e.Reason)
	}
	return fmt.Sprintf("invalid manual entry: point %d: %s %s", e.Point, e.Field, e.Reason)
}

func unknownColumn(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}
