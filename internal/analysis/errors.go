package analysis

import (
	"errors"
	"fmt"
)

// AggregationErrorKind classifies aggregation failures.
type AggregationErrorKind int

const (
	NoNumericColumns AggregationErrorKind = iota + 1
	UnknownColumn
)

func (k AggregationErrorKind) String() string {
	switch k {
	case NoNumericColumns:
		return "no_numeric_columns"
	case UnknownColumn:
		return "unknown_column"
	default:
		return "unknown"
	}
}

var (
	ErrNoNumericColumns = errors.New("no numeric columns")
	ErrUnknownColumn    = errors.New("unknown column")
)

// AggregationError reports a statistic that cannot be computed for a dataset.
type AggregationError struct {
	Kind   AggregationErrorKind
	Column string
}

func (e *AggregationError) Error() string {
	if e.Kind == UnknownColumn {
		return fmt.Sprintf("aggregation error: unknown column %q", e.Column)
	}
	return "aggregation error: no numeric columns found in the dataset"
}

func (e *AggregationError) Is(target error) bool {
	switch target {
	case ErrNoNumericColumns:
		return e.Kind == NoNumericColumns
	case ErrUnknownColumn:
		return e.Kind == UnknownColumn
	}
	return false
}
