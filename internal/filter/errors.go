package filter

import (
	"errors"
	"fmt"
)

// ErrorKind classifies filter failures.
type ErrorKind int

const (
	UnknownColumn ErrorKind = iota + 1
	KindMismatch
	InvalidExpression
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownColumn:
		return "unknown_column"
	case KindMismatch:
		return "kind_mismatch"
	case InvalidExpression:
		return "invalid_expression"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownColumn     = errors.New("unknown filter column")
	ErrKindMismatch      = errors.New("constraint does not fit column type")
	ErrInvalidExpression = errors.New("invalid filter expression")
)

// FilterError reports a filter that cannot be applied to a dataset.
type FilterError struct {
	Kind   ErrorKind
	Column string
	Detail string
}

func (e *FilterError) Error() string {
	msg := fmt.Sprintf("filter %q: %s", e.Column, e.sentinel().Error())
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is matches the package sentinels by kind.
func (e *FilterError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *FilterError) sentinel() error {
	switch e.Kind {
	case UnknownColumn:
		return ErrUnknownColumn
	case KindMismatch:
		return ErrKindMismatch
	default:
		return ErrInvalidExpression
	}
}
