package filter

import (
	"math"
	"strconv"
	"strings"
)

// ParseExpr parses "column=lo:hi" into a range and "column=a|b|c" into a value
// set. Either range bound may be omitted for an open end.
func ParseExpr(expr string) (string, Constraint, error) {
	col, rhs, ok := strings.Cut(expr, "=")
	col = strings.TrimSpace(col)
	if !ok || col == "" {
		return "", Constraint{}, &FilterError{Kind: InvalidExpression, Column: col, Detail: "want column=lo:hi or column=a|b"}
	}
	rhs = strings.TrimSpace(rhs)
	if lo, hi, isRange := strings.Cut(rhs, ":"); isRange {
		lower, errLo := parseBound(lo, math.Inf(-1))
		upper, errHi := parseBound(hi, math.Inf(1))
		if errLo == nil && errHi == nil {
			return col, Range(lower, upper), nil
		}
	}
	if rhs == "" {
		return col, OneOf(), nil
	}
	parts := strings.Split(rhs, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return col, OneOf(parts...), nil
}

// ParseExprs parses several expressions into one Spec. Later expressions for
// the same column replace earlier ones.
func ParseExprs(exprs []string) (Spec, error) {
	spec := make(Spec, len(exprs))
	for _, e := range exprs {
		col, c, err := ParseExpr(e)
		if err != nil {
			return nil, err
		}
		spec[col] = c
	}
	return spec, nil
}

func parseBound(s string, open float64) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return open, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, strconv.ErrSyntax
	}
	return f, nil
}
