package dataset

import (
	"math"
	"strconv"
)

// Kind is the type of a single cell.
type Kind uint8

const (
	Missing Kind = iota
	Number
	Text
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Text:
		return "text"
	default:
		return "missing"
	}
}

// Value is one cell of a Dataset. Raw keeps the source text when the value was
// parsed from a file.
type Value struct {
	Kind Kind
	Num  float64
	Raw  string
}

// NA returns a missing value.
func NA() Value { return Value{} }

// Num returns a numeric value. Non-finite inputs become missing.
func Num(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{Kind: Number, Num: f}
}

// Str returns a text value.
func Str(s string) Value { return Value{Kind: Text, Raw: s} }

// IsMissing reports whether v holds no value.
func (v Value) IsMissing() bool { return v.Kind == Missing }

// Float returns the numeric value and whether v is a number.
func (v Value) Float() (float64, bool) {
	if v.Kind != Number {
		return 0, false
	}
	return v.Num, true
}

// Text returns the display text of v: the raw text for parsed cells, the shortest
// float formatting for constructed numbers and "" for missing values.
func (v Value) Text() string {
	switch v.Kind {
	case Number:
		if v.Raw != "" {
			return v.Raw
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case Text:
		return v.Raw
	default:
		return ""
	}
}

// Interface returns float64, string or nil, suitable for JSON encoding.
func (v Value) Interface() any {
	switch v.Kind {
	case Number:
		return v.Num
	case Text:
		return v.Raw
	default:
		return nil
	}
}
