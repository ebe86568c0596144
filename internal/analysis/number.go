package analysis

import (
	"math"
	"strconv"

	"github.com/goccy/go-json"
)

// Number is a statistic that may be undefined, e.g. the mean of a column with no
// values or the correlation of a constant column.
type Number struct {
	Value float64
	Valid bool
}

// Defined returns a valid Number, or an undefined one for NaN and infinities.
func Defined(f float64) Number {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}
	}
	return Number{Value: f, Valid: true}
}

// Undefined is the missing-statistic marker.
var Undefined = Number{}

// Round returns n rounded to the given number of decimal places.
func (n Number) Round(places int) Number {
	if !n.Valid {
		return n
	}
	p := math.Pow(10, float64(places))
	return Defined(math.Round(n.Value*p) / p)
}

// Format renders n with the given decimals, or "n/a".
func (n Number) Format(places int) string {
	if !n.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(n.Value, 'f', places, 64)
}

func (n Number) String() string {
	if !n.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *Number) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = Number{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Defined(f)
	return nil
}
