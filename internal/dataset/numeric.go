package dataset

import (
	"math"
	"strconv"
	"strings"
)

// missingTokens are cell texts read as missing values.
var missingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"N/A":  {},
	"n/a":  {},
	"NaN":  {},
	"nan":  {},
	"null": {},
	"NULL": {},
	"None": {},
}

// parseCell turns one raw cell into a Value. Type coercion per column happens later.
func parseCell(raw string, opt Options) Value {
	s := strings.TrimSpace(raw)
	if _, ok := missingTokens[s]; ok {
		return NA()
	}
	if f, ok := parseNumeric(s, opt); ok {
		return Value{Kind: Number, Num: f, Raw: s}
	}
	return Value{Kind: Text, Raw: s}
}

// parseNumeric parses s honoring the configured decimal and thousands separators.
// With DecimalSeparator 0 the decimal mark is detected per value.
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0 && cpos > dpos:
			dec, thou = ',', '.'
		case cpos >= 0 && dpos >= 0:
			dec, thou = '.', ','
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		// implicit grouping is the other of ',' and '.'; spaces only group when
		// configured explicitly
		thou = ','
		if dec == ',' {
			thou = '.'
		}
	}
	if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	if !isDecimalLiteral(raw) {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// isDecimalLiteral reports whether s only holds a sign, digits, a decimal point
// and an exponent. strconv also accepts hex floats, underscores and inf.
func isDecimalLiteral(s string) bool {
	digits := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = true
		case r == '.' || r == '+' || r == '-' || r == 'e' || r == 'E':
		default:
			return false
		}
	}
	return digits
}

// inferColumns decides each column's type from parsed cells and coerces cells to
// it: numbers in text columns keep their raw text, text in numeric columns becomes
// missing. A column with no text at all (including an all-missing column) is numeric.
func inferColumns(rows [][]Value, ncol int) {
	for j := 0; j < ncol; j++ {
		var numCnt, txtCnt int
		for _, r := range rows {
			switch r[j].Kind {
			case Number:
				numCnt++
			case Text:
				txtCnt++
			}
		}
		numeric := txtCnt == 0 || (numCnt > 0 && numCnt >= txtCnt)
		for _, r := range rows {
			v := r[j]
			switch {
			case numeric && v.Kind == Text:
				r[j] = NA()
			case !numeric && v.Kind == Number:
				r[j] = Str(v.Raw)
			}
		}
	}
}
