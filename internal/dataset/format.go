package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format reads raw records (header first) from file content.
type Format interface {
	Name() string
	CanRead(filename string) bool
	Read(data []byte, filename string, opt Options) ([][]string, error)
}

var formats []Format

// RegisterFormat adds a format to the registry. Later registrations do not take
// precedence over earlier ones.
func RegisterFormat(f Format) {
	formats = append(formats, f)
}

// formatFor picks the first format accepting filename, falling back to delimited text.
func formatFor(filename string) Format {
	for _, f := range formats {
		if f.CanRead(filename) {
			return f
		}
	}
	return delimitedFormat{}
}

func init() {
	RegisterFormat(xlsxFormat{})
	RegisterFormat(delimitedFormat{})
}

type delimitedFormat struct{}

func (delimitedFormat) Name() string { return "csv" }

func (delimitedFormat) CanRead(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (delimitedFormat) Read(data []byte, filename string, opt Options) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(filename, data)
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var out [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// sniffDelimiter picks the delimiter for delimited text: tab for .tsv files,
// otherwise the most frequent of ',', ';' and tab on the header line.
func sniffDelimiter(filename string, data []byte) rune {
	if strings.HasSuffix(strings.ToLower(filename), ".tsv") {
		return '\t'
	}
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		n := 0
		inQuotes := false
		for _, c := range string(line) {
			switch {
			case c == '"':
				inQuotes = !inQuotes
			case c == d && !inQuotes:
				n++
			}
		}
		if n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

type xlsxFormat struct{}

func (xlsxFormat) Name() string { return "xlsx" }

func (xlsxFormat) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxFormat) Read(data []byte, filename string, opt Options) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	sheet := sheets[0]
	if opt.Sheet != "" {
		sheet = ""
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, fmt.Errorf("sheet %q not found in workbook %q; available sheets: %s",
				opt.Sheet, filename, strings.Join(sheets, ", "))
		}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}
