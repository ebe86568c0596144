package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/KaramelBytes/housing-explorer/internal/dataset"
)

// Options controls which sections a Report contains.
type Options struct {
	// Columns names the snapshot metric columns.
	Columns SnapshotColumns
	// Target is the column whose top correlated features are listed.
	Target string
	// TopN limits the correlated features list.
	TopN int
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
}

// DefaultOptions returns the housing defaults: price target, top 10, 5 samples.
func DefaultOptions() Options {
	return Options{
		Columns:    DefaultSnapshotColumns(),
		Target:     dataset.ColMedianHouseValue,
		TopN:       10,
		SampleRows: 5,
	}
}

// Report is a markdown-friendly statistics summary of a dataset.
type Report struct {
	Name        string       `json:"name"`
	Rows        int          `json:"rows"`
	Columns     []string     `json:"columns"`
	Numeric     []string     `json:"numeric"`
	Snapshot    Snapshot     `json:"snapshot"`
	Description *Description `json:"describe,omitempty"`
	Corr        *CorrMatrix  `json:"correlation,omitempty"`
	Target      string       `json:"target,omitempty"`
	Top         []Correlated `json:"top_correlated,omitempty"`
	Samples     [][]string   `json:"samples,omitempty"`
	Warnings    []string     `json:"warnings,omitempty"`
}

// BuildReport assembles every statistic of ds. Failing sections become warnings
// so the rest of the report still renders.
func BuildReport(ds *dataset.Dataset, snap Snapshot, opt Options) *Report {
	c := dataset.Classify(ds)
	rep := &Report{
		Name:     ds.Name(),
		Rows:     ds.Len(),
		Columns:  c.All,
		Numeric:  c.Numeric,
		Snapshot: snap,
		Target:   opt.Target,
	}
	if opt.SampleRows > 0 {
		rep.Samples = ds.Head(opt.SampleRows).Records()
	}
	desc, err := Describe(ds)
	if err != nil {
		rep.Warnings = append(rep.Warnings, err.Error())
		return rep
	}
	rep.Description = desc
	corr, err := Correlate(ds)
	if err != nil {
		rep.Warnings = append(rep.Warnings, err.Error())
		return rep
	}
	rep.Corr = corr
	if opt.Target != "" {
		top, err := TopCorrelated(corr, opt.Target, opt.TopN)
		if err != nil {
			rep.Warnings = append(rep.Warnings, err.Error())
		} else {
			rep.Top = top
		}
	}
	return rep
}

// Currency formats n as whole dollars with thousands separators.
func Currency(n Number) string {
	if !n.Valid {
		return "n/a"
	}
	v := math.Round(n.Value)
	if v < 0 {
		return "-$" + humanize.Comma(int64(-v))
	}
	return "$" + humanize.Comma(int64(v))
}

// Markdown renders a compact report suitable for standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d (numeric %d)\n\n", len(r.Columns), len(r.Numeric)))

	b.WriteString("[KEY METRICS]\n")
	b.WriteString(fmt.Sprintf("- Properties: %d\n", r.Snapshot.Count))
	b.WriteString(fmt.Sprintf("- Mean price: %s\n", Currency(r.Snapshot.MeanPrice)))
	b.WriteString(fmt.Sprintf("- Median price: %s\n", Currency(r.Snapshot.MedianPrice)))
	b.WriteString(fmt.Sprintf("- Mean rooms per household: %s\n", r.Snapshot.MeanRoomsPerHousehold.Format(2)))
	b.WriteString(fmt.Sprintf("- Mean rooms: %s\n", r.Snapshot.MeanRooms.Format(2)))
	b.WriteString(fmt.Sprintf("- Mean income: %s\n", r.Snapshot.MeanIncome.Format(2)))

	if r.Description != nil {
		b.WriteString("\n[DESCRIBE]\n")
		b.WriteString("| column | " + strings.Join(DescribeStats, " | ") + " |\n")
		b.WriteString("|---" + strings.Repeat("|---", len(DescribeStats)) + "|\n")
		for _, c := range r.Description.Columns {
			b.WriteString("| " + safeName(c.Column))
			for _, v := range c.Values() {
				b.WriteString(" | " + v.Format(2))
			}
			b.WriteString(" |\n")
		}
	}
	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString("\n[CORRELATIONS]\n")
		// list top pairs by |r|
		type pr struct {
			A, B string
			R    float64
		}
		var pairs []pr
		n := len(r.Corr.Columns)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if v := r.Corr.Values[i][j]; v.Valid {
					pairs = append(pairs, pr{A: r.Corr.Columns[i], B: r.Corr.Columns[j], R: v.Value})
				}
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			ai := math.Abs(pairs[i].R)
			aj := math.Abs(pairs[j].R)
			if ai == aj {
				return pairs[i].A+pairs[i].B < pairs[j].A+pairs[j].B
			}
			return ai > aj
		})
		maxp := 10
		if len(pairs) < maxp {
			maxp = len(pairs)
		}
		for i := 0; i < maxp; i++ {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", pairs[i].A, pairs[i].B, pairs[i].R))
		}
	}
	if len(r.Top) > 0 {
		b.WriteString(fmt.Sprintf("\n[TOP CORRELATED WITH %s]\n", r.Target))
		for i, c := range r.Top {
			b.WriteString(fmt.Sprintf("%d. %s: %s\n", i+1, c.Column, c.R.Format(3)))
		}
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString(MarkdownRows(r.Columns, r.Samples))
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// MarkdownRows renders rows as a markdown table. Long cells are cut to 80
// characters.
func MarkdownRows(columns []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("| ")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(c))
	}
	b.WriteString(" |\n")
	b.WriteString("| ")
	for i := range columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range rows {
		b.WriteString("| ")
		for i := range columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			if len(val) > 80 {
				val = val[:77] + "..."
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
