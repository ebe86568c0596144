package analysis

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// RenderTables writes the report as terminal tables: key metrics, describe,
// correlation matrix and top correlated features.
func (r *Report) RenderTables(w io.Writer) {
	fmt.Fprintf(w, "Dataset: %s (%d rows, %d columns)\n\n", r.Name, r.Rows, len(r.Columns))

	metrics := newTable(w, []string{"metric", "value"})
	metrics.Append([]string{"properties", strconv.Itoa(r.Snapshot.Count)})
	metrics.Append([]string{"mean price", Currency(r.Snapshot.MeanPrice)})
	metrics.Append([]string{"median price", Currency(r.Snapshot.MedianPrice)})
	metrics.Append([]string{"mean rooms per household", r.Snapshot.MeanRoomsPerHousehold.Format(2)})
	metrics.Render()

	if r.Description != nil {
		fmt.Fprintln(w)
		r.Description.RenderTable(w)
	}
	if r.Corr != nil {
		fmt.Fprintln(w)
		r.Corr.RenderTable(w, 3)
	}
	if len(r.Top) > 0 {
		fmt.Fprintf(w, "\nTop correlated with %s\n", r.Target)
		top := newTable(w, []string{"#", "column", "r"})
		for i, c := range r.Top {
			top.Append([]string{strconv.Itoa(i + 1), c.Column, c.R.Format(3)})
		}
		top.Render()
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "⚠ Warning: %s\n", warn)
	}
}

// RenderTable writes the describe table with statistics as rows and columns as
// columns.
func (d *Description) RenderTable(w io.Writer) {
	header := make([]string, 0, len(d.Columns)+1)
	header = append(header, "")
	for _, c := range d.Columns {
		header = append(header, c.Column)
	}
	t := newTable(w, header)
	for s, name := range DescribeStats {
		row := make([]string, 0, len(header))
		row = append(row, name)
		for _, c := range d.Columns {
			row = append(row, c.Values()[s].Format(2))
		}
		t.Append(row)
	}
	t.Render()
}

// RenderTable writes the matrix with coefficients at the given decimals.
func (m *CorrMatrix) RenderTable(w io.Writer, places int) {
	header := append([]string{""}, m.Columns...)
	t := newTable(w, header)
	for i, col := range m.Columns {
		row := make([]string, 0, len(header))
		row = append(row, col)
		for _, v := range m.Values[i] {
			row = append(row, v.Format(places))
		}
		t.Append(row)
	}
	t.Render()
}

// RenderRows writes a head preview.
func RenderRows(w io.Writer, columns []string, rows [][]string) {
	t := newTable(w, columns)
	t.AppendBulk(rows)
	t.Render()
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetHeader(header)
	return t
}
