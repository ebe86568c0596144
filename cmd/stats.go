package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/housing-explorer/internal/analysis"
	cfgpkg "github.com/KaramelBytes/housing-explorer/internal/config"
	"github.com/KaramelBytes/housing-explorer/internal/dashboard"
	"github.com/KaramelBytes/housing-explorer/internal/dataset"
	"github.com/KaramelBytes/housing-explorer/internal/utils"
)

var (
	stTarget     string
	stTop        int
	stFormat     string
	stOutput     string
	stSampleRows int
	stRows       int
	stRowsOffset int
)

var statsCmd = &cobra.Command{
	Use:   "stats [file]",
	Short: "Summary metrics, describe table and correlations of a dataset",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimSpace(stFormat))
		switch format {
		case "text", "markdown", "md", "json":
		default:
			return fmt.Errorf("unsupported --format: %s (use text|markdown|json)", stFormat)
		}
		ds, c, err := loadDataset(args)
		if err != nil {
			return err
		}
		dc := statsConfig(c)
		if stRowsOffset > 0 && stRows == 0 {
			return fmt.Errorf("--rows-offset needs --rows")
		}
		out, err := renderStats(ds, dc, format)
		if err != nil {
			return err
		}
		return writeOutput(stOutput, out, "statistics")
	},
}

// statsConfig applies the stats flags over the configured panel settings.
func statsConfig(c *cfgpkg.Global) dashboard.Config {
	dc := dashboardConfig(c)
	if stTarget != "" {
		dc.Target = stTarget
	}
	if stTop > 0 {
		dc.TopN = stTop
	}
	dc.RawRows = stRows
	return dc
}

// renderStats renders the statistics of ds in the given format. JSON carries
// the full statistics panel with its charts.
func renderStats(ds *dataset.Dataset, dc dashboard.Config, format string) ([]byte, error) {
	if format == "json" {
		p, err := dashboard.Statistics(ds, dc.StatisticsOptions(), nil)
		if err != nil {
			return nil, err
		}
		if dc.RawRows > 0 && stRowsOffset > 0 {
			if p.Raw, err = dashboard.Rows(ds, stRowsOffset, dc.RawRows); err != nil {
				return nil, err
			}
		}
		return utils.PrettyJSON(p)
	}
	opt := analysis.DefaultOptions()
	opt.Columns = dc.Columns
	opt.Target = dc.Target
	opt.TopN = dc.TopN
	opt.SampleRows = stSampleRows
	rep := analysis.BuildReport(ds, analysis.Summarize(ds, dc.Columns), opt)
	var page *dashboard.RowsPage
	if dc.RawRows > 0 {
		var err error
		if page, err = dashboard.Rows(ds, stRowsOffset, dc.RawRows); err != nil {
			return nil, err
		}
	}
	if format == "text" {
		var buf bytes.Buffer
		rep.RenderTables(&buf)
		if page != nil {
			fmt.Fprintf(&buf, "\n%s\n", rawTitle(page))
			analysis.RenderRows(&buf, page.Columns, page.Rows)
		}
		return bytes.TrimRight(buf.Bytes(), "\n"), nil
	}
	md := rep.Markdown()
	if page != nil {
		md += "\n[" + rawTitle(page) + "]\n" + analysis.MarkdownRows(page.Columns, page.Rows)
	}
	return []byte(md), nil
}

func rawTitle(p *dashboard.RowsPage) string {
	if len(p.Rows) == 0 {
		return fmt.Sprintf("RAW DATA (no rows past %d of %d)", p.Offset, p.Total)
	}
	return fmt.Sprintf("RAW DATA (rows %d-%d of %d)", p.Offset+1, p.Offset+len(p.Rows), p.Total)
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&stTarget, "target", "", "column to rank correlations against (default from config)")
	statsCmd.Flags().IntVar(&stTop, "top", 0, "number of top correlated columns (default from config)")
	statsCmd.Flags().StringVar(&stFormat, "format", "text", "output format: text|markdown|json")
	statsCmd.Flags().StringVarP(&stOutput, "output", "o", "", "optional path to write the output")
	statsCmd.Flags().IntVar(&stSampleRows, "sample-rows", 5, "number of sample rows in markdown output")
	statsCmd.Flags().IntVar(&stRows, "rows", 0, "append a page of this many raw data rows")
	statsCmd.Flags().IntVar(&stRowsOffset, "rows-offset", 0, "first raw data row to show (0-based)")
}
