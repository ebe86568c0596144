package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/housing-explorer/internal/analysis"
	"github.com/KaramelBytes/housing-explorer/internal/dashboard"
	"github.com/KaramelBytes/housing-explorer/internal/utils"
)

var (
	ovHead int
	ovJSON bool
)

var overviewCmd = &cobra.Command{
	Use:   "overview [file]",
	Short: "Show the shape and first rows of a dataset (builtin dataset if no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, c, loadErr := loadDataset(args)
		head := ovHead
		if head <= 0 && c != nil {
			head = dashboardConfig(c).HeadRows
		}
		p := dashboard.Overview(ds, loadErr, head)
		if p.Warning != "" {
			fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", p.Warning)
			return fmt.Errorf("no dataset to show")
		}
		if ovJSON {
			b, err := utils.PrettyJSON(p.Content)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}
		fmt.Printf("✓ %s\n\n", p.Content.Message)
		analysis.RenderRows(os.Stdout, p.Content.Columns, p.Content.Head)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(overviewCmd)
	overviewCmd.Flags().IntVarP(&ovHead, "head", "n", 0, "number of rows to preview (default from config)")
	overviewCmd.Flags().BoolVar(&ovJSON, "json", false, "print the overview panel as JSON")
}
