package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/housing-explorer/internal/dashboard"
	"github.com/KaramelBytes/housing-explorer/internal/filter"
	"github.com/KaramelBytes/housing-explorer/internal/utils"
)

var (
	exLon     string
	exLat     string
	exPrice   string
	exFilters []string
	exHover   []string
	exOutput  string
	exJSON    bool
)

var exploreCmd = &cobra.Command{
	Use:   "explore [file]",
	Short: "Filter a dataset and build the price map",
	Long: `Filter a dataset and build the price map.

Filters use column=lo:hi for numeric ranges (either bound may be empty) and
column=a|b|c for value sets, e.g.:

  housing explore --filter median_income=3:8 --filter "ocean_proximity=NEAR BAY|INLAND"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, _, err := loadDataset(args)
		if err != nil {
			return err
		}
		spec, err := filter.ParseExprs(exFilters)
		if err != nil {
			return err
		}
		req := dashboard.MapRequest{
			Longitude: exLon,
			Latitude:  exLat,
			Price:     exPrice,
			Filters:   spec,
			Hover:     exHover,
		}
		p, err := dashboard.Explore(ds, req)
		if err != nil {
			return err
		}

		if exJSON {
			b, err := utils.PrettyJSON(p)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
		} else {
			printMapPanel(p)
		}
		if exOutput != "" {
			b, err := p.Chart.JSON()
			if err != nil {
				return err
			}
			return writeOutput(exOutput, b, "map chart")
		}
		return nil
	},
}

func printMapPanel(p *dashboard.MapPanel) {
	fmt.Printf("Roles: longitude=%s latitude=%s price=%s\n", p.Longitude, p.Latitude, p.Price)
	fmt.Printf("Numeric columns: %v\n", p.Classification.Numeric)
	if len(p.AvailableFilters) > 0 {
		fmt.Println("Available filters:")
		for _, col := range p.AvailableFilters {
			fmt.Printf("  - %s (%s)\n", col, p.FilterDefaults[col])
		}
	}
	if len(p.ActiveFilters) > 0 {
		cols := p.ActiveFilters.Columns()
		sort.Strings(cols)
		fmt.Println("Active filters:")
		for _, col := range cols {
			fmt.Printf("  - %s=%s\n", col, p.ActiveFilters[col])
		}
	}
	fmt.Printf("✓ %s\n", p.Summary)
	if p.FilteredRows == 0 {
		fmt.Println("⚠ Warning: no rows match the filters; the map is empty")
	}
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.Flags().StringVar(&exLon, "lon", "", "longitude column (first numeric column if omitted)")
	exploreCmd.Flags().StringVar(&exLat, "lat", "", "latitude column (second numeric column if omitted)")
	exploreCmd.Flags().StringVar(&exPrice, "price", "", "price column used for color (third numeric column if omitted)")
	exploreCmd.Flags().StringArrayVarP(&exFilters, "filter", "f", nil, "filter expression col=lo:hi or col=a|b (repeatable)")
	exploreCmd.Flags().StringSliceVar(&exHover, "hover", nil, "comma-separated hover columns (role columns if omitted)")
	exploreCmd.Flags().StringVarP(&exOutput, "output", "o", "", "write the map chart spec (JSON) to this path")
	exploreCmd.Flags().BoolVar(&exJSON, "json", false, "print the whole map panel as JSON")
}
