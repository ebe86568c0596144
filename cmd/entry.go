package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/housing-explorer/internal/analysis"
	"github.com/KaramelBytes/housing-explorer/internal/dashboard"
	"github.com/KaramelBytes/housing-explorer/internal/dataset"
	"github.com/KaramelBytes/housing-explorer/internal/utils"
)

var (
	enPoints []string
	enCount  int
	enOutput string
	enJSON   bool
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Map manually entered points with a placeholder price",
	Long: `Map manually entered points with a placeholder price.

Each --point lists the eight feature values in order:

  longitude,latitude,housing_median_age,total_rooms,total_bedrooms,population,households,median_income

Fewer values are allowed; the remaining features take their defaults. With no
--point, --count default points are used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		dc := dashboardConfig(c)

		var points []dataset.PointInput
		for _, s := range enPoints {
			p, err := parsePoint(s)
			if err != nil {
				return err
			}
			points = append(points, p)
		}
		p, err := dashboard.ManualEntry(points, enCount, dc.MaxManualPoints, dc.PlaceholderPrice)
		if err != nil {
			return err
		}
		if enJSON {
			b, err := utils.PrettyJSON(p)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
		} else {
			analysis.RenderRows(os.Stdout, p.Columns, p.Rows)
			fmt.Printf("✓ %s\n", p.Message)
		}
		if enOutput != "" {
			b, err := p.Chart.JSON()
			if err != nil {
				return err
			}
			return writeOutput(enOutput, b, "entry chart")
		}
		return nil
	},
}

// parsePoint reads comma-separated feature values in ManualColumns order.
func parsePoint(s string) (dataset.PointInput, error) {
	p := dataset.DefaultPoint()
	fields := []*float64{
		&p.Longitude, &p.Latitude, &p.HousingMedianAge, &p.TotalRooms,
		&p.TotalBedrooms, &p.Population, &p.Households, &p.MedianIncome,
	}
	parts := strings.Split(s, ",")
	if len(parts) > len(fields) {
		return p, fmt.Errorf("invalid --point %q: expected at most %d values, got %d", s, len(fields), len(parts))
	}
	for i, raw := range parts {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, fmt.Errorf("invalid --point %q: value %d: %w", s, i+1, err)
		}
		*fields[i] = f
	}
	return p, nil
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.Flags().StringArrayVarP(&enPoints, "point", "p", nil, "comma-separated feature values of one point (repeatable)")
	entryCmd.Flags().IntVarP(&enCount, "count", "n", 1, "number of default points when no --point is given")
	entryCmd.Flags().StringVarP(&enOutput, "output", "o", "", "write the map chart spec (JSON) to this path")
	entryCmd.Flags().BoolVar(&enJSON, "json", false, "print the entry panel as JSON")
}
