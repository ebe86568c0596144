package cmd

import (
	"fmt"
	"strings"

	cfgpkg "github.com/KaramelBytes/housing-explorer/internal/config"
	"github.com/KaramelBytes/housing-explorer/internal/dashboard"
	"github.com/KaramelBytes/housing-explorer/internal/dataset"
	"github.com/KaramelBytes/housing-explorer/internal/logging"
	"github.com/KaramelBytes/housing-explorer/internal/utils"
)

// currentConfig returns the loaded config, loading it when commands run
// without OnInitialize (tests).
func currentConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// loaderOptions merges the parsing flags over the config.
func loaderOptions(c *cfgpkg.Global) (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	opt.Delimiter = c.DelimiterRune()
	opt.Sheet = c.Sheet
	if flagDelimiter != "" {
		switch flagDelimiter {
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		case "|":
			opt.Delimiter = '|'
		default:
			return opt, fmt.Errorf("unsupported --delimiter: %s", flagDelimiter)
		}
	}
	// Locale separators
	switch strings.ToLower(strings.TrimSpace(flagDecimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", flagDecimal)
	}
	switch strings.ToLower(strings.TrimSpace(flagThousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", flagThousands)
	}
	if flagSheet != "" {
		opt.Sheet = flagSheet
	}
	return opt, nil
}

// dashboardConfig maps the global config onto the panel settings. Zero values
// keep the builtin defaults.
func dashboardConfig(c *cfgpkg.Global) dashboard.Config {
	d := dashboard.DefaultConfig()
	if c.BuiltinDataset != "" {
		d.BuiltinPath = c.BuiltinDataset
	}
	if c.HeadRows > 0 {
		d.HeadRows = c.HeadRows
	}
	if c.TargetColumn != "" {
		d.Target = c.TargetColumn
		d.Columns.Price = c.TargetColumn
	}
	if c.TopN > 0 {
		d.TopN = c.TopN
	}
	if c.HistogramBins > 0 {
		d.HistogramBins = c.HistogramBins
	}
	if c.AgeColumn != "" {
		d.AgeColumn = c.AgeColumn
	}
	if c.AgeBins > 0 {
		d.AgeBins = c.AgeBins
	}
	if c.PlaceholderPrice > 0 {
		d.PlaceholderPrice = c.PlaceholderPrice
	}
	if c.MaxManualPoints > 0 {
		d.MaxManualPoints = c.MaxManualPoints
	}
	return d
}

// newLoader builds a loader from config and flags.
func newLoader(c *cfgpkg.Global) (*dataset.Loader, error) {
	opt, err := loaderOptions(c)
	if err != nil {
		return nil, err
	}
	return dataset.NewLoader(opt, logging.Get()), nil
}

// loadDataset loads path, or the builtin dataset when path is empty.
func loadDataset(args []string) (*dataset.Dataset, *cfgpkg.Global, error) {
	c, err := currentConfig()
	if err != nil {
		return nil, nil, err
	}
	loader, err := newLoader(c)
	if err != nil {
		return nil, nil, err
	}
	path := dashboardConfig(c).BuiltinPath
	if len(args) > 0 {
		path = args[0]
	}
	ds, err := loader.Load(dataset.FileSource(path))
	if err != nil {
		return nil, c, err
	}
	return ds, c, nil
}

// writeOutput writes data to path, or stdout when path is empty.
func writeOutput(path string, data []byte, what string) error {
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Printf("✓ Wrote %s to %s\n", what, path)
	return nil
}
