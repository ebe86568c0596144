package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	BuiltinDataset string `mapstructure:"builtin_dataset" yaml:"builtin_dataset"`
	// Parsing: empty delimiter means sniff from the header line.
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	Sheet     string `mapstructure:"sheet" yaml:"sheet"`

	// Statistics panel
	TargetColumn  string `mapstructure:"target_column" yaml:"target_column"`
	TopN          int    `mapstructure:"top_n" yaml:"top_n"`
	HistogramBins int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	AgeColumn     string `mapstructure:"age_column" yaml:"age_column"`
	AgeBins       int    `mapstructure:"age_bins" yaml:"age_bins"`
	HeadRows      int    `mapstructure:"head_rows" yaml:"head_rows"`

	// Manual entry
	PlaceholderPrice float64 `mapstructure:"placeholder_price" yaml:"placeholder_price"`
	MaxManualPoints  int     `mapstructure:"max_manual_points" yaml:"max_manual_points"`

	// HTTP server
	ServerAddr     string `mapstructure:"server_addr" yaml:"server_addr"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"builtin_dataset", "delimiter", "sheet",
	"target_column", "top_n", "histogram_bins", "age_column", "age_bins", "head_rows",
	"placeholder_price", "max_manual_points",
	"server_addr", "max_upload_bytes",
	"log_level", "log_format",
}

// Dir returns ~/.housing-explorer.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".housing-explorer"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.housing-explorer/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("HOUSING")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("builtin_dataset", "housing.csv")
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet", "")
	v.SetDefault("target_column", "median_house_value")
	v.SetDefault("top_n", 10)
	v.SetDefault("histogram_bins", 30)
	v.SetDefault("age_column", "housing_median_age")
	v.SetDefault("age_bins", 5)
	v.SetDefault("head_rows", 5)
	v.SetDefault("placeholder_price", 200000.0)
	v.SetDefault("max_manual_points", 20)
	// HTTP defaults
	v.SetDefault("server_addr", "127.0.0.1:8080")
	v.SetDefault("max_upload_bytes", int64(50<<20))
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Get returns the display value of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "builtin_dataset":
		return c.BuiltinDataset, nil
	case "delimiter":
		return c.Delimiter, nil
	case "sheet":
		return c.Sheet, nil
	case "target_column":
		return c.TargetColumn, nil
	case "top_n":
		return strconv.Itoa(c.TopN), nil
	case "histogram_bins":
		return strconv.Itoa(c.HistogramBins), nil
	case "age_column":
		return c.AgeColumn, nil
	case "age_bins":
		return strconv.Itoa(c.AgeBins), nil
	case "head_rows":
		return strconv.Itoa(c.HeadRows), nil
	case "placeholder_price":
		return strconv.FormatFloat(c.PlaceholderPrice, 'f', -1, 64), nil
	case "max_manual_points":
		return strconv.Itoa(c.MaxManualPoints), nil
	case "server_addr":
		return c.ServerAddr, nil
	case "max_upload_bytes":
		return strconv.FormatInt(c.MaxUploadBytes, 10), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// Set validates val and assigns it to key.
func (c *Global) Set(key, val string) error {
	switch key {
	case "builtin_dataset":
		c.BuiltinDataset = val
	case "delimiter":
		switch val {
		case "", ",", ";", "|":
			c.Delimiter = val
		case "tab", `\t`, "\t":
			c.Delimiter = "\t"
		default:
			return fmt.Errorf("invalid delimiter: %q (use , ; | or tab)", val)
		}
	case "sheet":
		c.Sheet = val
	case "target_column":
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("target_column cannot be empty")
		}
		c.TargetColumn = val
	case "top_n", "histogram_bins", "age_bins", "head_rows", "max_manual_points":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int for %s: %v", key, val)
		}
		switch key {
		case "top_n":
			c.TopN = i
		case "histogram_bins":
			c.HistogramBins = i
		case "age_bins":
			c.AgeBins = i
		case "head_rows":
			c.HeadRows = i
		case "max_manual_points":
			c.MaxManualPoints = i
		}
	case "age_column":
		c.AgeColumn = val
	case "placeholder_price":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid float for placeholder_price: %v", val)
		}
		c.PlaceholderPrice = f
	case "server_addr":
		c.ServerAddr = val
	case "max_upload_bytes":
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid int for max_upload_bytes: %v", val)
		}
		c.MaxUploadBytes = n
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch val {
		case "console", "json":
			c.LogFormat = val
		default:
			return fmt.Errorf("invalid log_format: %s (use console or json)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// DelimiterRune returns the configured delimiter, or 0 to sniff it.
func (c *Global) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return 0
}
