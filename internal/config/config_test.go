package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.BuiltinDataset != "housing.csv" || c.TopN != 10 || c.HistogramBins != 30 || c.AgeBins != 5 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.PlaceholderPrice != 200000 || c.MaxManualPoints != 20 {
		t.Fatalf("unexpected manual defaults: %+v", c)
	}
	if c.DelimiterRune() != 0 {
		t.Fatalf("default delimiter should be sniffed")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for k, v := range map[string]string{
		"top_n":           "5",
		"delimiter":       "tab",
		"builtin_dataset": "/data/housing.csv",
		"log_format":      "json",
	} {
		if err := c.Set(k, v); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}
	if err := Save(c, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.TopN != 5 || again.DelimiterRune() != '\t' || again.BuiltinDataset != "/data/housing.csv" || again.LogFormat != "json" {
		t.Fatalf("reloaded config = %+v", again)
	}
	if got, _ := again.Get("top_n"); got != "5" {
		t.Fatalf("Get(top_n) = %q", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOUSING_TOP_N", "3")
	c, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.TopN != 3 {
		t.Fatalf("top_n = %d, want 3 from env", c.TopN)
	}
}

func TestSetRejectsInvalidValues(t *testing.T) {
	c := &Global{}
	for k, v := range map[string]string{
		"top_n":             "0",
		"placeholder_price": "-1",
		"delimiter":         "::",
		"log_level":         "loud",
		"nope":              "1",
	} {
		if err := c.Set(k, v); err == nil {
			t.Fatalf("Set(%s, %s) succeeded", k, v)
		}
	}
	for _, k := range Keys {
		if _, err := c.Get(k); err != nil {
			t.Fatalf("Get(%s): %v", k, err)
		}
	}
}
