package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStatsBatch_CollisionSuffix(t *testing.T) {
	home, _ := isolate(t)

	// Prepare two CSV files with the same basename in different directories
	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	for _, d := range []string{d1, d2} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
		if err := os.WriteFile(filepath.Join(d, "housing.csv"), []byte(housingCSV), 0o644); err != nil {
			t.Fatalf("write csv: %v", err)
		}
	}
	outDir := filepath.Join(home, "reports")

	mustRun(t, "stats-batch", filepath.Join(home, "d*", "housing.csv"), "--out-dir", outDir, "-q")

	b1 := filepath.Join(outDir, "housing.stats.md")
	b2 := filepath.Join(outDir, "housing__2.stats.md")
	for _, p := range []string{b1, b2} {
		body, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("missing report %s: %v", p, err)
		}
		if !strings.Contains(string(body), "[KEY METRICS]") {
			t.Fatalf("expected key metrics in %s", p)
		}
	}
}

func TestStatsBatch_SkipsUnreadableFiles(t *testing.T) {
	home, csvPath := isolate(t)
	bad := filepath.Join(home, "bad.csv")
	if err := os.WriteFile(bad, []byte("   \n"), 0o644); err != nil {
		t.Fatalf("write bad: %v", err)
	}
	outDir := filepath.Join(home, "reports")

	mustRun(t, "stats-batch", csvPath, bad, "--out-dir", outDir, "--format", "json", "-q")
	if _, err := os.Stat(filepath.Join(outDir, "housing.stats.json")); err != nil {
		t.Fatalf("missing report: %v", err)
	}
	if err := runCmd(t, "stats-batch", bad, "-q"); err == nil {
		t.Fatalf("expected error when every file fails")
	}
}

func TestStatsBatch_NoMatches(t *testing.T) {
	home, _ := isolate(t)
	if err := runCmd(t, "stats-batch", filepath.Join(home, "nothing-*.csv")); err == nil {
		t.Fatalf("expected error for no matches")
	}
}
