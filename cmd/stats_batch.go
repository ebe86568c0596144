package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/housing-explorer/internal/dataset"
	"github.com/KaramelBytes/housing-explorer/internal/utils"
)

var (
	sbOutDir string
	sbFormat string
	sbQuiet  bool
)

var statsBatchCmd = &cobra.Command{
	Use:   "stats-batch <files...>",
	Short: "Compute statistics for multiple CSV/TSV/XLSX files with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		seen := map[string]struct{}{}
		for _, arg := range args {
			matches, _ := filepath.Glob(arg)
			if len(matches) == 0 {
				// treat as literal path if exists
				if _, err := os.Stat(arg); err == nil {
					matches = []string{arg}
				}
			}
			for _, m := range matches {
				if _, ok := seen[m]; ok {
					continue
				}
				seen[m] = struct{}{}
				files = append(files, m)
			}
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		sort.Strings(files)

		format := strings.ToLower(strings.TrimSpace(sbFormat))
		ext, ok := map[string]string{"markdown": ".stats.md", "md": ".stats.md", "text": ".stats.txt", "json": ".stats.json"}[format]
		if !ok {
			return fmt.Errorf("unsupported --format: %s (use text|markdown|json)", sbFormat)
		}
		c, err := currentConfig()
		if err != nil {
			return err
		}
		loader, err := newLoader(c)
		if err != nil {
			return err
		}
		dc := statsConfig(c)

		total := len(files)
		failed := 0
		for i, path := range files {
			if !sbQuiet {
				fmt.Printf("[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			ds, err := loader.Load(dataset.FileSource(path))
			if err != nil {
				// keep going; one bad file should not hide the others
				fmt.Fprintf(os.Stderr, "⚠ Warning: skipping %s: %v\n", path, err)
				failed++
				continue
			}
			out, err := renderStats(ds, dc, format)
			if err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Warning: skipping %s: %v\n", path, err)
				failed++
				continue
			}
			if sbOutDir == "" {
				if !sbQuiet {
					fmt.Println(string(out))
				}
				continue
			}
			outFile := uniqueOutput(sbOutDir, path, ext)
			if err := utils.SafeWriteFile(outFile, out); err != nil {
				return err
			}
			if !sbQuiet {
				fmt.Printf("✓ Wrote %s\n", outFile)
			}
		}
		if failed == total {
			return fmt.Errorf("all %d files failed", total)
		}
		return nil
	},
}

// uniqueOutput picks <dir>/<base><ext>, adding __2, __3 ... when the name is
// taken.
func uniqueOutput(dir, path, ext string) string {
	base := filepath.Base(path)
	safe := strings.TrimSuffix(base, filepath.Ext(base))
	outFile := filepath.Join(dir, safe+ext)
	if _, statErr := os.Stat(outFile); statErr != nil {
		return outFile
	}
	idx := 2
	for {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d%s", safe, idx, ext))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			if !sbQuiet {
				fmt.Printf("⚠ Detected existing output, writing to %s to avoid overwrite.\n", filepath.Base(cand))
			}
			return cand
		}
		idx++
	}
}

func init() {
	rootCmd.AddCommand(statsBatchCmd)
	statsBatchCmd.Flags().StringVar(&sbOutDir, "out-dir", "", "directory for per-file outputs (stdout if omitted)")
	statsBatchCmd.Flags().StringVar(&sbFormat, "format", "markdown", "output format: text|markdown|json")
	statsBatchCmd.Flags().BoolVarP(&sbQuiet, "quiet", "q", false, "suppress progress output")
}
