package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pandemic-tracking/bicheck/internal/check"
	"github.com/pandemic-tracking/bicheck/internal/dataset"
	"github.com/pandemic-tracking/bicheck/internal/sink"
	"github.com/pandemic-tracking/bicheck/internal/utils"
	"github.com/spf13/cobra"
)

var (
	chkNewPath    string
	chkSheet      string
	chkExisting   string
	chkOutputPath string
	chkWorkbook   string
	chkWhitelist  []string
	chkMultiplier float64
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the new snapshot against the reference and report anomalies",
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := check.DefaultOptions()
		timeout := 60 * time.Second
		if cfg != nil {
			opt.KeyColumn = cfg.KeyColumn
			opt.FirstNumericColumn = cfg.FirstNumericColumn
			opt.LastNumericColumn = cfg.LastNumericColumn
			opt.DecreaseWhitelist = cfg.DecreaseWhitelist
			opt.IncreaseMultiplier = cfg.IncreaseMultiplier
			if cfg.HTTPTimeoutSec > 0 {
				timeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
			}
			if chkExisting == "" {
				chkExisting = cfg.ExistingURL
			}
			if chkSheet == "" {
				chkSheet = cfg.SnapshotSheet
			}
			if chkWorkbook == "" {
				chkWorkbook = cfg.ChecksWorkbook
			}
		}
		if cmd.Flags().Changed("whitelist") {
			opt.DecreaseWhitelist = chkWhitelist
		}
		if cmd.Flags().Changed("increase-multiplier") {
			if chkMultiplier <= 0 {
				return fmt.Errorf("invalid --increase-multiplier: %g", chkMultiplier)
			}
			opt.IncreaseMultiplier = chkMultiplier
		}
		if chkNewPath == "" {
			return fmt.Errorf("--new is required (path to the exported snapshot)")
		}
		if chkExisting == "" {
			return fmt.Errorf("--existing is required (path or URL of the reference snapshot)")
		}

		newSnap, err := loadNewSnapshot(chkNewPath, chkSheet)
		if err != nil {
			return fmt.Errorf("load new snapshot: %w", err)
		}
		existing, err := loadExistingSnapshot(chkExisting, timeout)
		if err != nil {
			return fmt.Errorf("load existing snapshot: %w", err)
		}
		if debug {
			fmt.Fprintf(os.Stderr, "new: %d rows, %d columns; existing: %d rows, %d columns\n",
				len(newSnap.Rows), len(newSnap.Columns), len(existing.Rows), len(existing.Columns))
		}

		rep, err := check.Run(newSnap, existing, opt)
		if err != nil {
			return err
		}

		written := false
		if chkOutputPath != "" {
			if err := utils.SafeWriteFile(chkOutputPath, []byte(rep.CSV())); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Printf("✓ Wrote report to %s (%d anomalies)\n", chkOutputPath, len(rep.Anomalies))
			written = true
		}
		if chkWorkbook != "" {
			title, err := sink.WriteWorkbook(chkWorkbook, rep)
			if err != nil {
				return fmt.Errorf("write checks workbook: %w", err)
			}
			fmt.Printf("✓ Done: sheet tab %s created\n", title)
			written = true
		}
		if !written {
			fmt.Print(rep.CSV())
		}
		return nil
	},
}

// loadNewSnapshot reads the freshly exported sheet. The export hands back raw
// strings; typing is the normalizer's job.
func loadNewSnapshot(path, sheet string) (*dataset.Dataset, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return dataset.ReadXLSX(path, sheet)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dataset.ReadCSV(f, false)
}

// loadExistingSnapshot reads the published reference CSV from a URL or a
// local file, with native type inference.
func loadExistingSnapshot(src string, timeout time.Duration) (*dataset.Dataset, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return dataset.FetchCSV(src, timeout)
	}
	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dataset.ReadCSV(f, true)
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&chkNewPath, "new", "n", "", "path to the new snapshot (.xlsx or .csv)")
	checkCmd.Flags().StringVar(&chkSheet, "sheet", "", "worksheet name inside the new snapshot workbook")
	checkCmd.Flags().StringVarP(&chkExisting, "existing", "e", "", "path or URL of the reference snapshot CSV")
	checkCmd.Flags().StringVarP(&chkOutputPath, "output", "o", "", "optional path to write the report CSV")
	checkCmd.Flags().StringVar(&chkWorkbook, "workbook", "", "optional checks workbook to append the report to as a new tab")
	checkCmd.Flags().StringSliceVar(&chkWhitelist, "whitelist", nil, "columns exempt from the cumulative-decrease check")
	checkCmd.Flags().Float64Var(&chkMultiplier, "increase-multiplier", 0, "flag increases beyond this multiple of the old value")
}
