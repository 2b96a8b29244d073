package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mailscan/replylag/internal/scan"
	"github.com/mailscan/replylag/internal/table"
)

var scanOut string

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Scan .eml exports into a (filename, timestamp) table",
	Long: `Scan a directory of exported .eml files and extract a Japan-time
timestamp from each message, producing the input table the other commands
consume.

Messages are read with encoding fallback (UTF-8, Shift_JIS, EUC-JP, ...).
Files that yield no timestamp are kept with an empty time cell; the loader
skips them later and counts them.

Example:
  replylag scan ./mail-export --out summary.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scanner := scan.New(cfg.Scan.ReadLimit, logger)
		rows, stats, err := scanner.ScanDir(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if err := table.WriteRows(scanOut, scan.Rows(rows)); err != nil {
			return fmt.Errorf("write table: %w", err)
		}

		fmt.Printf("scanned %d files: %d timestamps found, %d missing\n",
			stats.Files, stats.Found, stats.Missing)
		fmt.Printf("table written to %s\n", scanOut)
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanOut, "out", "jst_times.csv", "output table (.csv or .xlsx)")
	rootCmd.AddCommand(scanCmd)
}
