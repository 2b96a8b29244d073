package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mailscan/replylag/internal/correlate"
	"github.com/mailscan/replylag/internal/table"
)

var (
	batchInput string
	batchOut   string
)

var batchCmd = &cobra.Command{
	Use:   "batch [ids-file]",
	Short: "Run correlation queries for many search ids",
	Long: `Run correlation queries for a list of search ids, one per line,
read from a file or from stdin. Blank lines are skipped.

Results are printed as a progress log and optionally written to a flat
table with --out (format chosen by extension, .csv or .xlsx).

Examples:
  replylag batch ids.txt --input summary.xlsx --out results.xlsx
  cat ids.txt | replylag batch --input summary.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		searchIDs, err := readSearchIDs(args)
		if err != nil {
			return err
		}
		if len(searchIDs) == 0 {
			return fmt.Errorf("no search ids to query")
		}

		engine, _, _, err := openDataset(batchInput)
		if err != nil {
			return err
		}

		results := make([]correlate.Result, 0, len(searchIDs))
		succeeded := 0
		for i, sid := range searchIDs {
			r := engine.Resolve(sid)
			results = append(results, r)

			switch r.Status {
			case correlate.StatusSuccess:
				succeeded++
				fmt.Printf("[%d/%d] %s: response at %s (interval %s)\n",
					i+1, len(searchIDs), sid,
					r.ResponseTime.Format("2006-01-02 15:04:05"), r.Interval)
			default:
				fmt.Printf("[%d/%d] %s: %s\n", i+1, len(searchIDs), sid, r.Status)
			}
		}

		fmt.Printf("\n%d/%d succeeded\n", succeeded, len(results))

		if batchOut != "" {
			if err := table.WriteResults(batchOut, results); err != nil {
				return fmt.Errorf("write results: %w", err)
			}
			fmt.Printf("results written to %s\n", batchOut)
		}
		return nil
	},
}

// readSearchIDs reads ids one per line from the optional file argument or
// from stdin.
func readSearchIDs(args []string) ([]string, error) {
	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("open ids file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			ids = append(ids, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ids: %w", err)
	}
	return ids, nil
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "input table (.csv or .xlsx)")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "write results to this file (.csv or .xlsx)")
	rootCmd.AddCommand(batchCmd)
}
