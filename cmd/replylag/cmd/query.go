package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/mailscan/replylag/internal/correlate"
)

var (
	queryInput string
	queryJSON  bool
)

var queryCmd = &cobra.Command{
	Use:   "query <search-id>",
	Short: "Find the nearest reply for one search id",
	Long: `Find the nearest qualifying reply for a single search id.

The search id is the namespace:digits token embedded in the archived
filename, e.g. mdmswitch_help:01218. An id that is not an exact match is
retried as a case-insensitive substring against all known ids.

Examples:
  replylag query mdmswitch_help:01218 --input summary.xlsx
  replylag query help:060 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, ix, _, err := openDataset(queryInput)
		if err != nil {
			return err
		}

		result := engine.Resolve(args[0])

		if queryJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printResult(result)

		if result.Status == correlate.StatusSearchIDNotFound {
			printSuggestions(args[0], ix.SearchIDs())
		}
		return nil
	},
}

// printResult writes one result as aligned key/value lines.
func printResult(r correlate.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	cells := r.Cells()
	for i, name := range correlate.Header {
		fmt.Fprintf(w, "%s\t%s\n", name, cells[i])
	}
	w.Flush()
}

// printSuggestions offers close matches for a missed search id. Suggestions
// are display-only and never influence the query outcome.
func printSuggestions(query string, known []string) {
	matches := fuzzy.Find(query, known)
	if len(matches) == 0 {
		return
	}
	if len(matches) > 5 {
		matches = matches[:5]
	}
	fmt.Println("\nDid you mean:")
	for _, m := range matches {
		fmt.Printf("  %s\n", m.Str)
	}
}

func init() {
	queryCmd.Flags().StringVar(&queryInput, "input", "", "input table (.csv or .xlsx)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(queryCmd)
}
