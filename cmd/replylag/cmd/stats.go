package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsInput string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dataset statistics",
	Long: `Load an input table and report how it indexed: record and skip
counts, distinct threads by id shape, and a sample of the known search ids.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ix, skip, err := openDataset(statsInput)
		if err != nil {
			return err
		}

		fmt.Printf("Rows:        %d (%d skipped)\n", skip.Total, skip.Skipped)
		fmt.Printf("Records:     %d\n", ix.Len())
		fmt.Printf("Threads:     %d\n", ix.ThreadCount())
		fmt.Printf("Search ids:  %d\n", ix.SearchIDCount())

		types := ix.ThreadTypeStats()
		if len(types) > 0 {
			fmt.Println("\nThread id shapes:")
			names := make([]string, 0, len(types))
			for name := range types {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("  %-6s %d\n", name, types[name])
			}
		}

		if ids := ix.SearchIDs(); len(ids) > 0 {
			if len(ids) > 10 {
				ids = ids[:10]
			}
			fmt.Println("\nSample search ids:")
			for i, sid := range ids {
				fmt.Printf("  %2d. %s\n", i+1, sid)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsInput, "input", "", "input table (.csv or .xlsx)")
	rootCmd.AddCommand(statsCmd)
}
