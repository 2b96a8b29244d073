package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Config file:\t%s\n", cfg.ConfigFilePath())
		fmt.Fprintf(w, "Home dir:\t%s\n", cfg.HomeDir)
		fmt.Fprintf(w, "Input file:\t%s\n", orUnset(cfg.Input.File))
		fmt.Fprintf(w, "Scan read limit:\t%d\n", cfg.Scan.ReadLimit)
		fmt.Fprintf(w, "API bind:\t%s:%d\n", cfg.Server.BindAddr, cfg.Server.APIPort)
		fmt.Fprintf(w, "API key:\t%s\n", maskKey(cfg.Server.APIKey))
		return w.Flush()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Create the home directory (owner-only, since the config may hold an
API key) and write a commented starter config.toml into it. Fails if the
file already exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.WriteDefault(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", cfg.ConfigFilePath())
		return nil
	},
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func maskKey(key string) string {
	if key == "" {
		return "(unset)"
	}
	return "(set)"
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
