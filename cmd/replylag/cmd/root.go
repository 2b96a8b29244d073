package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mailscan/replylag/internal/config"
	"github.com/mailscan/replylag/internal/correlate"
	"github.com/mailscan/replylag/internal/index"
	"github.com/mailscan/replylag/internal/record"
	"github.com/mailscan/replylag/internal/table"
)

var (
	cfgFile string
	homeDir string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "replylag",
	Short: "Email reply-latency analyzer",
	Long: `replylag measures response latency inside email conversation threads.

It consumes a tabular export of (filename, timestamp) pairs, derives thread
and search identifiers from the filename text, and for each queried search id
finds the nearest subsequent message that constitutes a reply.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))

		var err error
		cfg, err = config.Load(cfgFile, homeDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command with a background context.
// Prefer ExecuteContext for signal-aware execution.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the given context, enabling
// graceful shutdown when the context is cancelled.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.replylag/config.toml)")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "replylag home directory (default: ~/.replylag or $REPLYLAG_HOME)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// columnAliases merges the built-in header keywords with any configured ones.
func columnAliases() table.ColumnAliases {
	aliases := table.DefaultAliases()
	aliases.Filename = append(aliases.Filename, cfg.Input.FilenameColumns...)
	aliases.Time = append(aliases.Time, cfg.Input.TimeColumns...)
	return aliases
}

// resolveInput picks the input table path: the --input flag when given,
// otherwise the configured default.
func resolveInput(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.Input.File != "" {
		return cfg.Input.File, nil
	}
	return "", fmt.Errorf("no input table: pass --input or set [input] file in %s", cfg.ConfigFilePath())
}

// openDataset loads an input table, builds the thread index, and returns an
// engine over it together with the normalization stats.
func openDataset(inputFlag string) (*correlate.Engine, *index.Index, record.SkipStats, error) {
	path, err := resolveInput(inputFlag)
	if err != nil {
		return nil, nil, record.SkipStats{}, err
	}

	records, stats, err := table.LoadRecords(path, columnAliases())
	if err != nil {
		return nil, nil, record.SkipStats{}, fmt.Errorf("load %s: %w", path, err)
	}

	ix := index.Build(records)
	logger.Info("dataset loaded",
		"input", path,
		"rows", stats.Total,
		"records", stats.Kept,
		"skipped", stats.Skipped,
		"threads", ix.ThreadCount(),
		"search_ids", ix.SearchIDCount(),
	)
	return correlate.NewEngine(ix, logger), ix, stats, nil
}
