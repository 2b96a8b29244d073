package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mailscan/replylag/internal/api"
)

var serveInput string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve correlation queries over HTTP",
	Long: `Load an input table once and serve correlation queries over HTTP.

Endpoints:
  GET  /health
  GET  /api/v1/stats
  GET  /api/v1/correlate/{searchID}
  POST /api/v1/correlate        {"search_ids": ["..."]}

The index is immutable for the lifetime of the server; restart to pick up a
new table. Configure port, bind address and API key under [server] in
config.toml. Use Ctrl+C to stop gracefully.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, ix, skip, err := openDataset(serveInput)
		if err != nil {
			return err
		}

		info := api.DatasetInfo{
			Records:     ix.Len(),
			Threads:     ix.ThreadCount(),
			SearchIDs:   ix.SearchIDCount(),
			SkippedRows: skip.Skipped,
			ThreadTypes: ix.ThreadTypeStats(),
		}
		server := api.NewServer(cfg, engine, info, logger)

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveInput, "input", "", "input table (.csv or .xlsx)")
	rootCmd.AddCommand(serveCmd)
}
