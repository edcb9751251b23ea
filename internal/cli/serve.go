package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MyAgentHubs/logifyer/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio transport)",
	Long:  `Start the logifyer MCP server so an AI client can read and log to the journal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, dbPath, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		slog.Info("logifyer MCP server starting", "db", dbPath)
		fmt.Fprintf(os.Stderr, "logifyer MCP server ready (db: %s)\n", dbPath)

		server := mcp.NewServer(database, dbPath, cfg.MCP)
		return server.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
