package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show journal statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, dbPath, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		stats, err := database.GetStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Storage:    %s\n", dbPath)
		fmt.Fprintf(out, "People:     %d (%d archived)\n", stats.People, stats.ArchivedPeople)
		fmt.Fprintf(out, "Categories: %d (%d custom)\n", stats.Categories, stats.CustomCategories)
		fmt.Fprintf(out, "Incidents:  %d\n", stats.Incidents)
		fmt.Fprintf(out, "Insights:   %d cached\n", stats.CachedInsights)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
