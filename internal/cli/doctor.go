package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MyAgentHubs/logifyer/internal/db"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check logifyer installation health",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		allOK := true

		check := func(label string, ok bool, detail string) {
			if ok {
				fmt.Fprintf(out, "[OK] %s\n", label)
			} else {
				fmt.Fprintf(out, "[FAIL] %s: %s\n", label, detail)
				allOK = false
			}
		}
		note := func(label string, ok bool, detail string) {
			if ok {
				fmt.Fprintf(out, "[OK] %s\n", label)
			} else {
				fmt.Fprintf(out, "[--] %s: %s\n", label, detail)
			}
		}

		// 1. Storage path
		path, err := dbPath()
		check("Storage path: "+path, err == nil, fmt.Sprintf("%v", err))
		if err != nil {
			return fmt.Errorf("doctor found problems")
		}

		// 2. Database writable
		database, dbErr := db.Open(path)
		check("Database writable", dbErr == nil, fmt.Sprintf("%v", dbErr))
		if dbErr != nil {
			return fmt.Errorf("doctor found problems")
		}
		defer database.Close()
		ctx := cmd.Context()

		// 3. Pragmas
		var journalMode string
		_ = database.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode)
		check("WAL mode enabled", journalMode == "wal" || path == ":memory:", "journal_mode="+journalMode)
		var fk int
		_ = database.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk)
		check("Foreign keys enforced", fk == 1, "foreign_keys=0")

		// 4. Seed data
		stats, err := database.GetStats(ctx)
		check("Default categories present", err == nil && stats.Categories-stats.CustomCategories > 0,
			fmt.Sprintf("stats: %v", err))
		check(fmt.Sprintf("Custom categories within limit (%d/%d)", stats.CustomCategories, db.CustomCategoryLimit),
			stats.CustomCategories <= db.CustomCategoryLimit, "too many custom categories")
		settings, err := database.GetSettings(ctx)
		if err == nil {
			err = settings.Validate()
		}
		check("Settings valid", err == nil, fmt.Sprintf("%v", err))

		// 5. Score latency across every person
		start := time.Now()
		people, err := database.ListPeople(ctx, true)
		if err == nil {
			for _, p := range people {
				if _, err = database.PersonScore(ctx, p.ID, start); err != nil {
					break
				}
			}
		}
		elapsed := time.Since(start)
		check(fmt.Sprintf("Scored %d people in %v", len(people), elapsed.Round(time.Microsecond)), err == nil, fmt.Sprintf("%v", err))

		// 6. Optional integrations
		note("Cloud sync configured", cfg.Remote.Backend == "memory" || (cfg.Remote.URL != "" && cfg.Remote.APIKey != ""),
			"set SUPABASE_URL and SUPABASE_ANON_KEY")
		note("Sync user set", cfg.Account.UserID != "", "pass --user or set LOGIFYER_USER_ID")
		note("AI insights configured", cfg.Insight.APIKey != "", "set OPENAI_API_KEY")

		fmt.Fprintln(out)
		if !allOK {
			return fmt.Errorf("doctor found problems")
		}
		fmt.Fprintln(out, "All checks passed. logifyer is ready.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
