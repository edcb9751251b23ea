package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MyAgentHubs/logifyer/internal/db"
)

var importYes bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the journal with a JSON export",
	Long: `Replace the journal with a file written by 'logifyer export --format json'.
The current journal is cleared first; default categories are kept and updated
from the file. Everything happens in one transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireYes(importYes, "replacing the journal"); err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("open file: %w", err)
		}
		var doc journalExport
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}
		if doc.Version != exportVersion {
			return fmt.Errorf("unsupported export version %d", doc.Version)
		}

		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		var people, cats, incidents, skipped int
		err = database.Replace(cmd.Context(), func(im *db.Importer) error {
			personIDs := make(map[int64]int64, len(doc.People))
			for _, p := range doc.People {
				id, err := im.InsertPerson(p)
				if err != nil {
					return err
				}
				personIDs[p.ID] = id
				people++
			}
			categoryIDs := make(map[int64]int64, len(doc.Categories))
			for _, c := range doc.Categories {
				id, err := im.InsertCategory(c)
				if err != nil {
					return err
				}
				categoryIDs[c.ID] = id
				cats++
			}
			for _, inc := range doc.Incidents {
				pid, okP := personIDs[inc.PersonID]
				cid, okC := categoryIDs[inc.CategoryID]
				if !okP || !okC {
					slog.Warn("skipping incident with unknown reference", "incident", inc.ID)
					skipped++
					continue
				}
				inc.PersonID, inc.CategoryID = pid, cid
				if _, err := im.InsertIncident(inc); err != nil {
					return err
				}
				incidents++
			}
			if doc.Settings != nil {
				return im.InsertSettings(*doc.Settings)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Import complete:")
		fmt.Fprintf(out, "  People:     %d\n", people)
		fmt.Fprintf(out, "  Categories: %d\n", cats)
		fmt.Fprintf(out, "  Incidents:  %d\n", incidents)
		if skipped > 0 {
			fmt.Fprintf(out, "  Skipped:    %d (unknown references)\n", skipped)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importYes, "yes", false, "Confirm replacing the journal")
	rootCmd.AddCommand(importCmd)
}
