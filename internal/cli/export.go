package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/MyAgentHubs/logifyer/internal/db"
	"github.com/MyAgentHubs/logifyer/internal/score"
)

var exportFormat string

// journalExport is the backup document written by export and read by import.
// Incidents reference people and categories by their ids within the document.
type journalExport struct {
	Version    int           `json:"version"`
	ExportedAt time.Time     `json:"exported_at"`
	People     []db.Person   `json:"people"`
	Categories []db.Category `json:"categories"`
	Incidents  []db.Incident `json:"incidents"`
	Settings   *db.Settings  `json:"settings,omitempty"`
}

const exportVersion = 1

func buildExport(ctx context.Context, database *db.DB) (*journalExport, error) {
	people, err := database.AllPeople(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := database.AllCategories(ctx)
	if err != nil {
		return nil, err
	}
	incidents, err := database.AllIncidents(ctx)
	if err != nil {
		return nil, err
	}
	doc := &journalExport{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC(),
		People:     people,
		Categories: cats,
		Incidents:  incidents,
	}
	if s, ok, err := database.StoredSettings(ctx); err != nil {
		return nil, err
	} else if ok {
		doc.Settings = &s
	}
	return doc, nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the journal to JSON or Markdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		ctx := cmd.Context()
		doc, err := buildExport(ctx, database)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		switch exportFormat {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		case "markdown", "md":
			return exportMarkdown(ctx, cmd.OutOrStdout(), database, doc)
		default:
			return fmt.Errorf("unknown format %q: use json or markdown", exportFormat)
		}
	},
}

func exportMarkdown(ctx context.Context, w io.Writer, database *db.DB, doc *journalExport) error {
	fmt.Fprintln(w, "# Journal Export")
	fmt.Fprintln(w)
	now := time.Now()
	for _, p := range doc.People {
		total, err := database.PersonScore(ctx, p.ID, now)
		if err != nil {
			return err
		}
		archived := ""
		if p.Archived {
			archived = " (archived)"
		}
		fmt.Fprintf(w, "## %s (%s)%s\n\nScore: %d (%s)\n\n", p.Name, p.RelationshipType, archived, total, score.GradeFor(total))

		incidents, err := database.ListIncidentsByPerson(ctx, p.ID)
		if err != nil {
			return err
		}
		for _, inc := range incidents {
			line := fmt.Sprintf("- %s %s %s %+d", inc.Timestamp.Local().Format("2006-01-02"), inc.CategoryEmoji, inc.CategoryName, inc.Points)
			if inc.IsMajor {
				line += " **major**"
			}
			if inc.Note != nil {
				line += ": " + *inc.Note
			}
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json|markdown")
	rootCmd.AddCommand(exportCmd)
}
