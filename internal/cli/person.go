package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MyAgentHubs/logifyer/internal/score"
)

var (
	personRelType  string
	personPhoto    string
	personArchived bool
	personYes      bool
)

var personCmd = &cobra.Command{
	Use:   "person",
	Short: "Manage the people in your journal",
}

var personAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a person",
	Long: `Add a person to the journal.

Example:
  logifyer person add "Alex" --type partner`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		var photo *string
		if personPhoto != "" {
			photo = &personPhoto
		}
		id, err := database.AddPerson(cmd.Context(), args[0], personRelType, photo)
		if err != nil {
			return fmt.Errorf("add person: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added #%d %s\n", id, args[0])
		return nil
	},
}

var personListCmd = &cobra.Command{
	Use:   "list",
	Short: "List people with their current score",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		ctx := cmd.Context()
		people, err := database.ListPeople(ctx, personArchived)
		if err != nil {
			return fmt.Errorf("list people: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(people) == 0 {
			fmt.Fprintln(out, "No people yet. Use 'logifyer person add <name>'.")
			return nil
		}
		now := time.Now()
		for _, p := range people {
			total, err := database.PersonScore(ctx, p.ID, now)
			if err != nil {
				return err
			}
			archived := ""
			if p.Archived {
				archived = " (archived)"
			}
			fmt.Fprintf(out, "#%-4d %-24s %-12s %5d  %s%s\n", p.ID, p.Name, p.RelationshipType, total, score.GradeFor(total), archived)
		}
		return nil
	},
}

var personShowCmd = &cobra.Command{
	Use:   "show <person-id>",
	Short: "Show a person and their incidents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("person", args[0])
		if err != nil {
			return err
		}
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		ctx := cmd.Context()
		p, err := database.GetPerson(ctx, id)
		if err != nil {
			return err
		}
		now := time.Now()
		total, err := database.PersonScore(ctx, id, now)
		if err != nil {
			return err
		}
		incidents, err := database.ListIncidentsByPerson(ctx, id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "#%d %s (%s)\n", p.ID, p.Name, p.RelationshipType)
		fmt.Fprintf(out, "Added:     %s\n", p.CreatedAt.Local().Format("2006-01-02"))
		if p.PhotoURI != nil {
			fmt.Fprintf(out, "Photo:     %s\n", *p.PhotoURI)
		}
		if p.Archived {
			fmt.Fprintln(out, "Archived:  yes")
		}
		fmt.Fprintf(out, "Score:     %d (%s)\n", total, score.GradeFor(total))
		fmt.Fprintf(out, "Incidents: %d\n", len(incidents))
		if len(incidents) > 0 {
			fmt.Fprintln(out)
			printIncidents(out, incidents)
		}
		return nil
	},
}

func archiveCommand(use, short string, archived bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <person-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("person", args[0])
			if err != nil {
				return err
			}
			database, _, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.SetArchived(cmd.Context(), id, archived); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%sd #%d\n", use, id)
			return nil
		},
	}
}

var personRmCmd = &cobra.Command{
	Use:   "rm <person-id>",
	Short: "Delete a person and all of their incidents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("person", args[0])
		if err != nil {
			return err
		}
		if err := requireYes(personYes, "deleting a person and their incidents"); err != nil {
			return err
		}
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.DeletePerson(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
		return nil
	},
}

func init() {
	personAddCmd.Flags().StringVar(&personRelType, "type", "", "Relationship type (default: friend)")
	personAddCmd.Flags().StringVar(&personPhoto, "photo", "", "Photo URI")
	personListCmd.Flags().BoolVar(&personArchived, "archived", false, "Include archived people")
	personRmCmd.Flags().BoolVar(&personYes, "yes", false, "Confirm deletion")

	personCmd.AddCommand(
		personAddCmd,
		personListCmd,
		personShowCmd,
		archiveCommand("archive", "Hide a person from the default list", true),
		archiveCommand("unarchive", "Show an archived person again", false),
		personRmCmd,
	)
	rootCmd.AddCommand(personCmd)
}
