package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/MyAgentHubs/logifyer/internal/db"
)

var (
	incidentCategory int64
	incidentPoints   int
	incidentMajor    bool
	incidentNote     string
	incidentSince    string
	incidentYes      bool
)

var incidentCmd = &cobra.Command{
	Use:     "incident",
	Aliases: []string{"inc"},
	Short:   "Log and manage incidents",
}

var incidentLogCmd = &cobra.Command{
	Use:   "log <person-id>",
	Short: "Log an incident against a person",
	Long: `Log an incident. Points default to the category's current weight; a major
incident is multiplied by the configured major multiplier when it is logged.

Example:
  logifyer incident log 3 --category 4 --major --note "45 minutes late again"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		personID, err := parseID("person", args[0])
		if err != nil {
			return err
		}
		if incidentCategory <= 0 {
			return fmt.Errorf("--category is required (see 'logifyer category list')")
		}
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		ctx := cmd.Context()
		points := incidentPoints
		if !cmd.Flags().Changed("points") {
			cat, err := database.GetCategory(ctx, incidentCategory)
			if err != nil {
				return err
			}
			points = cat.DefaultPoints
		}
		var note *string
		if incidentNote != "" {
			note = &incidentNote
		}

		inc, err := database.LogIncident(ctx, personID, incidentCategory, points, incidentMajor, note)
		if err != nil {
			return fmt.Errorf("log incident: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged #%d: %+d pts\n", inc.ID, inc.Points)
		return nil
	},
}

var incidentListCmd = &cobra.Command{
	Use:   "list <person-id>",
	Short: "List a person's incidents, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		personID, err := parseID("person", args[0])
		if err != nil {
			return err
		}
		start, err := db.ParseSince(incidentSince, time.Now())
		if err != nil {
			return err
		}
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		incidents, err := database.ListIncidentsByPerson(cmd.Context(), personID)
		if err != nil {
			return err
		}
		incidents = db.FilterSince(incidents, start)
		if len(incidents) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No incidents.")
			return nil
		}
		printIncidents(cmd.OutOrStdout(), incidents)
		return nil
	},
}

var incidentRmCmd = &cobra.Command{
	Use:   "rm <incident-id>...",
	Short: "Delete one or more incidents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs("incident", args)
		if err != nil {
			return err
		}
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		if len(ids) == 1 {
			if err := database.DeleteIncident(cmd.Context(), ids[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted incident #%d\n", ids[0])
			return nil
		}
		n, err := database.DeleteIncidents(cmd.Context(), ids)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d incidents\n", n)
		return nil
	},
}

var incidentResetCmd = &cobra.Command{
	Use:   "reset <person-id>",
	Short: "Delete every incident of a person, resetting their score",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		personID, err := parseID("person", args[0])
		if err != nil {
			return err
		}
		if err := requireYes(incidentYes, "resetting a score"); err != nil {
			return err
		}
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		n, err := database.ResetPersonScore(cmd.Context(), personID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d incidents from #%d\n", n, personID)
		return nil
	},
}

var incidentClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every incident in the journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireYes(incidentYes, "clearing all incidents"); err != nil {
			return err
		}
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.ClearIncidents(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All incidents deleted")
		return nil
	},
}

func printIncidents(w io.Writer, incidents []db.Incident) {
	for _, inc := range incidents {
		major := ""
		if inc.IsMajor {
			major = " MAJOR"
		}
		fmt.Fprintf(w, "#%-5d %s  %+4d  %s %s%s\n",
			inc.ID, inc.Timestamp.Local().Format("2006-01-02 15:04"), inc.Points, inc.CategoryEmoji, inc.CategoryName, major)
		if inc.Note != nil {
			fmt.Fprintf(w, "       %s\n", *inc.Note)
		}
	}
}

func init() {
	incidentLogCmd.Flags().Int64VarP(&incidentCategory, "category", "c", 0, "Category id")
	incidentLogCmd.Flags().IntVarP(&incidentPoints, "points", "p", 0, "Base points (default: category weight)")
	incidentLogCmd.Flags().BoolVar(&incidentMajor, "major", false, "Major incident (applies the multiplier)")
	incidentLogCmd.Flags().StringVarP(&incidentNote, "note", "n", "", "Optional note")
	incidentListCmd.Flags().StringVar(&incidentSince, "since", "", "Only incidents since: 24h, 7d, or 2026-02-17")
	incidentResetCmd.Flags().BoolVar(&incidentYes, "yes", false, "Confirm reset")
	incidentClearCmd.Flags().BoolVar(&incidentYes, "yes", false, "Confirm clearing every incident")

	incidentCmd.AddCommand(incidentLogCmd, incidentListCmd, incidentRmCmd, incidentResetCmd, incidentClearCmd)
	rootCmd.AddCommand(incidentCmd)
}
