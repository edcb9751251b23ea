package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/MyAgentHubs/logifyer/internal/db"
	"github.com/MyAgentHubs/logifyer/internal/score"
)

var scoreBreakdown bool

var scoreCmd = &cobra.Command{
	Use:   "score [person-id]",
	Short: "Show scores, optionally with a per-incident breakdown",
	Long: `Show every active person's score ranked from best to worst, or one person's
score. With --breakdown each incident's weighted contribution is listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		now := time.Now()

		if len(args) == 0 {
			people, err := database.ListPeople(ctx, false)
			if err != nil {
				return err
			}
			type row struct {
				p     db.Person
				total int
			}
			rows := make([]row, 0, len(people))
			for _, p := range people {
				total, err := database.PersonScore(ctx, p.ID, now)
				if err != nil {
					return err
				}
				rows = append(rows, row{p, total})
			}
			sort.SliceStable(rows, func(i, j int) bool { return rows[i].total > rows[j].total })
			for _, r := range rows {
				fmt.Fprintf(out, "%s %5d  #%-4d %s\n", score.GradeFor(r.total), r.total, r.p.ID, r.p.Name)
			}
			return nil
		}

		id, err := parseID("person", args[0])
		if err != nil {
			return err
		}
		p, err := database.GetPerson(ctx, id)
		if err != nil {
			return err
		}
		total, err := database.PersonScore(ctx, id, now)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d (%s)\n", p.Name, total, score.GradeFor(total))

		if !scoreBreakdown {
			return nil
		}
		settings, err := database.GetSettings(ctx)
		if err != nil {
			return err
		}
		incidents, err := database.ListIncidentsByPerson(ctx, id)
		if err != nil {
			return err
		}
		params := settings.ScoreParams()
		for _, inc := range incidents {
			w := score.Contribution(score.Incident{Points: inc.Points, Timestamp: inc.Timestamp}, params, now)
			fmt.Fprintf(out, "  %+4d -> %+7.2f  %s %s (%s)\n",
				inc.Points, w, inc.CategoryEmoji, inc.CategoryName, inc.Timestamp.Local().Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreBreakdown, "breakdown", false, "List each incident's weighted contribution")
	rootCmd.AddCommand(scoreCmd)
}
