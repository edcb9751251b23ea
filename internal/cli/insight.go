package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MyAgentHubs/logifyer/internal/insight"
)

var (
	insightForce  bool
	insightScript []string
)

var insightCmd = &cobra.Command{
	Use:   "insight <person-id>",
	Short: "Generate an AI analysis of a person, or a conversation script",
	Long: `Generate a short analysis of a person's journal. Analyses are cached until
new incidents are logged or the cache expires; --force regenerates.

With --script, draft a plan for a difficult conversation about the given incidents.

Example:
  logifyer insight 3
  logifyer insight 3 --script 12,15,19`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		personID, err := parseID("person", args[0])
		if err != nil {
			return err
		}
		scriptIDs, err := parseIDs("incident", insightScript)
		if err != nil {
			return err
		}
		opts := []insight.OpenAIOption{}
		if cfg.Insight.BaseURL != "" {
			opts = append(opts, insight.WithBaseURL(cfg.Insight.BaseURL))
		}
		completer, err := insight.NewOpenAI(cfg.Insight.APIKey, cfg.Insight.Model, opts...)
		if err != nil {
			return fmt.Errorf("%w (set OPENAI_API_KEY or [insight] api_key)", err)
		}

		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		svc := insight.NewService(database, completer,
			insight.WithCacheTTL(cfg.Insight.CacheTTL()),
			insight.WithMaxTokens(cfg.Insight.MaxTokens),
		)
		out := cmd.OutOrStdout()

		if len(scriptIDs) > 0 {
			script, err := svc.ConfrontationScript(cmd.Context(), personID, scriptIDs)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, script)
			return nil
		}

		res, err := svc.PersonInsights(cmd.Context(), personID, insightForce)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, res.Content)
		if res.Cached {
			fmt.Fprintf(out, "\n(cached, generated %s)\n", res.GeneratedAt.Local().Format("2006-01-02"))
		}
		return nil
	},
}

func init() {
	insightCmd.Flags().BoolVar(&insightForce, "force", false, "Ignore the cache")
	insightCmd.Flags().StringSliceVar(&insightScript, "script", nil, "Incident ids for a conversation script")
	rootCmd.AddCommand(insightCmd)
}
