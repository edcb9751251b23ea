package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	setMultiplier int
	setDecay      int
	setRecency    bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change scoring settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show scoring settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		s, err := database.GetSettings(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Major multiplier: x%d\n", s.MajorMultiplier)
		if s.TimeDecayMonths == 0 {
			fmt.Fprintln(out, "Time decay:       off")
		} else {
			fmt.Fprintf(out, "Time decay:       after %d months\n", s.TimeDecayMonths)
		}
		fmt.Fprintf(out, "Recency boost:    %t\n", s.RecencyBoostEnabled)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change scoring settings",
	Long: `Change scoring settings. Only the flags given are changed.
A new major multiplier applies to incidents logged from now on.

Example:
  logifyer settings set --multiplier 5 --decay 0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if !flags.Changed("multiplier") && !flags.Changed("decay") && !flags.Changed("recency") {
			return fmt.Errorf("nothing to change: pass --multiplier, --decay or --recency")
		}
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		ctx := cmd.Context()
		s, err := database.GetSettings(ctx)
		if err != nil {
			return err
		}
		if flags.Changed("multiplier") {
			s.MajorMultiplier = setMultiplier
		}
		if flags.Changed("decay") {
			s.TimeDecayMonths = setDecay
		}
		if flags.Changed("recency") {
			s.RecencyBoostEnabled = setRecency
		}
		if err := database.UpdateSettings(ctx, s); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Settings saved")
		return nil
	},
}

func init() {
	settingsSetCmd.Flags().IntVar(&setMultiplier, "multiplier", 3, "Major incident multiplier (>= 1)")
	settingsSetCmd.Flags().IntVar(&setDecay, "decay", 6, "Months before incidents start to fade (0 disables)")
	settingsSetCmd.Flags().BoolVar(&setRecency, "recency", true, "Weigh incidents from the last 30 days 1.5x")

	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
