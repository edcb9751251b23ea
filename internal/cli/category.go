package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MyAgentHubs/logifyer/internal/db"
)

var (
	categoryPositive bool
	categoryYes      bool
)

var categoryCmd = &cobra.Command{
	Use:     "category",
	Aliases: []string{"cat"},
	Short:   "Manage incident categories and their weights",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		cats, err := database.ListCategories(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, c := range cats {
			custom := ""
			if c.IsCustom {
				custom = "  (custom)"
			}
			fmt.Fprintf(out, "#%-3d %s %-36s %+4d%s\n", c.ID, c.Emoji, c.Name, c.DefaultPoints, custom)
		}
		return nil
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name> <emoji> <points>",
	Short: "Add a custom category",
	Long: fmt.Sprintf(`Add a custom category. At most %d custom categories may exist.
The sign of points follows --positive; the magnitude is taken as given.

Example:
  logifyer category add "Ghosted me" 👻 4`, db.CustomCategoryLimit),
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := parsePoints(args[2])
		if err != nil {
			return err
		}
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		ctx := cmd.Context()
		if err := database.CheckCustomCategoryLimit(ctx); err != nil {
			if errors.Is(err, db.ErrCustomCategoryLimit) {
				return fmt.Errorf("custom category limit reached (%d); delete one first", db.CustomCategoryLimit)
			}
			return err
		}
		id, err := database.AddCustomCategory(ctx, args[0], args[1], points, categoryPositive)
		if err != nil {
			return fmt.Errorf("add category: %w", err)
		}
		c, err := database.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added #%d %s %s (%+d)\n", c.ID, c.Emoji, c.Name, c.DefaultPoints)
		return nil
	},
}

var categoryWeightCmd = &cobra.Command{
	Use:   "weight <category-id> <points>",
	Short: "Change a category's default weight",
	Long:  `Change a category's default weight. Already logged incidents keep their points.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("category", args[0])
		if err != nil {
			return err
		}
		points, err := parsePoints(args[1])
		if err != nil {
			return err
		}
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		ctx := cmd.Context()
		if err := database.UpdateCategoryWeight(ctx, id, points); err != nil {
			return err
		}
		c, err := database.GetCategory(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s now %+d\n", c.Emoji, c.Name, c.DefaultPoints)
		return nil
	},
}

var categoryResetCmd = &cobra.Command{
	Use:   "reset-weights",
	Short: "Restore the default categories' original weights",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.ResetCategoryWeights(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Default weights restored")
		return nil
	},
}

var categoryRmCmd = &cobra.Command{
	Use:   "rm <category-id>",
	Short: "Delete a category and every incident logged with it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID("category", args[0])
		if err != nil {
			return err
		}
		if err := requireYes(categoryYes, "deleting a category and its incidents"); err != nil {
			return err
		}
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := database.DeleteCategory(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted category #%d\n", id)
		return nil
	},
}

func init() {
	categoryAddCmd.Flags().BoolVar(&categoryPositive, "positive", false, "Positive category (default negative)")
	categoryRmCmd.Flags().BoolVar(&categoryYes, "yes", false, "Confirm deletion")

	categoryCmd.AddCommand(categoryListCmd, categoryAddCmd, categoryWeightCmd, categoryResetCmd, categoryRmCmd)
	rootCmd.AddCommand(categoryCmd)
}
