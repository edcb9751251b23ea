package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MyAgentHubs/logifyer/internal/db"
	"github.com/MyAgentHubs/logifyer/internal/locate"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a project-local journal in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := locate.InitProject(".", cfg.Storage.Profile)
		if err != nil {
			return err
		}

		gitignore := `# logifyer journal (private, binary)
journal.db
journal-*.db
*.db-wal
*.db-shm
# Exports are exempt so you can commit them deliberately
!journal-export.json
`
		if err := os.WriteFile(filepath.Join(locate.DirName, ".gitignore"), []byte(gitignore), 0o644); err != nil {
			return fmt.Errorf("write .gitignore: %w", err)
		}

		// Open once so schema, default categories and settings exist.
		database, err := db.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open db %s: %w", dbPath, err)
		}
		database.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Initialized logifyer journal in %s/\n", locate.DirName)
		fmt.Fprintf(out, "Database: %s\n\n", dbPath)
		fmt.Fprintln(out, "Next: logifyer person add <name>")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
