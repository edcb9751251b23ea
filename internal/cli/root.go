package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MyAgentHubs/logifyer/internal/config"
	"github.com/MyAgentHubs/logifyer/internal/db"
	"github.com/MyAgentHubs/logifyer/internal/locate"
)

var (
	profileFlag string
	cfgFile     string
	userFlag    string
	remoteFlag  string
	verbose     bool
	cfg         config.Config
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "logifyer",
	Short: "Relationship journal with decaying scores and cloud sync",
	Long: `logifyer keeps a private journal of how the people in your life treat you.
Log incidents against categories, and each person gets a score where recent
incidents weigh more and old ones fade.

Run 'logifyer init' in a directory to keep a project-local journal.
Run 'logifyer sync signin' to back the journal up to your cloud account.`,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return initConfig() },
}

// Execute runs the root command.
func Execute(version string) {
	rootCmd.Version = version
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&profileFlag, "profile", "", "Named journal profile (e.g. 'work', 'family')")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/logifyer/config.toml)")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "Account user id for sync (overrides config)")
	rootCmd.PersistentFlags().StringVar(&remoteFlag, "remote", "", "Remote backend: rest|memory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

func initConfig() error {
	path := cfgFile
	if path == "" {
		p, _ := locate.ConfigPath()
		path = p
	}
	var err error
	cfg, err = config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config load error: %v\n", err)
		cfg = config.Default()
	}
	if profileFlag != "" {
		cfg.Storage.Profile = profileFlag
	}
	if userFlag != "" {
		cfg.Account.UserID = userFlag
	}
	if remoteFlag != "" {
		cfg.Remote.Backend = remoteFlag
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	setupLogging(cfg.Log)
	return nil
}

func setupLogging(lc config.LogConfig) {
	level := slog.LevelWarn
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if lc.Format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// dbPath resolves the journal location for the current profile.
func dbPath() (string, error) {
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path, nil
	}
	return locate.FindDB(cfg.Storage.Profile)
}

// openDB opens the journal for the current profile.
func openDB() (*db.DB, string, error) {
	path, err := dbPath()
	if err != nil {
		return nil, "", fmt.Errorf("find db: %w", err)
	}
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open db %s: %w", path, err)
	}
	return database, path, nil
}

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, s)
	}
	return id, nil
}

// parsePoints accepts a whole signed integer and nothing else.
func parsePoints(s string) (int, error) {
	points, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid points %q: must be a whole number", s)
	}
	return points, nil
}

func parseIDs(kind string, args []string) ([]int64, error) {
	var ids []int64
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			id, err := parseID(kind, part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// requireYes gates destructive commands behind an explicit --yes.
func requireYes(yes bool, action string) error {
	if !yes {
		return fmt.Errorf("%s is irreversible; re-run with --yes to confirm", action)
	}
	return nil
}
