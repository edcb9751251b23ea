package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/MyAgentHubs/logifyer/internal/cloudsync"
	"github.com/MyAgentHubs/logifyer/internal/metrics"
	"github.com/MyAgentHubs/logifyer/internal/remote"
)

var (
	syncMetricsFile string
	syncYes         bool
)

// memoryRemote backs --remote memory for the life of the process.
var memoryRemote = remote.NewMemory()

// newRemoteStore builds the configured remote backend.
func newRemoteStore() (remote.Store, error) {
	switch cfg.Remote.Backend {
	case "memory":
		return memoryRemote, nil
	case "rest", "":
		return remote.NewClient(remote.ClientConfig{
			BaseURL:           cfg.Remote.URL,
			APIKey:            cfg.Remote.APIKey,
			AccessToken:       cfg.Remote.AccessToken,
			Timeout:           cfg.Remote.Timeout(),
			RequestsPerSecond: cfg.Remote.RequestsPerSecond,
			Burst:             cfg.Remote.Burst,
		})
	default:
		return nil, fmt.Errorf("unknown remote backend %q", cfg.Remote.Backend)
	}
}

// withCoordinator opens the journal and a coordinator, runs fn, then writes metrics
// when --metrics-file is set.
func withCoordinator(fn func(c *cloudsync.Coordinator) error) error {
	database, _, err := openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	rs, err := newRemoteStore()
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	m, err := metrics.NewSync(reg)
	if err != nil {
		return err
	}
	c := cloudsync.New(database, rs,
		cloudsync.WithMetrics(m),
		cloudsync.WithCallTimeout(cfg.Remote.Timeout()),
	)

	runErr := fn(c)
	if syncMetricsFile != "" {
		if err := prometheus.WriteToTextfile(syncMetricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return runErr
}

func requireUser() (string, error) {
	if cfg.Account.UserID == "" {
		return "", fmt.Errorf("%w: pass --user, set LOGIFYER_USER_ID or [account] user_id", cloudsync.ErrNoUser)
	}
	return cfg.Account.UserID, nil
}

func printReport(w io.Writer, r cloudsync.Report) {
	fmt.Fprintf(w, "Sync %s: %d people, %d categories, %d incidents", r.Direction, r.People, r.Categories, r.Incidents)
	if r.Settings {
		fmt.Fprint(w, ", settings")
	}
	fmt.Fprintln(w)
	if r.Skipped > 0 || r.Failed > 0 {
		fmt.Fprintf(w, "  %d skipped, %d failed (see log)\n", r.Skipped, r.Failed)
	}
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Back up or restore the journal with your cloud account",
	Long: `Sync replaces one side with the other: it never merges.

  signin   pull from the cloud if it holds data for the user, otherwise upload
  push     upload the local journal
  pull     replace the local journal with the cloud copy
  signout  clear the local journal (default categories are kept)`,
}

var syncSignInCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sync after signing in, choosing the direction automatically",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser()
		if err != nil {
			return err
		}
		return withCoordinator(func(c *cloudsync.Coordinator) error {
			_, report, err := c.SignIn(cmd.Context(), user)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		})
	},
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the local journal",
	Long: `Upload the local journal under fresh cloud ids. If the cloud already holds
people for the user the upload is refused, since a second copy would be added
next to the first; pass --yes to upload anyway.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser()
		if err != nil {
			return err
		}
		return withCoordinator(func(c *cloudsync.Coordinator) error {
			report, err := c.Push(cmd.Context(), user, syncYes)
			if errors.Is(err, cloudsync.ErrRemoteHasData) {
				return fmt.Errorf("%w; use 'sync pull --yes' to restore it or re-run with --yes to upload a second copy", err)
			}
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		})
	},
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the local journal with the cloud copy",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := requireUser()
		if err != nil {
			return err
		}
		if err := requireYes(syncYes, "replacing the local journal"); err != nil {
			return err
		}
		return withCoordinator(func(c *cloudsync.Coordinator) error {
			report, err := c.CloudToLocal(cmd.Context(), user)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		})
	},
}

var syncSignOutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Clear the local journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireYes(syncYes, "clearing the local journal"); err != nil {
			return err
		}
		database, _, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		// Sign-out never talks to the remote.
		c := cloudsync.New(database, remote.NewMemory())
		if err := c.SignOut(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Local journal cleared")
		return nil
	},
}

func init() {
	syncCmd.PersistentFlags().StringVar(&syncMetricsFile, "metrics-file", "", "Write sync metrics in Prometheus text format to this file")
	syncPushCmd.Flags().BoolVar(&syncYes, "yes", false, "Upload even if the cloud already holds data")
	syncPullCmd.Flags().BoolVar(&syncYes, "yes", false, "Confirm replacing local data")
	syncSignOutCmd.Flags().BoolVar(&syncYes, "yes", false, "Confirm clearing local data")

	syncCmd.AddCommand(syncSignInCmd, syncPushCmd, syncPullCmd, syncSignOutCmd)
	rootCmd.AddCommand(syncCmd)
}
