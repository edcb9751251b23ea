package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// journalConfig writes a config file that pins storage to a fresh path in dir.
func journalConfig(t *testing.T, dir, name string) string {
	t.Helper()
	for _, k := range []string{"SUPABASE_URL", "SUPABASE_ANON_KEY", "SUPABASE_ACCESS_TOKEN", "LOGIFYER_USER_ID", "LOGIFYER_PROFILE", "OPENAI_API_KEY"} {
		t.Setenv(k, "")
	}
	path := filepath.Join(dir, name+".toml")
	body := "[storage]\npath = " + `"` + filepath.ToSlash(filepath.Join(dir, name+".db")) + `"` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// resetFlags restores every flag to its default; cobra keeps parsed values between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// run executes the root command and returns its stdout.
func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_LogAndScore(t *testing.T) {
	cfgPath := journalConfig(t, t.TempDir(), "journal")

	out, err := run(t, cfgPath, "person", "add", "Alex", "--type", "partner")
	require.NoError(t, err)
	assert.Contains(t, out, "Added #1 Alex")

	// Category 9 is "Had your back" (+10).
	out, err = run(t, cfgPath, "incident", "log", "1", "-c", "9", "-n", "drove me to the airport")
	require.NoError(t, err)
	assert.Contains(t, out, "+10 pts")

	out, err = run(t, cfgPath, "person", "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Score:     15 (C)")
	assert.Contains(t, out, "drove me to the airport")

	_, err = run(t, cfgPath, "incident", "log", "1", "-c", "9", "-p", "-3", "-n", "")
	assert.Error(t, err, "negative points on a positive category")
}

func TestCLI_DestructiveCommandsNeedYes(t *testing.T) {
	cfgPath := journalConfig(t, t.TempDir(), "journal")

	_, err := run(t, cfgPath, "sync", "signout")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestCLI_ExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := journalConfig(t, dir, "source")
	dst := journalConfig(t, dir, "target")

	_, err := run(t, src, "person", "add", "Blake", "--type", "friend")
	require.NoError(t, err)
	_, err = run(t, src, "incident", "log", "1", "-c", "1", "-p", "-5", "-n", "")
	require.NoError(t, err)

	exported, err := run(t, src, "export", "--format", "json")
	require.NoError(t, err)
	file := filepath.Join(dir, "export.json")
	require.NoError(t, os.WriteFile(file, []byte(exported), 0o600))

	out, err := run(t, dst, "import", file, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "People:     1")
	assert.Contains(t, out, "Incidents:  1")

	out, err = run(t, dst, "person", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Blake")
}

func TestCLI_SyncSignInUploadsToEmptyRemote(t *testing.T) {
	dir := t.TempDir()
	cfgPath := journalConfig(t, dir, "journal")
	metricsPath := filepath.Join(dir, "sync.prom")

	_, err := run(t, cfgPath, "person", "add", "Casey", "--type", "friend")
	require.NoError(t, err)

	out, err := run(t, cfgPath, "--remote", "memory", "--user", "user-1", "sync", "signin", "--metrics-file", metricsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Sync local_to_cloud: 1 people")

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "logifyer_sync_runs_total")
}

func TestCLI_SyncPushRefusesWhenCloudHasData(t *testing.T) {
	cfgPath := journalConfig(t, t.TempDir(), "journal")
	sync := []string{"--remote", "memory", "--user", "push-user", "sync"}

	_, err := run(t, cfgPath, "person", "add", "Dana", "--type", "friend")
	require.NoError(t, err)

	out, err := run(t, cfgPath, append(sync, "push")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Sync local_to_cloud: 1 people")

	_, err = run(t, cfgPath, append(sync, "push")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote already holds data")

	out, err = run(t, cfgPath, append(sync, "pull", "--yes")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Sync cloud_to_local: 1 people")

	_, err = run(t, cfgPath, append(sync, "push", "--yes")...)
	require.NoError(t, err)
	out, err = run(t, cfgPath, append(sync, "pull", "--yes")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Sync cloud_to_local: 2 people")
}

func TestParsePoints(t *testing.T) {
	for _, s := range []string{"5", "-10", " 3 ", "+4"} {
		_, err := parsePoints(s)
		assert.NoError(t, err, s)
	}
	for _, s := range []string{"5abc", "4.5", "", "ten", "0x10"} {
		_, err := parsePoints(s)
		assert.Error(t, err, s)
	}
	n, err := parsePoints("-7")
	require.NoError(t, err)
	assert.Equal(t, -7, n)
}

func TestCLI_CategoryRejectsMalformedPoints(t *testing.T) {
	cfgPath := journalConfig(t, t.TempDir(), "journal")

	_, err := run(t, cfgPath, "category", "add", "Ghosted", "👻", "5abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid points")

	_, err = run(t, cfgPath, "category", "weight", "1", "7abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid points")

	out, err := run(t, cfgPath, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Categories: 10 (0 custom)")
}
