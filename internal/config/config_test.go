package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, o := range envOverrides {
		t.Setenv(o.name, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 15*time.Second, cfg.Remote.Timeout())
	assert.Equal(t, 24*time.Hour, cfg.Insight.CacheTTL())
}

func TestLoad_EmptyPath(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "rest", cfg.Remote.Backend)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[account]
user_id = "user-1"

[remote]
url = "https://abc.supabase.co"
api_key = "anon"
timeout_seconds = 5

[insight]
cache_hours = 6

[log]
level = "debug"
format = "json"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "user-1", cfg.Account.UserID)
	assert.Equal(t, "https://abc.supabase.co", cfg.Remote.URL)
	assert.Equal(t, 5*time.Second, cfg.Remote.Timeout())
	assert.Equal(t, 5, cfg.Remote.Burst)
	assert.Equal(t, 6*time.Hour, cfg.Insight.CacheTTL())
	assert.Equal(t, "gpt-4o-mini", cfg.Insight.Model)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[remote]\nurl = \"https://file.example\"\n"), 0o644))

	t.Setenv("SUPABASE_URL", "https://env.example")
	t.Setenv("LOGIFYER_USER_ID", "env-user")
	t.Setenv("OPENAI_MODEL", "gpt-4o")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example", cfg.Remote.URL)
	assert.Equal(t, "env-user", cfg.Account.UserID)
	assert.Equal(t, "gpt-4o", cfg.Insight.Model)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cases := map[string]string{
		"backend": "[remote]\nbackend = \"ftp\"\n",
		"level":   "[log]\nlevel = \"loud\"\n",
		"format":  "[log]\nformat = \"xml\"\n",
		"syntax":  "[remote\nurl = 1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".toml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
