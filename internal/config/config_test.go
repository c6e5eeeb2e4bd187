package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "http://localhost:3000", cfg.PublicURL)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.InactiveTTL)
	assert.Equal(t, time.Minute, cfg.PruneInterval)
	assert.Equal(t, "pt", cfg.Locale)
	assert.Equal(t, 20.0, cfg.ActionRate)
	assert.Equal(t, 40, cfg.ActionBurst)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("INACTIVE_ROOM_TTL", "30s")
	t.Setenv("OBJECTIVE_LOCALE", "en")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.InactiveTTL)
	assert.Equal(t, "en", cfg.Locale)
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("RULESET_DIR=/srv/rules\n"), 0o600))
	t.Setenv("RULESET_DIR", "")
	require.NoError(t, os.Unsetenv("RULESET_DIR"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/rules", cfg.RulesetDir)
	require.NoError(t, os.Unsetenv("RULESET_DIR"))
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value, message string
	}{
		{"INACTIVE_ROOM_TTL", "soon", "parse env"},
		{"INACTIVE_ROOM_TTL", "0s", "INACTIVE_ROOM_TTL must be positive"},
		{"OBJECTIVE_LOCALE", "fr", "OBJECTIVE_LOCALE"},
		{"LOG_FORMAT", "xml", "LOG_FORMAT"},
		{"ACTION_BURST", "0", "ACTION_BURST"},
	}
	for _, tc := range tests {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load(missingEnvFile(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}
