package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points Load at an empty directory so no stray studykit.yaml or
// .env leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STUDYKIT_DATA_DIR", dir)
	for _, key := range []string{
		"STUDYKIT_LOG_LEVEL", "STUDYKIT_LOG_FORMAT",
		"STUDYKIT_DATABASE_DRIVER", "STUDYKIT_DATABASE_PATH", "STUDYKIT_DATABASE_URL",
		"STUDYKIT_POMODORO_WORK_MINUTES", "STUDYKIT_POMODORO_LONG_BREAK",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(WithEnvFile(filepath.Join(dir, "missing.env")))
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, filepath.Join(dir, "flashcard.db"), cfg.Database.Path)
	assert.Equal(t, 25, cfg.Pomodoro.WorkMinutes)
	assert.Equal(t, 5, cfg.Pomodoro.ShortBreak)
	assert.Equal(t, 15, cfg.Pomodoro.LongBreak)
	assert.Equal(t, 4, cfg.Pomodoro.CyclesBeforeLong)
}

func TestLoadEnvironment(t *testing.T) {
	dir := isolate(t)
	t.Setenv("STUDYKIT_LOG_LEVEL", "DEBUG")
	t.Setenv("STUDYKIT_LOG_FORMAT", "json")
	t.Setenv("STUDYKIT_DATABASE_DRIVER", "postgres")
	t.Setenv("STUDYKIT_DATABASE_URL", "postgres://u:p@localhost:5432/study")
	t.Setenv("STUDYKIT_POMODORO_WORK_MINUTES", "50")

	cfg, err := Load(WithEnvFile(filepath.Join(dir, "missing.env")))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@localhost:5432/study", cfg.Database.URL)
	assert.Equal(t, 50, cfg.Pomodoro.WorkMinutes)
}

func TestLoadConfigFileAndOverrides(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "studykit.yaml"), []byte(`
log:
  level: info
database:
  path: /tmp/other.db
pomodoro:
  short_break: 10
  long_break: 20
`), 0644))

	cfg, err := Load(
		WithEnvFile(filepath.Join(dir, "missing.env")),
		WithOverride("log.level", "error"),
	)
	require.NoError(t, err)

	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
	assert.Equal(t, 10, cfg.Pomodoro.ShortBreak)
	assert.Equal(t, 20, cfg.Pomodoro.LongBreak)
	assert.Equal(t, 25, cfg.Pomodoro.WorkMinutes)
}

func TestLoadEnvFile(t *testing.T) {
	dir := isolate(t)
	// godotenv never overrides a variable that is already set.
	require.NoError(t, os.Unsetenv("STUDYKIT_LOG_FORMAT"))

	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("STUDYKIT_LOG_FORMAT=json\n"), 0644))

	cfg, err := Load(WithEnvFile(envFile))
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown log level", map[string]string{"STUDYKIT_LOG_LEVEL": "loud"}},
		{"unknown driver", map[string]string{"STUDYKIT_DATABASE_DRIVER": "oracle"}},
		{"server driver without url", map[string]string{"STUDYKIT_DATABASE_DRIVER": "mysql"}},
		{"long break not longer", map[string]string{"STUDYKIT_POMODORO_LONG_BREAK": "5"}},
		{"zero work minutes", map[string]string{"STUDYKIT_POMODORO_WORK_MINUTES": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(WithEnvFile(filepath.Join(dir, "missing.env")))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(
		WithEnvFile(filepath.Join(dir, "missing.env")),
		WithConfigFile(filepath.Join(dir, "nope.yaml")),
	)
	assert.Error(t, err)
}
