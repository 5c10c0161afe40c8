package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads, restoring them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_PATH", "ENV", "LOG_PATH",
		"STORAGE_BACKEND", "DATA_DIR", "STORAGE_PATH", "SUBSTRING_NAME_MATCH",
		"SCHEDULE_DAY_START", "SCHEDULE_DAY_END", "SCHEDULE_SLOT_LENGTH", "SCHEDULE_TIMEZONE",
		"PASSWORD_COST", "PLAINTEXT_PASSWORDS",
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "student-logging.log", cfg.LogPath)
	assert.Equal(t, BackendText, cfg.Storage.Backend)
	assert.Equal(t, ".", cfg.Storage.DataDir)
	assert.False(t, cfg.Storage.SubstringNameMatch)
	assert.Equal(t, Files{
		Students:     "students.txt",
		Supervisors:  "ps.txt",
		SeniorTutors: "st.txt",
		Assignments:  "students_under_ps.txt",
		Appointments: "appointments.txt",
		FeelingsLog:  "feelings_log.txt",
	}, cfg.Storage.Files)
	assert.Equal(t, 9*time.Hour, cfg.Schedule.DayStart)
	assert.Equal(t, 17*time.Hour, cfg.Schedule.DayEnd)
	assert.Equal(t, 30*time.Minute, cfg.Schedule.SlotLength)
	assert.Zero(t, cfg.Security.PasswordCost)

	loc, err := cfg.Schedule.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `
env: prod
storage:
  backend: sqlite
  data_dir: /var/lib/student-logging
  substring_name_match: true
schedule:
  day_end: 16h
  timezone: UTC
security:
  password_cost: 6
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.True(t, cfg.Storage.SubstringNameMatch)
	assert.Equal(t, 16*time.Hour, cfg.Schedule.DayEnd)
	assert.Equal(t, 9*time.Hour, cfg.Schedule.DayStart, "unset keys keep their default")
	assert.Equal(t, 6, cfg.Security.PasswordCost)
	assert.Equal(t, "/var/lib/student-logging/ps.txt", cfg.Storage.Path(cfg.Storage.Files.Supervisors))

	// The environment wins over the file.
	t.Setenv("STORAGE_BACKEND", "text")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendText, cfg.Storage.Backend)

	// CONFIG_PATH is used when no path is passed.
	t.Setenv("CONFIG_PATH", path)
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown backend", "storage:\n  backend: postgres\n"},
		{"unknown env", "env: qa\n"},
		{"day ends before it starts", "schedule:\n  day_start: 10h\n  day_end: 9h\n"},
		{"day past midnight", "schedule:\n  day_end: 25h\n"},
		{"bad timezone", "schedule:\n  timezone: Mars/Olympus_Mons\n"},
		{"bcrypt cost too low", "security:\n  password_cost: 2\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			_, err := Load(writeYAML(t, tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "does not exist")
}

func TestStoragePath(t *testing.T) {
	s := Storage{DataDir: "data"}
	assert.Equal(t, filepath.Join("data", "students.txt"), s.Path("students.txt"))
	assert.Equal(t, "/abs/students.txt", s.Path("/abs/students.txt"))
}
