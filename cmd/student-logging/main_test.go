package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aanand-mishra/student-logging/internal/config"
	"github.com/aanand-mishra/student-logging/internal/storage/sqlite"
	"github.com/aanand-mishra/student-logging/internal/storage/textfile"
	"github.com/aanand-mishra/student-logging/internal/types"
)

// run starts the menu loop on a goroutine; every test must leave nothing
// running behind it.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Env: "dev",
		Storage: config.Storage{
			Backend:     backend,
			DataDir:     dir,
			StoragePath: filepath.Join(dir, "test.db"),
			Files: config.Files{
				Students:     "students.txt",
				Supervisors:  "ps.txt",
				SeniorTutors: "st.txt",
				Assignments:  "students_under_ps.txt",
				Appointments: "appointments.txt",
				FeelingsLog:  "feelings_log.txt",
			},
		},
		Schedule: config.Schedule{Timezone: "UTC"},
		Security: config.Security{PasswordCost: 4},
	}
}

func TestOpenStorage_SelectsBackend(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	text, err := openStorage(testConfig(t, config.BackendText), log)
	require.NoError(t, err)
	defer text.Close()
	assert.IsType(t, &textfile.Store{}, text)

	db, err := openStorage(testConfig(t, config.BackendSQLite), log)
	require.NoError(t, err)
	defer db.Close()
	assert.IsType(t, &sqlite.SQLite{}, db)
}

func TestNewServices_WiresStore(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig(t, config.BackendText)
	store, err := openStorage(cfg, log)
	require.NoError(t, err)

	svc, err := newServices(cfg, store, log)
	require.NoError(t, err)

	_, err = svc.Profiles.Register(types.RoleSeniorTutor, "prof", "pw")
	require.NoError(t, err)
	got, err := store.LoadProfiles(types.RoleSeniorTutor)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0].Password, "$2a$04$"), "cost from config")

	assert.Equal(t, "UTC", svc.Appointments.Location().String())
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		env       string
		wantJSON  bool
		wantDebug bool
	}{
		{"dev", false, true},
		{"staging", true, true},
		{"prod", true, false},
	}

	for _, tc := range tests {
		t.Run(tc.env, func(t *testing.T) {
			var buf bytes.Buffer
			log := setupLogger(tc.env, &buf)
			log.Debug("debug line")
			log.Info("info line")

			out := buf.String()
			assert.Contains(t, out, "info line")
			assert.Equal(t, tc.wantDebug, strings.Contains(out, "debug line"))
			assert.Equal(t, tc.wantJSON, strings.HasPrefix(out, "{"))
		})
	}
}

func TestOpenLog(t *testing.T) {
	w, closeLog, err := openLog("-")
	require.NoError(t, err)
	closeLog()
	assert.NotNil(t, w)

	path := filepath.Join(t.TempDir(), "app.log")
	w, closeLog, err = openLog(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "hello\n")
	require.NoError(t, err)
	closeLog()
	assert.FileExists(t, path)
}

func TestRun_ExitFromMainMenu(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "app.log")
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := fmt.Sprintf("env: dev\nlog_path: %q\nstorage:\n  backend: text\n  data_dir: %q\n", logPath, dir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader("4\n"))
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", cfgPath})
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Main Menu")
	assert.Contains(t, out.String(), "Goodbye!")

	logs, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(logs), "starting student-logging")
	assert.Contains(t, string(logs), "user exited")
}
