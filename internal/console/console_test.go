package console

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aanand-mishra/student-logging/internal/appointment"
	"github.com/aanand-mishra/student-logging/internal/config"
	"github.com/aanand-mishra/student-logging/internal/feeling"
	"github.com/aanand-mishra/student-logging/internal/profile"
	"github.com/aanand-mishra/student-logging/internal/storage/textfile"
)

// 2030-06-10 14:00 UTC
var now = func() time.Time { return time.Date(2030, 6, 10, 14, 0, 0, 0, time.UTC) }

type harness struct {
	dir string
	out *bytes.Buffer
	app *App
}

func newHarness(t *testing.T, script ...string) *harness {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.Storage{
			Backend: config.BackendText,
			DataDir: dir,
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
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := textfile.New(cfg, log)
	require.NoError(t, err)

	svc := Services{
		Profiles: profile.New(store, log, profile.WithPasswordCost(bcrypt.MinCost)),
		Appointments: appointment.New(store, log,
			appointment.WithLocation(time.UTC), appointment.WithClock(now)),
		Feelings: feeling.New(store, log,
			feeling.WithLocation(time.UTC), feeling.WithClock(now)),
	}

	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	out := &bytes.Buffer{}
	return &harness{dir: dir, out: out, app: New(in, out, svc, log)}
}

func (h *harness) file(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(h.dir, name))
	require.NoError(t, err)
	return string(b)
}

func TestFullSession(t *testing.T) {
	h := newHarness(t,
		// Supervisor registers and logs straight out.
		"2", "1", "dr-smith", "pw1", "6",

		// Student registers, picks dr-smith, books 09:30, logs a feeling.
		"1", "1", "alice", "pw2", "1",
		"1", "not-a-date", "2030-06-11", "2",
		"4", "11", "7",
		"2",
		"7",

		// Supervisor logs in (one wrong password) and books 09:00 for alice.
		"2", "1", "wrong", "pw1",
		"1",
		"2", "1", "2030-06-11", "1",
		"6",

		// Senior tutor registers and reviews everything.
		"3", "1", "prof", "pw3",
		"1", "2",
		"4",

		"4",
	)

	require.NoError(t, h.app.Run(context.Background()))
	out := h.out.String()

	assert.Contains(t, out, "Profile dr-smith created!")
	assert.Contains(t, out, "Your personal supervisor is now dr-smith!")
	assert.Contains(t, out, "Invalid date format. Please try again.")
	assert.Contains(t, out, "Your appointment with dr-smith is booked for 2030-06-11 09:30")
	assert.Contains(t, out, "Invalid choice. Please try again.")
	assert.Contains(t, out, "Your feeling for today has been logged as 7/10.")
	assert.Contains(t, out, "Incorrect password. Please try again.")
	assert.Contains(t, out, "Access granted for dr-smith!")
	assert.Contains(t, out, "Students under dr-smith:")
	assert.Contains(t, out, "Meeting scheduled with alice.")
	assert.Contains(t, out, "2030-06-10 - alice - 7")
	assert.Contains(t, out, "Goodbye!")

	// Ascending order in the senior tutor's overview.
	_, overview, found := strings.Cut(out, "All Scheduled Appointments:")
	require.True(t, found)
	first := strings.Index(overview, "2030-06-11 09:00 - dr-smith with alice")
	second := strings.Index(overview, "2030-06-11 09:30 - dr-smith with alice")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)

	assert.Equal(t,
		"2030-06-11 09:30 - dr-smith with alice\n2030-06-11 09:00 - dr-smith with alice\n",
		h.file(t, "appointments.txt"))
	assert.Equal(t, "alice:dr-smith\n", h.file(t, "students_under_ps.txt"))
	assert.Equal(t, "2030-06-10 - alice - 7\n", h.file(t, "feelings_log.txt"))
	assert.True(t, strings.HasPrefix(h.file(t, "students.txt"), "alice:$2a$"))
}

func TestStudentWithoutSupervisor(t *testing.T) {
	h := newHarness(t,
		"1", "1", "bob", "pw",
		"1",
		"3",
		"7",
		"4",
	)

	require.NoError(t, h.app.Run(context.Background()))
	out := h.out.String()

	assert.Contains(t, out, "Your Personal Supervisor: None assigned yet")
	assert.Contains(t, out, "No personal supervisors are registered yet.")
	assert.Contains(t, out, "You don't have a personal supervisor assigned.")
}

func TestBookingCanBeCancelled(t *testing.T) {
	h := newHarness(t,
		"2", "1", "dr-smith", "pw", "6",
		"1", "1", "alice", "pw", "1",
		"1", "2030-06-09", "",
		"7",
		"4",
	)

	require.NoError(t, h.app.Run(context.Background()))
	out := h.out.String()

	assert.Contains(t, out, "The date should be today or later. Please try again.")
	assert.Contains(t, out, "Booking cancelled.")
	_, err := os.Stat(filepath.Join(h.dir, "appointments.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDuplicateProfileIsRefused(t *testing.T) {
	h := newHarness(t,
		"3", "1", "prof", "pw", "4",
		"3", "2", "prof", "other", "0",
		"4",
	)

	require.NoError(t, h.app.Run(context.Background()))
	assert.Contains(t, h.out.String(), "a profile with that name already exists")
	assert.Equal(t, 1, strings.Count(h.file(t, "st.txt"), "\n"))
}

func TestEndOfInputStopsCleanly(t *testing.T) {
	tests := []struct {
		name   string
		script []string
	}{
		{"at main menu", nil},
		{"at profile picker", []string{"1"}},
		{"while registering", []string{"3", "1", "prof"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, tc.script...)
			assert.NoError(t, h.app.Run(context.Background()))
		})
	}
}

func TestCancelledContext(t *testing.T) {
	h := newHarness(t, "1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, h.app.Run(ctx))
	assert.Empty(t, h.out.String())
}
