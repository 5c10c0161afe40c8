// Package textfile provides the flat-file implementation of the
// storage.Storage interface.
//
// Every dataset is a newline-delimited text file in the data directory:
//
//	students.txt, ps.txt, st.txt   name:password
//	students_under_ps.txt          studentName:supervisorName
//	appointments.txt               2024-05-01 09:30 - Dr Smith with Alice
//	feelings_log.txt               2024-05-01 - Alice - 7
//
// Whole-file rewrites (profiles, assignments) go through a temp file and
// a rename; log-style datasets (appointments, feelings) are appended to.
// There is no locking across processes.
package textfile

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/aanand-mishra/student-logging/internal/config"
	"github.com/aanand-mishra/student-logging/internal/storage"
	"github.com/aanand-mishra/student-logging/internal/types"
)

// Store is the flat-file storage.Storage.
type Store struct {
	profiles     map[types.Role]string
	assignments  string
	appointments string
	feelings     string

	// loc interprets the wall-clock timestamps in the files.
	loc *time.Location
	log *slog.Logger
}

var _ storage.Storage = (*Store)(nil)

// New resolves every file path from cfg and makes sure the data
// directory exists. The files themselves are created lazily on first
// write.
func New(cfg *config.Config, log *slog.Logger) (*Store, error) {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, fmt.Errorf("textfile.New: %w", err)
	}
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("textfile.New: create data dir: %w", err)
	}

	files := cfg.Storage.Files
	path := cfg.Storage.Path
	return &Store{
		profiles: map[types.Role]string{
			types.RoleStudent:            path(files.Students),
			types.RolePersonalSupervisor: path(files.Supervisors),
			types.RoleSeniorTutor:        path(files.SeniorTutors),
		},
		assignments:  path(files.Assignments),
		appointments: path(files.Appointments),
		feelings:     path(files.FeelingsLog),
		loc:          loc,
		log:          log.With(slog.String("component", "textfile")),
	}, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) profileFile(role types.Role) (string, error) {
	f, ok := s.profiles[role]
	if !ok {
		return "", fmt.Errorf("%w: %v", storage.ErrUnknownRole, role)
	}
	return f, nil
}

func (s *Store) skipped(file string, lineNo int, line string) {
	s.log.Debug("skipping malformed line",
		slog.String("file", file),
		slog.Int("line", lineNo),
		slog.String("content", line))
}

// ─────────────────────────────────────────────────────────────────────────────
// Profiles
// ─────────────────────────────────────────────────────────────────────────────

func (s *Store) LoadProfiles(role types.Role) ([]types.UserProfile, error) {
	file, err := s.profileFile(role)
	if err != nil {
		return nil, err
	}
	lines, err := readLines(file)
	if err != nil {
		return nil, fmt.Errorf("LoadProfiles: %w", err)
	}

	profiles := make([]types.UserProfile, 0, len(lines))
	for i, line := range lines {
		p, ok := parseProfile(line)
		if !ok {
			s.skipped(file, i+1, line)
			continue
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// SaveProfiles overwrites the role's file unconditionally. Whatever was
// on disk, including lines LoadProfiles skipped, is replaced.
func (s *Store) SaveProfiles(role types.Role, profiles []types.UserProfile) error {
	file, err := s.profileFile(role)
	if err != nil {
		return err
	}
	lines := make([]string, 0, len(profiles))
	for _, p := range profiles {
		lines = append(lines, formatProfile(p))
	}
	if err := writeLines(file, lines); err != nil {
		return fmt.Errorf("SaveProfiles: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Supervisor assignments
// ─────────────────────────────────────────────────────────────────────────────

func (s *Store) LoadSupervisorOf(studentName string) (string, bool, error) {
	lines, err := readLines(s.assignments)
	if err != nil {
		return "", false, fmt.Errorf("LoadSupervisorOf: %w", err)
	}
	for _, line := range lines {
		st, ok := parseAssignment(line)
		if ok && st.Name == studentName {
			return st.SupervisorName, true, nil
		}
	}
	return "", false, nil
}

// SaveSupervisorPair removes every line keyed by studentName, appends the
// new pairing and rewrites the file. Unrelated lines are kept verbatim.
func (s *Store) SaveSupervisorPair(studentName, supervisorName string) error {
	lines, err := readLines(s.assignments)
	if err != nil {
		return fmt.Errorf("SaveSupervisorPair: %w", err)
	}

	key := studentName + fieldSep
	kept := lines[:0]
	for _, line := range lines {
		if !strings.HasPrefix(line, key) {
			kept = append(kept, line)
		}
	}
	kept = append(kept, formatAssignment(studentName, supervisorName))

	if err := writeLines(s.assignments, kept); err != nil {
		return fmt.Errorf("SaveSupervisorPair: %w", err)
	}
	return nil
}

func (s *Store) LoadStudentsUnder(supervisorName string) ([]types.Student, error) {
	lines, err := readLines(s.assignments)
	if err != nil {
		return nil, fmt.Errorf("LoadStudentsUnder: %w", err)
	}
	students := make([]types.Student, 0)
	for i, line := range lines {
		st, ok := parseAssignment(line)
		if !ok {
			s.skipped(s.assignments, i+1, line)
			continue
		}
		if st.SupervisorName == supervisorName {
			students = append(students, st)
		}
	}
	return students, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Appointments
// ─────────────────────────────────────────────────────────────────────────────

func (s *Store) LoadAppointments() ([]types.Appointment, error) {
	lines, err := readLines(s.appointments)
	if err != nil {
		return nil, fmt.Errorf("LoadAppointments: %w", err)
	}
	appointments := make([]types.Appointment, 0, len(lines))
	for i, line := range lines {
		a, ok := parseAppointment(line, s.loc)
		if !ok {
			s.skipped(s.appointments, i+1, line)
			continue
		}
		appointments = append(appointments, a)
	}
	return appointments, nil
}

// AppendAppointment writes the booking without checking for a clash;
// the flat file has no way to enforce uniqueness.
func (s *Store) AppendAppointment(a types.Appointment) error {
	if err := appendLine(s.appointments, a.String()); err != nil {
		return fmt.Errorf("AppendAppointment: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Feelings
// ─────────────────────────────────────────────────────────────────────────────

func (s *Store) LoadFeelings() ([]types.FeelingEntry, error) {
	lines, err := readLines(s.feelings)
	if err != nil {
		return nil, fmt.Errorf("LoadFeelings: %w", err)
	}
	entries := make([]types.FeelingEntry, 0, len(lines))
	for i, line := range lines {
		e, ok := parseFeeling(line, s.loc)
		if !ok {
			s.skipped(s.feelings, i+1, line)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Store) AppendFeeling(e types.FeelingEntry) error {
	if err := appendLine(s.feelings, e.String()); err != nil {
		return fmt.Errorf("AppendFeeling: %w", err)
	}
	return nil
}
