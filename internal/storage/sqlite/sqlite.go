// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. Unlike the flat files it also gives us transactions and a
// UNIQUE constraint, so two processes can no longer double-book a slot.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aanand-mishra/student-logging/internal/config"
	"github.com/aanand-mishra/student-logging/internal/storage"
	"github.com/aanand-mishra/student-logging/internal/types"

	"github.com/mattn/go-sqlite3"
)

// SQLite is the database implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db  *sql.DB
	loc *time.Location
}

var _ storage.Storage = (*SQLite)(nil)

// Schema:
//
//	profiles      role + name + password, kept in insertion order (id)
//	assignments   one row per student (UNIQUE); reassigning replaces it
//	appointments  slot is UNIQUE: the database itself refuses double-booking
//	feelings      one row per logged rating
//
// Timestamps are stored as the same wall-clock text the flat files use,
// so both backends agree on what "the same slot" means.
const schema = `
	CREATE TABLE IF NOT EXISTS profiles (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		role     INTEGER NOT NULL,
		name     TEXT    NOT NULL,
		password TEXT    NOT NULL
	);
	CREATE INDEX IF NOT EXISTS profiles_role ON profiles (role);

	CREATE TABLE IF NOT EXISTS assignments (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		student    TEXT NOT NULL UNIQUE,
		supervisor TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS appointments (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		slot       TEXT NOT NULL UNIQUE,
		supervisor TEXT NOT NULL,
		student    TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS feelings (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		day     TEXT    NOT NULL,
		student TEXT    NOT NULL,
		rating  INTEGER NOT NULL
	);
`

// New opens the SQLite database at cfg.Storage.StoragePath, creates the
// tables if they do not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Storage.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// CREATE ... IF NOT EXISTS is idempotent, so it runs on every start.
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: create tables: %w", err)
	}

	return &SQLite{Db: db, loc: loc}, nil
}

func (s *SQLite) Close() error {
	return s.Db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Profiles
// ─────────────────────────────────────────────────────────────────────────────

func (s *SQLite) LoadProfiles(role types.Role) ([]types.UserProfile, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %v", storage.ErrUnknownRole, role)
	}

	rows, err := s.Db.Query(
		"SELECT name, password FROM profiles WHERE role = ? ORDER BY id", int(role),
	)
	if err != nil {
		return nil, fmt.Errorf("LoadProfiles: query: %w", err)
	}
	defer rows.Close()

	profiles := make([]types.UserProfile, 0)
	for rows.Next() {
		var p types.UserProfile
		if err := rows.Scan(&p.Name, &p.Password); err != nil {
			return nil, fmt.Errorf("LoadProfiles: scan row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadProfiles: rows iteration: %w", err)
	}
	return profiles, nil
}

// SaveProfiles replaces the role's rows in one transaction, mirroring the
// whole-file overwrite of the text backend.
func (s *SQLite) SaveProfiles(role types.Role, profiles []types.UserProfile) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %v", storage.ErrUnknownRole, role)
	}

	tx, err := s.Db.Begin()
	if err != nil {
		return fmt.Errorf("SaveProfiles: begin: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM profiles WHERE role = ?", int(role)); err != nil {
		return fmt.Errorf("SaveProfiles: delete: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO profiles (role, name, password) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("SaveProfiles: prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range profiles {
		if _, err := stmt.Exec(int(role), p.Name, p.Password); err != nil {
			return fmt.Errorf("SaveProfiles: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("SaveProfiles: commit: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Supervisor assignments
// ─────────────────────────────────────────────────────────────────────────────

func (s *SQLite) LoadSupervisorOf(studentName string) (string, bool, error) {
	var supervisor string
	err := s.Db.QueryRow(
		"SELECT supervisor FROM assignments WHERE student = ? LIMIT 1", studentName,
	).Scan(&supervisor)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("LoadSupervisorOf: scan: %w", err)
	}
	return supervisor, true, nil
}

// SaveSupervisorPair deletes and re-inserts so the pairing moves to the
// end of the list, the same order the text backend produces.
func (s *SQLite) SaveSupervisorPair(studentName, supervisorName string) error {
	tx, err := s.Db.Begin()
	if err != nil {
		return fmt.Errorf("SaveSupervisorPair: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM assignments WHERE student = ?", studentName); err != nil {
		return fmt.Errorf("SaveSupervisorPair: delete: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT INTO assignments (student, supervisor) VALUES (?, ?)", studentName, supervisorName,
	); err != nil {
		return fmt.Errorf("SaveSupervisorPair: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("SaveSupervisorPair: commit: %w", err)
	}
	return nil
}

func (s *SQLite) LoadStudentsUnder(supervisorName string) ([]types.Student, error) {
	rows, err := s.Db.Query(
		"SELECT student, supervisor FROM assignments WHERE supervisor = ? ORDER BY id", supervisorName,
	)
	if err != nil {
		return nil, fmt.Errorf("LoadStudentsUnder: query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		var st types.Student
		if err := rows.Scan(&st.Name, &st.SupervisorName); err != nil {
			return nil, fmt.Errorf("LoadStudentsUnder: scan row: %w", err)
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadStudentsUnder: rows iteration: %w", err)
	}
	return students, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Appointments
// ─────────────────────────────────────────────────────────────────────────────

func (s *SQLite) LoadAppointments() ([]types.Appointment, error) {
	rows, err := s.Db.Query("SELECT slot, supervisor, student FROM appointments ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("LoadAppointments: query: %w", err)
	}
	defer rows.Close()

	appointments := make([]types.Appointment, 0)
	for rows.Next() {
		var (
			a    types.Appointment
			slot string
		)
		if err := rows.Scan(&slot, &a.SupervisorName, &a.StudentName); err != nil {
			return nil, fmt.Errorf("LoadAppointments: scan row: %w", err)
		}
		if a.Slot, err = time.ParseInLocation(types.SlotLayout, slot, s.loc); err != nil {
			return nil, fmt.Errorf("LoadAppointments: parse slot %q: %w", slot, err)
		}
		appointments = append(appointments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadAppointments: rows iteration: %w", err)
	}
	return appointments, nil
}

// AppendAppointment inserts the booking. A clash with an existing slot
// trips the UNIQUE constraint and surfaces as storage.ErrSlotTaken.
func (s *SQLite) AppendAppointment(a types.Appointment) error {
	_, err := s.Db.Exec(
		"INSERT INTO appointments (slot, supervisor, student) VALUES (?, ?, ?)",
		a.Slot.Format(types.SlotLayout), a.SupervisorName, a.StudentName,
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("AppendAppointment: %w", storage.ErrSlotTaken)
	}
	if err != nil {
		return fmt.Errorf("AppendAppointment: exec: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Feelings
// ─────────────────────────────────────────────────────────────────────────────

func (s *SQLite) LoadFeelings() ([]types.FeelingEntry, error) {
	rows, err := s.Db.Query("SELECT day, student, rating FROM feelings ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("LoadFeelings: query: %w", err)
	}
	defer rows.Close()

	entries := make([]types.FeelingEntry, 0)
	for rows.Next() {
		var (
			e   types.FeelingEntry
			day string
		)
		if err := rows.Scan(&day, &e.StudentName, &e.Rating); err != nil {
			return nil, fmt.Errorf("LoadFeelings: scan row: %w", err)
		}
		if e.Day, err = time.ParseInLocation(types.DayLayout, day, s.loc); err != nil {
			return nil, fmt.Errorf("LoadFeelings: parse day %q: %w", day, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadFeelings: rows iteration: %w", err)
	}
	return entries, nil
}

func (s *SQLite) AppendFeeling(e types.FeelingEntry) error {
	_, err := s.Db.Exec(
		"INSERT INTO feelings (day, student, rating) VALUES (?, ?, ?)",
		e.Day.Format(types.DayLayout), e.StudentName, e.Rating,
	)
	if err != nil {
		return fmt.Errorf("AppendFeeling: exec: %w", err)
	}
	return nil
}
