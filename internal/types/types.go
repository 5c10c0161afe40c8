// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// storage, services, and the console layer can all import types without
// depending on each other.
package types

import (
	"fmt"
	"time"
)

// Wire layouts used by every persisted record. They double as the
// display format on the console.
const (
	DayLayout  = "2006-01-02"
	SlotLayout = "2006-01-02 15:04"
)

// Role selects which menu a user sees and which profile file they live in.
type Role int

const (
	RoleStudent Role = iota + 1
	RolePersonalSupervisor
	RoleSeniorTutor
)

// Roles lists every role in main-menu order.
var Roles = []Role{RoleStudent, RolePersonalSupervisor, RoleSeniorTutor}

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RolePersonalSupervisor:
		return "Personal Supervisor (PS)"
	case RoleSeniorTutor:
		return "Senior Tutor (ST)"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r >= RoleStudent && r <= RoleSeniorTutor
}

// UserProfile is a name/password pair identifying a user within one
// role's profile file.
//
// Struct tags are rules checked by the go-playground/validator package:
//
//   - required:    the field must be non-empty
//   - excludes=:   ':' is the field separator of the profile file and
//     there is no escaping, so a name containing one would corrupt the
//     record.
//   - singleline:  custom tag registered in validate.go; every record
//     is exactly one line.
type UserProfile struct {
	Name     string `validate:"required,excludes=:,singleline"`
	Password string `validate:"required,excludes=:,singleline"`
}

// Student is a student plus the name of their current personal
// supervisor. The supervisor is a by-name back-reference resolved via the
// assignment file, not an embedded object.
type Student struct {
	Name           string
	SupervisorName string
}

// HasSupervisor reports whether a supervisor is currently assigned.
func (s Student) HasSupervisor() bool { return s.SupervisorName != "" }

type PersonalSupervisor struct {
	Name string
}

// Appointment is one booked 30-minute meeting.
type Appointment struct {
	Slot           time.Time
	SupervisorName string `validate:"required,singleline"`
	StudentName    string `validate:"required,singleline"`
}

// String renders the appointment exactly as it is stored on disk:
//
//	2024-05-01 09:30 - Dr Smith with Alice
func (a Appointment) String() string {
	return fmt.Sprintf("%s - %s with %s", a.Slot.Format(SlotLayout), a.SupervisorName, a.StudentName)
}

// Involves reports whether name is either party of the appointment.
func (a Appointment) Involves(name string) bool {
	return a.StudentName == name || a.SupervisorName == name
}

// FeelingEntry is a student's self-reported mood for one calendar day.
//
// min/max bound the rating to the 1–10 scale shown to the student.
type FeelingEntry struct {
	Day         time.Time
	StudentName string `validate:"required,singleline"`
	Rating      int    `validate:"min=1,max=10"`
}

// String renders the entry exactly as it is stored on disk:
//
//	2024-05-01 - Alice - 7
func (f FeelingEntry) String() string {
	return fmt.Sprintf("%s - %s - %d", f.Day.Format(DayLayout), f.StudentName, f.Rating)
}
