// Package storage defines the Record Store contract, the set of
// interfaces any persistence backend must satisfy to work with this
// application.
//
// WHY SEVERAL SMALL INTERFACES?
// ─────────────────────────────
// Each service depends only on the slice of storage it actually uses:
// the feeling log never sees profiles, the allocator never sees
// passwords. Storage glues them together for main.go, which picks a
// backend (textfile or sqlite) and hands it to every service.
//
// Two backends implement it:
//
//   - textfile: the flat delimited files (students.txt, ps.txt, …)
//   - sqlite: a single SQLite database file
package storage

import (
	"errors"
	"time"

	"github.com/aanand-mishra/student-logging/internal/types"
)

// ErrSlotTaken is returned by AppendAppointment when a backend can detect
// that the slot already has a booking. The text backend cannot, so the
// allocator also checks before appending.
var ErrSlotTaken = errors.New("time slot already booked")

// ErrUnknownRole is returned when a role has no profile file.
var ErrUnknownRole = errors.New("unknown role")

// ProfileStore persists one profile list per role.
type ProfileStore interface {
	// LoadProfiles returns every well-formed profile for role, in file
	// order. A missing file yields an empty slice and a nil error.
	LoadProfiles(role types.Role) ([]types.UserProfile, error)

	// SaveProfiles replaces the whole profile list for role.
	SaveProfiles(role types.Role, profiles []types.UserProfile) error
}

// AssignmentStore persists the student → supervisor pairing.
type AssignmentStore interface {
	// LoadSupervisorOf returns the supervisor of the first pairing keyed
	// by studentName. ok is false when the student has none.
	LoadSupervisorOf(studentName string) (supervisorName string, ok bool, err error)

	// SaveSupervisorPair drops any existing pairing for studentName and
	// records the new one. A student has at most one supervisor.
	SaveSupervisorPair(studentName, supervisorName string) error

	// LoadStudentsUnder returns every student paired with supervisorName.
	LoadStudentsUnder(supervisorName string) ([]types.Student, error)
}

// AppointmentStore persists booked meetings.
type AppointmentStore interface {
	// LoadAppointments returns every well-formed booking in storage order.
	LoadAppointments() ([]types.Appointment, error)

	// AppendAppointment records a new booking.
	AppendAppointment(a types.Appointment) error
}

// FeelingStore persists feeling log entries.
type FeelingStore interface {
	// LoadFeelings returns every well-formed entry in storage order.
	LoadFeelings() ([]types.FeelingEntry, error)

	// AppendFeeling records a new entry.
	AppendFeeling(e types.FeelingEntry) error
}

// Storage is the full contract a backend implements.
type Storage interface {
	ProfileStore
	AssignmentStore
	AppointmentStore
	FeelingStore

	// Close releases backend resources. The text backend holds none.
	Close() error
}

// BookedSlots extracts the slot times from a list of appointments.
func BookedSlots(appointments []types.Appointment) []time.Time {
	slots := make([]time.Time, 0, len(appointments))
	for _, a := range appointments {
		slots = append(slots, a.Slot)
	}
	return slots
}
