package textfile

import (
	"strconv"
	"strings"
	"time"

	"github.com/aanand-mishra/student-logging/internal/types"
)

// Line formats. No field is escaped, so separators must never appear
// inside names; registration rejects them.
//
//	profiles       name:password
//	assignments    studentName:supervisorName
//	appointments   yyyy-MM-dd HH:mm - supervisorName with studentName
//	feelings       yyyy-MM-dd - studentName - rating
const (
	fieldSep = ":"
	partSep  = " - "
	withSep  = " with "
)

func formatProfile(p types.UserProfile) string {
	return p.Name + fieldSep + p.Password
}

// parseProfile accepts exactly two colon-separated fields.
func parseProfile(line string) (types.UserProfile, bool) {
	parts := strings.Split(line, fieldSep)
	if len(parts) != 2 {
		return types.UserProfile{}, false
	}
	return types.UserProfile{Name: parts[0], Password: parts[1]}, true
}

func formatAssignment(student, supervisor string) string {
	return student + fieldSep + supervisor
}

func parseAssignment(line string) (types.Student, bool) {
	parts := strings.Split(line, fieldSep)
	if len(parts) != 2 {
		return types.Student{}, false
	}
	return types.Student{Name: parts[0], SupervisorName: parts[1]}, true
}

func parseAppointment(line string, loc *time.Location) (types.Appointment, bool) {
	n := len(types.SlotLayout)
	if len(line) < n {
		return types.Appointment{}, false
	}
	slot, err := time.ParseInLocation(types.SlotLayout, line[:n], loc)
	if err != nil {
		return types.Appointment{}, false
	}
	rest, ok := strings.CutPrefix(line[n:], partSep)
	if !ok {
		return types.Appointment{}, false
	}
	supervisor, student, ok := strings.Cut(rest, withSep)
	if !ok {
		return types.Appointment{}, false
	}
	return types.Appointment{Slot: slot, SupervisorName: supervisor, StudentName: student}, true
}

func parseFeeling(line string, loc *time.Location) (types.FeelingEntry, bool) {
	n := len(types.DayLayout)
	if len(line) < n {
		return types.FeelingEntry{}, false
	}
	day, err := time.ParseInLocation(types.DayLayout, line[:n], loc)
	if err != nil {
		return types.FeelingEntry{}, false
	}
	rest, ok := strings.CutPrefix(line[n:], partSep)
	if !ok {
		return types.FeelingEntry{}, false
	}
	// The rating is the last field; the name may itself contain " - ".
	i := strings.LastIndex(rest, partSep)
	if i < 0 {
		return types.FeelingEntry{}, false
	}
	rating, err := strconv.Atoi(rest[i+len(partSep):])
	if err != nil {
		return types.FeelingEntry{}, false
	}
	return types.FeelingEntry{Day: day, StudentName: rest[:i], Rating: rating}, true
}
