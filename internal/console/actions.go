package console

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/aanand-mishra/student-logging/internal/appointment"
	"github.com/aanand-mishra/student-logging/internal/feeling"
	"github.com/aanand-mishra/student-logging/internal/session"
	"github.com/aanand-mishra/student-logging/internal/types"
	"github.com/aanand-mishra/student-logging/internal/utils/response"
)

// ── Appointments ──────────────────────────────────────────────────────────

func (a *App) bookForSelf(sess *session.Session) error {
	_, err := a.book(sess.Student)
	return err
}

// scheduleMeeting books on behalf of one of the supervisor's students.
func (a *App) scheduleMeeting(sess *session.Session) error {
	student, ok, err := a.pickStudent(sess, "Select a student to schedule a meeting with:")
	if err != nil || !ok {
		return err
	}
	booked, err := a.book(student)
	if err != nil {
		return err
	}
	if booked {
		a.say("Meeting scheduled with %s.", student.Name)
	}
	return nil
}

// book walks the user through date and slot selection until a slot is
// booked or the user enters a blank date.
func (a *App) book(student types.Student) (bool, error) {
	if !student.HasSupervisor() {
		a.fail("You don't have a personal supervisor assigned. Please contact the administration.")
		return false, nil
	}
	a.say("Booking appointment with %s", student.SupervisorName)

	for {
		in, err := a.readLine("Please enter the date for the appointment (yyyy-MM-dd), or leave blank to cancel:")
		if err != nil {
			return false, err
		}
		in = strings.TrimSpace(in)
		if in == "" {
			a.say("Booking cancelled.")
			return false, nil
		}

		date, err := time.ParseInLocation(types.DayLayout, in, a.appts.Location())
		if err != nil {
			a.fail("Invalid date format. Please try again.")
			continue
		}
		if err := a.appts.CheckDate(date); err != nil {
			a.fail("The date should be today or later. Please try again.")
			continue
		}

		slots, err := a.appts.AvailableSlots(date)
		if err != nil {
			a.failed("list slots", err)
			return false, nil
		}
		if len(slots) == 0 {
			a.fail("No available time slots for the selected date. Please choose another date.")
			continue
		}

		a.say("Available time slots:")
		for i, slot := range slots {
			a.say("%d. %s", i+1, slot.Format("15:04"))
		}
		pick, err := a.readLine("Select a time slot from the list:")
		if err != nil {
			return false, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(pick))
		if err != nil || n < 1 || n > len(slots) {
			a.fail("Invalid selection. Please select a valid time slot.")
			continue
		}

		appt, err := a.appts.Book(student, slots[n-1])
		if errors.Is(err, appointment.ErrSlotTaken) {
			// Someone else got there between listing and booking.
			a.fail("That slot has just been taken. Please choose another.")
			continue
		}
		if err != nil {
			a.failed("book appointment", err)
			return false, nil
		}

		a.report(response.OK("Your appointment with %s is booked for %s",
			appt.SupervisorName, appt.Slot.Format(types.SlotLayout)))
		return true, nil
	}
}

func (a *App) upcoming(sess *session.Session) error {
	appts, err := a.appts.Upcoming(sess.Name())
	if err != nil {
		a.failed("list upcoming meetings", err)
		return nil
	}
	if len(appts) == 0 {
		a.fail("No upcoming appointments.")
		return nil
	}
	a.say("Upcoming Appointments:")
	for _, appt := range appts {
		a.say("%s", appt)
	}
	return nil
}

func (a *App) allMeetings(*session.Session) error {
	appts, err := a.appts.All()
	if err != nil {
		a.failed("list meetings", err)
		return nil
	}
	if len(appts) == 0 {
		a.fail("No meetings scheduled.")
		return nil
	}
	a.say("All Scheduled Appointments:")
	for _, appt := range appts {
		a.say("%s", appt)
	}
	return nil
}

// ── Feelings ──────────────────────────────────────────────────────────────

func (a *App) logFeeling(sess *session.Session) error {
	a.say("Logging feeling for %s", sess.Name())
	rating, err := a.choose("On a scale from 1-10, how are you feeling today?", feeling.MinRating, feeling.MaxRating)
	if err != nil {
		return err
	}

	entry, err := a.feelings.Record(sess.Name(), rating)
	if err != nil {
		a.failed("log feeling", err)
		return nil
	}
	a.report(response.OK("Your feeling for today has been logged as %d/10.", entry.Rating))
	return nil
}

func (a *App) ownFeelings(sess *session.Session) error {
	a.showFeelings(sess.Name())
	return nil
}

func (a *App) studentFeelings(sess *session.Session) error {
	student, ok, err := a.pickStudent(sess, "Select a student to view feeling logs:")
	if err != nil || !ok {
		return err
	}
	a.showFeelings(student.Name)
	return nil
}

func (a *App) showFeelings(name string) {
	entries, err := a.feelings.For(name)
	if err != nil {
		a.failed("list feelings", err)
		return
	}
	if len(entries) == 0 {
		a.fail("No feeling logs for this user.")
		return
	}
	a.say("%s's Feelings Logs:", name)
	for _, e := range entries {
		a.say("%s", e)
	}
}

func (a *App) allFeelings(*session.Session) error {
	entries, err := a.feelings.All()
	if err != nil {
		a.failed("list feelings", err)
		return nil
	}
	if len(entries) == 0 {
		a.fail("No feeling logs found.")
		return nil
	}
	a.say("All Feeling Logs:")
	for _, e := range entries {
		a.say("%s", e)
	}
	return nil
}

// ── Profiles ──────────────────────────────────────────────────────────────

func (a *App) changePassword(sess *session.Session) error {
	current, err := a.readLine("Enter your current password:")
	if err != nil {
		return err
	}
	if !a.profiles.VerifyPassword(sess.Profile, current) {
		a.fail("Incorrect password. Returning to menu.")
		return nil
	}
	next, err := a.readLine("Enter your new password:")
	if err != nil {
		return err
	}

	p, err := a.profiles.ChangePassword(sess.Role, sess.Name(), current, next)
	if err != nil {
		a.failed("change password", err)
		return nil
	}
	sess.Profile = p
	a.report(response.OK("Password successfully updated!"))
	return nil
}

// chooseSupervisor lets a student pick from the registered supervisors.
func (a *App) chooseSupervisor(sess *session.Session) error {
	sups, err := a.profiles.Supervisors()
	if err != nil {
		a.failed("list supervisors", err)
		return nil
	}
	if len(sups) == 0 {
		a.fail("No personal supervisors are registered yet.")
		return nil
	}

	a.say("Select a new personal supervisor:")
	for i, s := range sups {
		a.say("%d. %s", i+1, s.Name)
	}
	choice, err := a.choose("Enter your choice:", 1, len(sups))
	if err != nil {
		return err
	}

	name := sups[choice-1].Name
	if err := a.profiles.AssignSupervisor(sess.Name(), name); err != nil {
		a.failed("assign supervisor", err)
		return nil
	}
	sess.SetSupervisor(name)
	a.report(response.OK("Your personal supervisor is now %s!", name))
	return nil
}

func (a *App) studentList(sess *session.Session) error {
	students, err := a.profiles.StudentsUnder(sess.Name())
	if err != nil {
		a.failed("list students", err)
		return nil
	}
	if len(students) == 0 {
		a.fail("No students assigned to you currently.")
		return nil
	}
	a.say("Students under %s:", sess.Name())
	for _, s := range students {
		a.say("%s", s.Name)
	}
	return nil
}

// pickStudent asks the supervisor to choose one of their students. ok is
// false when there is nothing to choose from.
func (a *App) pickStudent(sess *session.Session, prompt string) (types.Student, bool, error) {
	students, err := a.profiles.StudentsUnder(sess.Name())
	if err != nil {
		a.failed("list students", err)
		return types.Student{}, false, nil
	}
	if len(students) == 0 {
		a.fail("You have no students assigned to you.")
		return types.Student{}, false, nil
	}

	a.say("%s", prompt)
	for i, s := range students {
		a.say("%d. %s", i+1, s.Name)
	}
	choice, err := a.choose("Enter your choice:", 1, len(students))
	if err != nil {
		return types.Student{}, false, err
	}
	return students[choice-1], true, nil
}
