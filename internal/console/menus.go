package console

import (
	"github.com/aanand-mishra/student-logging/internal/session"
)

type item struct {
	label  string
	action func(*session.Session) error
}

// menu loops over items until the user picks the trailing "Log out"
// entry. banner, if set, prints extra lines under the welcome header.
func (a *App) menu(sess *session.Session, title string, banner func(*session.Session), items []item) error {
	logout := len(items) + 1

	for {
		a.header("----- Welcome %s -----", sess.Name())
		if banner != nil {
			banner(sess)
		}
		a.header("----- %s -----", title)
		for i, it := range items {
			a.say("%d. %s", i+1, it.label)
		}
		a.say("%d. Log out", logout)
		a.say("")

		choice, err := a.choose("Enter your choice:", 1, logout)
		if err != nil {
			return err
		}
		if choice == logout {
			return nil
		}
		if err := items[choice-1].action(sess); err != nil {
			return err
		}
	}
}

func (a *App) studentMenu(sess *session.Session) error {
	return a.menu(sess, "Student Menu", a.supervisorBanner, []item{
		{"Book an appointment", a.bookForSelf},
		{"View upcoming meetings", a.upcoming},
		{"Change personal supervisor", a.chooseSupervisor},
		{"Log your feeling for today", a.logFeeling},
		{"View your feeling logs", a.ownFeelings},
		{"Change password", a.changePassword},
	})
}

func (a *App) supervisorMenu(sess *session.Session) error {
	return a.menu(sess, "Personal Supervisor Menu", nil, []item{
		{"View student list", a.studentList},
		{"Schedule meeting", a.scheduleMeeting},
		{"View student's feeling logs", a.studentFeelings},
		{"View upcoming meetings", a.upcoming},
		{"Change password", a.changePassword},
	})
}

func (a *App) tutorMenu(sess *session.Session) error {
	return a.menu(sess, "Senior Tutor Menu", nil, []item{
		{"View overall feeling logs", a.allFeelings},
		{"View overall meetings", a.allMeetings},
		{"Change password", a.changePassword},
	})
}

func (a *App) supervisorBanner(sess *session.Session) {
	sup := sess.Student.SupervisorName
	if sup == "" {
		sup = "None assigned yet"
	}
	a.say("Your Personal Supervisor: %s", sup)
}
