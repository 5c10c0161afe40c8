// Package console is the interactive front end: numbered menus read from
// an io.Reader and written to an io.Writer.
//
// HOW THE MENUS ARE WIRED:
// ────────────────────────
// Every role menu is a table of items. Each item pairs a label with an
// action, and each action is a method value bound to the App, so it
// already holds the services it needs:
//
//	{"Book an appointment", a.bookForSelf}
//	//                      ^^^^^^^^^^^^^
//	//  bound once when the menu is built, called every time the
//	//  user picks item 1.
//
// Actions receive the logged-in *session.Session explicitly. Nothing in
// this package keeps "the current user" in a global.
//
// Service errors never end a session: they are shown via the response
// package and the menu comes back. The only error an action returns is
// an input error, usually io.EOF when the user closes stdin.
package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aanand-mishra/student-logging/internal/appointment"
	"github.com/aanand-mishra/student-logging/internal/feeling"
	"github.com/aanand-mishra/student-logging/internal/profile"
	"github.com/aanand-mishra/student-logging/internal/session"
	"github.com/aanand-mishra/student-logging/internal/types"
)

// Services groups the three domain services the menus drive.
type Services struct {
	Profiles     *profile.Manager
	Appointments *appointment.Allocator
	Feelings     *feeling.Log
}

type App struct {
	in  *bufio.Reader
	out io.Writer
	st  styles
	log *slog.Logger

	profiles *profile.Manager
	appts    *appointment.Allocator
	feelings *feeling.Log
}

func New(in io.Reader, out io.Writer, svc Services, log *slog.Logger) *App {
	return &App{
		in:       newReader(in),
		out:      out,
		st:       newStyles(out),
		log:      log.With(slog.String("component", "console")),
		profiles: svc.Profiles,
		appts:    svc.Appointments,
		feelings: svc.Feelings,
	}
}

// Run shows the main menu until the user picks Exit, input ends, or ctx
// is cancelled. Exit and end of input both return nil.
func (a *App) Run(ctx context.Context) error {
	exit := len(types.Roles) + 1

	for {
		if ctx.Err() != nil {
			return nil
		}

		a.header("----- Main Menu -----")
		a.say("Select your role:")
		for i, role := range types.Roles {
			a.say("%d. %s", i+1, role)
		}
		a.say("%d. Exit", exit)
		a.say("")

		choice, err := a.choose("Enter your choice:", 1, exit)
		if err != nil {
			return endOfInput(err)
		}
		if choice == exit {
			a.say("Goodbye!")
			return nil
		}

		sess, err := a.selectProfile(types.Roles[choice-1])
		if err != nil {
			return endOfInput(err)
		}
		if sess == nil {
			continue
		}

		a.log.Info("logged in",
			slog.String("role", sess.Role.String()),
			slog.String("name", sess.Name()))
		if err := a.roleMenu(sess); err != nil {
			return endOfInput(err)
		}
		a.log.Info("logged out", slog.String("name", sess.Name()))
	}
}

// endOfInput turns io.EOF into a clean stop.
func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (a *App) roleMenu(sess *session.Session) error {
	switch sess.Role {
	case types.RoleStudent:
		return a.studentMenu(sess)
	case types.RolePersonalSupervisor:
		return a.supervisorMenu(sess)
	case types.RoleSeniorTutor:
		return a.tutorMenu(sess)
	}
	return nil
}
