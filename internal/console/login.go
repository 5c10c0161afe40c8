package console

import (
	"log/slog"

	"github.com/aanand-mishra/student-logging/internal/session"
	"github.com/aanand-mishra/student-logging/internal/types"
)

// selectProfile lists role's profiles and returns a session for the one
// the user logs into or creates. A nil session means "back".
func (a *App) selectProfile(role types.Role) (*session.Session, error) {
	for {
		profiles, err := a.profiles.Profiles(role)
		if err != nil {
			a.failed("load profiles", err)
			return nil, nil
		}

		a.header("----- %s -----", role)
		a.say("Select a profile or enter '0' to go back:")
		for i, p := range profiles {
			a.say("%d. %s", i+1, p.Name)
		}
		create := len(profiles) + 1
		a.say("%d. Create New Profile", create)
		a.say("")

		choice, err := a.choose("Enter your choice:", 0, create)
		if err != nil {
			return nil, err
		}

		switch choice {
		case 0:
			return nil, nil
		case create:
			sess, err := a.createProfile(role)
			if err != nil || sess != nil {
				return sess, err
			}
			// Registration was refused; show the list again.
		default:
			return a.login(role, profiles[choice-1])
		}
	}
}

func (a *App) createProfile(role types.Role) (*session.Session, error) {
	name, err := a.readLine("Enter your name:")
	if err != nil {
		return nil, err
	}
	password, err := a.readLine("Set your password:")
	if err != nil {
		return nil, err
	}

	p, err := a.profiles.Register(role, name, password)
	if err != nil {
		a.failed("register profile", err)
		return nil, nil
	}
	a.say("Profile %s created!", p.Name)

	sess := session.New(role, p)
	if role == types.RoleStudent {
		if err := a.chooseSupervisor(sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// login asks for the password until it matches.
func (a *App) login(role types.Role, p types.UserProfile) (*session.Session, error) {
	for {
		pw, err := a.readLine("Enter password for " + p.Name + ":")
		if err != nil {
			return nil, err
		}
		if a.profiles.VerifyPassword(p, pw) {
			break
		}
		a.log.Warn("failed login",
			slog.String("role", role.String()),
			slog.String("name", p.Name))
		a.fail("Incorrect password. Please try again.")
	}
	a.say("Access granted for %s!", p.Name)

	sess := session.New(role, p)
	if role == types.RoleStudent {
		student, err := a.profiles.LoadStudent(p.Name)
		if err != nil {
			a.failed("load supervisor", err)
		}
		sess.SetSupervisor(student.SupervisorName)
	}
	return sess, nil
}
