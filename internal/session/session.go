// Package session carries who is logged in through the console menus.
//
// A Session is created at login and handed to every menu action, so no
// action reads "the current user" from global state.
package session

import "github.com/aanand-mishra/student-logging/internal/types"

type Session struct {
	Role    types.Role
	Profile types.UserProfile

	// Student is only meaningful for RoleStudent. Its SupervisorName is
	// kept in step with the assignment store while the session lives.
	Student types.Student
}

func New(role types.Role, profile types.UserProfile) *Session {
	s := &Session{Role: role, Profile: profile}
	if role == types.RoleStudent {
		s.Student = types.Student{Name: profile.Name}
	}
	return s
}

// Name is the logged-in user's profile name.
func (s *Session) Name() string { return s.Profile.Name }

// SetSupervisor records a new supervisor for a student session.
func (s *Session) SetSupervisor(name string) { s.Student.SupervisorName = name }
