// Package profile manages user profiles for every role and the
// student → personal supervisor pairing.
package profile

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/aanand-mishra/student-logging/internal/storage"
	"github.com/aanand-mishra/student-logging/internal/types"
)

var (
	ErrProfileExists     = errors.New("a profile with that name already exists")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrWrongPassword     = errors.New("incorrect password")
	ErrUnknownSupervisor = errors.New("no such personal supervisor")
)

// Store is the part of storage the manager needs.
type Store interface {
	storage.ProfileStore
	storage.AssignmentStore
}

type Manager struct {
	store     Store
	cost      int
	plaintext bool
	log       *slog.Logger
}

type Option func(*Manager)

// WithPasswordCost sets the bcrypt cost; 0 keeps bcrypt.DefaultCost.
func WithPasswordCost(cost int) Option {
	return func(m *Manager) {
		if cost > 0 {
			m.cost = cost
		}
	}
}

// WithPlaintextPasswords stores new passwords unhashed.
func WithPlaintextPasswords(on bool) Option { return func(m *Manager) { m.plaintext = on } }

func New(store Store, log *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		cost:  bcrypt.DefaultCost,
		log:   log.With(slog.String("component", "profile")),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Profiles lists role's profiles in file order.
func (m *Manager) Profiles(role types.Role) ([]types.UserProfile, error) {
	return m.store.LoadProfiles(role)
}

// Register creates a profile. Names are unique within a role.
func (m *Manager) Register(role types.Role, name, password string) (types.UserProfile, error) {
	p := types.UserProfile{Name: strings.TrimSpace(name), Password: password}
	if err := types.Validator().Struct(p); err != nil {
		return types.UserProfile{}, err
	}

	profiles, err := m.store.LoadProfiles(role)
	if err != nil {
		return types.UserProfile{}, fmt.Errorf("Register: %w", err)
	}
	if _, ok := find(profiles, p.Name); ok {
		return types.UserProfile{}, ErrProfileExists
	}

	if p.Password, err = m.seal(password); err != nil {
		return types.UserProfile{}, fmt.Errorf("Register: %w", err)
	}
	if err := m.store.SaveProfiles(role, append(profiles, p)); err != nil {
		return types.UserProfile{}, fmt.Errorf("Register: %w", err)
	}

	m.log.Info("profile created", slog.String("role", role.String()), slog.String("name", p.Name))
	return p, nil
}

// VerifyPassword checks password against p, hashed or legacy plain text.
func (m *Manager) VerifyPassword(p types.UserProfile, password string) bool {
	return checkPassword(p.Password, password)
}

// Authenticate returns the first profile called name if password matches.
func (m *Manager) Authenticate(role types.Role, name, password string) (types.UserProfile, error) {
	profiles, err := m.store.LoadProfiles(role)
	if err != nil {
		return types.UserProfile{}, fmt.Errorf("Authenticate: %w", err)
	}
	i, ok := find(profiles, name)
	if !ok {
		return types.UserProfile{}, ErrProfileNotFound
	}
	if !m.VerifyPassword(profiles[i], password) {
		m.log.Warn("failed login", slog.String("role", role.String()), slog.String("name", name))
		return types.UserProfile{}, ErrWrongPassword
	}
	return profiles[i], nil
}

// ChangePassword replaces name's password after checking the current one
// and returns the updated profile.
func (m *Manager) ChangePassword(role types.Role, name, current, next string) (types.UserProfile, error) {
	profiles, err := m.store.LoadProfiles(role)
	if err != nil {
		return types.UserProfile{}, fmt.Errorf("ChangePassword: %w", err)
	}
	i, ok := find(profiles, name)
	if !ok {
		return types.UserProfile{}, ErrProfileNotFound
	}
	if !m.VerifyPassword(profiles[i], current) {
		return types.UserProfile{}, ErrWrongPassword
	}
	if err := types.Validator().StructPartial(types.UserProfile{Password: next}, "Password"); err != nil {
		return types.UserProfile{}, err
	}

	if profiles[i].Password, err = m.seal(next); err != nil {
		return types.UserProfile{}, fmt.Errorf("ChangePassword: %w", err)
	}
	if err := m.store.SaveProfiles(role, profiles); err != nil {
		return types.UserProfile{}, fmt.Errorf("ChangePassword: %w", err)
	}

	m.log.Info("password changed", slog.String("role", role.String()), slog.String("name", name))
	return profiles[i], nil
}

// Supervisors lists every personal supervisor profile.
func (m *Manager) Supervisors() ([]types.PersonalSupervisor, error) {
	profiles, err := m.store.LoadProfiles(types.RolePersonalSupervisor)
	if err != nil {
		return nil, fmt.Errorf("Supervisors: %w", err)
	}
	out := make([]types.PersonalSupervisor, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, types.PersonalSupervisor{Name: p.Name})
	}
	return out, nil
}

// AssignSupervisor makes supervisor the student's only supervisor.
func (m *Manager) AssignSupervisor(student, supervisor string) error {
	sups, err := m.Supervisors()
	if err != nil {
		return fmt.Errorf("AssignSupervisor: %w", err)
	}
	known := false
	for _, s := range sups {
		if s.Name == supervisor {
			known = true
			break
		}
	}
	if !known {
		return ErrUnknownSupervisor
	}

	if err := m.store.SaveSupervisorPair(student, supervisor); err != nil {
		return fmt.Errorf("AssignSupervisor: %w", err)
	}

	m.log.Info("supervisor assigned", slog.String("student", student), slog.String("supervisor", supervisor))
	return nil
}

// LoadStudent resolves the student's current supervisor, if any.
func (m *Manager) LoadStudent(name string) (types.Student, error) {
	sup, _, err := m.store.LoadSupervisorOf(name)
	if err != nil {
		return types.Student{Name: name}, fmt.Errorf("LoadStudent: %w", err)
	}
	return types.Student{Name: name, SupervisorName: sup}, nil
}

func (m *Manager) StudentsUnder(supervisor string) ([]types.Student, error) {
	return m.store.LoadStudentsUnder(supervisor)
}

func (m *Manager) seal(password string) (string, error) {
	if m.plaintext {
		return password, nil
	}
	return hashPassword(password, m.cost)
}

func find(profiles []types.UserProfile, name string) (int, bool) {
	for i, p := range profiles {
		if p.Name == name {
			return i, true
		}
	}
	return -1, false
}
