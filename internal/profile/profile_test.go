package profile

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aanand-mishra/student-logging/internal/config"
	"github.com/aanand-mishra/student-logging/internal/storage/textfile"
	"github.com/aanand-mishra/student-logging/internal/types"
)

func setup(t *testing.T, opts ...Option) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.Storage{
			DataDir: dir,
			Files: config.Files{
				Students:     "students.txt",
				Supervisors:  "ps.txt",
				SeniorTutors: "st.txt",
				Assignments:  "students_under_ps.txt",
				Appointments: "appointments.txt",
				FeelingsLog:  "feelings_log.txt",
			},
		},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := textfile.New(cfg, log)
	require.NoError(t, err)

	opts = append([]Option{WithPasswordCost(bcrypt.MinCost)}, opts...)
	return New(store, log, opts...), dir
}

func TestRegister_HashesAndAuthenticates(t *testing.T) {
	m, dir := setup(t)

	p, err := m.Register(types.RoleStudent, "  alice ", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Name)
	assert.NotEqual(t, "hunter2", p.Password)
	assert.True(t, isHashed(p.Password))

	raw, err := os.ReadFile(filepath.Join(dir, "students.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "alice:$2"))
	assert.NotContains(t, string(raw), "hunter2")

	got, err := m.Authenticate(types.RoleStudent, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = m.Authenticate(types.RoleStudent, "alice", "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = m.Authenticate(types.RoleStudent, "nobody", "hunter2")
	assert.ErrorIs(t, err, ErrProfileNotFound)

	// Roles are separate namespaces.
	_, err = m.Authenticate(types.RoleSeniorTutor, "alice", "hunter2")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestRegister_Validation(t *testing.T) {
	m, _ := setup(t)

	tests := []struct {
		name     string
		user     string
		password string
	}{
		{"empty name", "", "pw"},
		{"blank name", "   ", "pw"},
		{"colon in name", "a:b", "pw"},
		{"newline in name", "a\nb", "pw"},
		{"empty password", "alice", ""},
		{"colon in password", "alice", "p:w"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Register(types.RoleStudent, tt.user, tt.password)
			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}

	profiles, err := m.Profiles(types.RoleStudent)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestRegister_RejectsDuplicateName(t *testing.T) {
	m, _ := setup(t)

	_, err := m.Register(types.RolePersonalSupervisor, "dr-smith", "pw")
	require.NoError(t, err)
	_, err = m.Register(types.RolePersonalSupervisor, "dr-smith", "other")
	assert.ErrorIs(t, err, ErrProfileExists)

	// Same name under another role is fine.
	_, err = m.Register(types.RoleStudent, "dr-smith", "pw")
	assert.NoError(t, err)
}

func TestLegacyPlaintextProfiles(t *testing.T) {
	m, dir := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "st.txt"), []byte("tutor:letmein\n"), 0o644))

	_, err := m.Authenticate(types.RoleSeniorTutor, "tutor", "letmein")
	require.NoError(t, err)

	// Changing the password upgrades the line to a hash.
	updated, err := m.ChangePassword(types.RoleSeniorTutor, "tutor", "letmein", "s3cret")
	require.NoError(t, err)
	assert.True(t, m.VerifyPassword(updated, "s3cret"))
	raw, err := os.ReadFile(filepath.Join(dir, "st.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "tutor:$2"))

	_, err = m.Authenticate(types.RoleSeniorTutor, "tutor", "s3cret")
	assert.NoError(t, err)
}

func TestPlaintextOption(t *testing.T) {
	m, dir := setup(t, WithPlaintextPasswords(true))

	_, err := m.Register(types.RoleStudent, "TestUser", "TestPassword")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "students.txt"))
	require.NoError(t, err)
	assert.Equal(t, "TestUser:TestPassword\n", string(raw))
}

func TestChangePassword(t *testing.T) {
	m, _ := setup(t)
	_, err := m.Register(types.RoleStudent, "alice", "old")
	require.NoError(t, err)
	_, err = m.Register(types.RoleStudent, "bob", "bobpw")
	require.NoError(t, err)

	_, err = m.ChangePassword(types.RoleStudent, "alice", "wrong", "new")
	assert.ErrorIs(t, err, ErrWrongPassword)
	_, err = m.ChangePassword(types.RoleStudent, "carol", "x", "new")
	assert.ErrorIs(t, err, ErrProfileNotFound)
	_, err = m.ChangePassword(types.RoleStudent, "alice", "old", "bad:pw")
	assert.Error(t, err)

	_, err = m.ChangePassword(types.RoleStudent, "alice", "old", "new")
	require.NoError(t, err)
	_, err = m.Authenticate(types.RoleStudent, "alice", "new")
	assert.NoError(t, err)
	_, err = m.Authenticate(types.RoleStudent, "bob", "bobpw")
	assert.NoError(t, err, "other profiles untouched")
}

func TestAssignSupervisor(t *testing.T) {
	m, dir := setup(t)
	_, err := m.Register(types.RolePersonalSupervisor, "dr-smith", "pw")
	require.NoError(t, err)
	_, err = m.Register(types.RolePersonalSupervisor, "dr-jones", "pw")
	require.NoError(t, err)

	sups, err := m.Supervisors()
	require.NoError(t, err)
	assert.Equal(t, []types.PersonalSupervisor{{Name: "dr-smith"}, {Name: "dr-jones"}}, sups)

	assert.ErrorIs(t, m.AssignSupervisor("alice", "dr-who"), ErrUnknownSupervisor)

	require.NoError(t, m.AssignSupervisor("alice", "dr-smith"))
	require.NoError(t, m.AssignSupervisor("alice", "dr-jones"))

	st, err := m.LoadStudent("alice")
	require.NoError(t, err)
	assert.Equal(t, types.Student{Name: "alice", SupervisorName: "dr-jones"}, st)

	raw, err := os.ReadFile(filepath.Join(dir, "students_under_ps.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alice:dr-jones\n", string(raw))

	under, err := m.StudentsUnder("dr-smith")
	require.NoError(t, err)
	assert.Empty(t, under)

	lone, err := m.LoadStudent("bob")
	require.NoError(t, err)
	assert.False(t, lone.HasSupervisor())
}
