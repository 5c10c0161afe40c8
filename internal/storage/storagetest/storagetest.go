// Package storagetest is a behavioural test-suite every storage.Storage
// backend must pass. Backend packages call Run from their own tests.
package storagetest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-logging/internal/storage"
	"github.com/aanand-mishra/student-logging/internal/types"
)

// Factory returns a fresh, empty backend. Cleanup is the caller's job
// (t.TempDir, t.Cleanup).
type Factory func(t *testing.T) storage.Storage

// Run exercises the whole storage.Storage contract against newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("profiles", func(t *testing.T) { testProfiles(t, newStore(t)) })
	t.Run("assignments", func(t *testing.T) { testAssignments(t, newStore(t)) })
	t.Run("appointments", func(t *testing.T) { testAppointments(t, newStore(t)) })
	t.Run("feelings", func(t *testing.T) { testFeelings(t, newStore(t)) })
}

func testProfiles(t *testing.T, s storage.Storage) {
	got, err := s.LoadProfiles(types.RoleStudent)
	require.NoError(t, err)
	assert.Empty(t, got, "empty store has no profiles")

	// Round-trip: save(load ++ [p]) then load contains p.
	p := types.UserProfile{Name: "alice", Password: "secret"}
	require.NoError(t, s.SaveProfiles(types.RoleStudent, append(got, p)))

	got, err = s.LoadProfiles(types.RoleStudent)
	require.NoError(t, err)
	assert.Contains(t, got, p)

	// Roles are isolated from each other.
	other, err := s.LoadProfiles(types.RolePersonalSupervisor)
	require.NoError(t, err)
	assert.Empty(t, other)

	// Save overwrites rather than merges.
	q := types.UserProfile{Name: "bob", Password: "pw"}
	require.NoError(t, s.SaveProfiles(types.RoleStudent, []types.UserProfile{q}))
	got, err = s.LoadProfiles(types.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, []types.UserProfile{q}, got)

	// Order is preserved.
	list := []types.UserProfile{{Name: "c", Password: "1"}, {Name: "a", Password: "2"}, {Name: "b", Password: "3"}}
	require.NoError(t, s.SaveProfiles(types.RoleSeniorTutor, list))
	got, err = s.LoadProfiles(types.RoleSeniorTutor)
	require.NoError(t, err)
	assert.Equal(t, list, got)

	_, err = s.LoadProfiles(types.Role(99))
	assert.ErrorIs(t, err, storage.ErrUnknownRole)
}

func testAssignments(t *testing.T, s storage.Storage) {
	_, ok, err := s.LoadSupervisorOf("alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveSupervisorPair("alice", "dr-smith"))
	require.NoError(t, s.SaveSupervisorPair("bob", "dr-smith"))
	require.NoError(t, s.SaveSupervisorPair("carol", "dr-jones"))

	// Reassigning twice leaves exactly one pairing with the latest value.
	require.NoError(t, s.SaveSupervisorPair("alice", "dr-jones"))
	require.NoError(t, s.SaveSupervisorPair("alice", "dr-who"))

	sup, ok, err := s.LoadSupervisorOf("alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dr-who", sup)

	smith, err := s.LoadStudentsUnder("dr-smith")
	require.NoError(t, err)
	assert.Equal(t, []types.Student{{Name: "bob", SupervisorName: "dr-smith"}}, smith)

	jones, err := s.LoadStudentsUnder("dr-jones")
	require.NoError(t, err)
	assert.Equal(t, []types.Student{{Name: "carol", SupervisorName: "dr-jones"}}, jones)

	who, err := s.LoadStudentsUnder("dr-who")
	require.NoError(t, err)
	assert.Len(t, who, 1)

	none, err := s.LoadStudentsUnder("nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testAppointments(t *testing.T, s storage.Storage) {
	got, err := s.LoadAppointments()
	require.NoError(t, err)
	assert.Empty(t, got)

	day := time.Date(2030, 3, 4, 0, 0, 0, 0, time.Local)
	first := types.Appointment{Slot: day.Add(10 * time.Hour), SupervisorName: "dr-smith", StudentName: "alice"}
	second := types.Appointment{Slot: day.Add(9*time.Hour + 30*time.Minute), SupervisorName: "dr-smith", StudentName: "bob"}
	require.NoError(t, s.AppendAppointment(first))
	require.NoError(t, s.AppendAppointment(second))

	got, err = s.LoadAppointments()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Slot.Equal(first.Slot))
	assert.Equal(t, "alice", got[0].StudentName)
	assert.Equal(t, "dr-smith", got[0].SupervisorName)
	assert.True(t, got[1].Slot.Equal(second.Slot))
	assert.Equal(t, []time.Time{got[0].Slot, got[1].Slot}, storage.BookedSlots(got))
}

func testFeelings(t *testing.T, s storage.Storage) {
	got, err := s.LoadFeelings()
	require.NoError(t, err)
	assert.Empty(t, got)

	day := time.Date(2024, 1, 3, 0, 0, 0, 0, time.Local)
	require.NoError(t, s.AppendFeeling(types.FeelingEntry{Day: day, StudentName: "alice", Rating: 7}))
	require.NoError(t, s.AppendFeeling(types.FeelingEntry{Day: day.AddDate(0, 0, -1), StudentName: "bob", Rating: 10}))

	got, err = s.LoadFeelings()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Day.Equal(day))
	assert.Equal(t, "alice", got[0].StudentName)
	assert.Equal(t, 7, got[0].Rating)
	assert.Equal(t, "bob", got[1].StudentName)
	assert.Equal(t, 10, got[1].Rating)
}
