package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aanand-mishra/student-logging/internal/types"
)

func TestNew(t *testing.T) {
	s := New(types.RoleStudent, types.UserProfile{Name: "alice", Password: "x"})
	assert.Equal(t, "alice", s.Name())
	assert.Equal(t, types.Student{Name: "alice"}, s.Student)

	s.SetSupervisor("dr-smith")
	assert.True(t, s.Student.HasSupervisor())

	tutor := New(types.RoleSeniorTutor, types.UserProfile{Name: "st"})
	assert.Empty(t, tutor.Student.Name)
}
