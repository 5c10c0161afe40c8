package profile

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func hashPassword(pw string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	return string(b), err
}

// isHashed spots bcrypt output. Everything else in a profile file is a
// legacy plain-text password.
func isHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

func checkPassword(stored, pw string) bool {
	if isHashed(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(pw)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(pw)) == 1
}
