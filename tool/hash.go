package tool

import (
	"github.com/google/uuid"
)

func GenerateRandomUUID() string {
	return uuid.New().String()
}

// GenerateSessionID returns a random (v4) session id.
func GenerateSessionID() string {
	return GenerateRandomUUID()
}

// IsSessionID reports whether s has the shape of an id from GenerateSessionID.
// Anything else must never be joined into a filesystem path.
func IsSessionID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
