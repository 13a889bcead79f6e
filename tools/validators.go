package tools

import (
	"regexp"

	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateID checks that an id taken from a path or body is a UUID.
func ValidateID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
