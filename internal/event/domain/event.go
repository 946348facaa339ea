package domain

import (
	"errors"
	"regexp"
	"time"
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,62}$`)

// Event is an RSVP event guests verify against.
type Event struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Validate validates the event for persistence. Returns an error describing the first validation failure.
func (e *Event) Validate() error {
	if !idPattern.MatchString(e.ID) {
		return errors.New("id must be a lowercase slug of at most 63 characters")
	}
	if e.Name == "" {
		return errors.New("name is required")
	}
	return nil
}
