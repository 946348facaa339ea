package domain

import "time"

// NameQuestionID is the answer key the guest's display name is taken from.
const NameQuestionID = "q-name"

// UnknownName is the display name used when the name answer is absent or not a string.
// Empty and blank strings are kept as submitted.
const UnknownName = "Unknown"

// Guest is one guest's response to an event. (EventID, Phone) is unique.
type Guest struct {
	ID          string
	EventID     string
	Phone       string
	Name        string
	Responses   map[string]any
	SubmittedAt time.Time
}

// NameFromAnswers returns the "q-name" answer exactly as submitted, or UnknownName when it is missing or not a string.
func NameFromAnswers(answers map[string]any) string {
	if v, ok := answers[NameQuestionID].(string); ok {
		return v
	}
	return UnknownName
}
