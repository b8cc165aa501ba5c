package classroom

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Unknown is rendered in place of a dangling reference.
const Unknown = "unknown"

// Weekdays are the days a generated schedule spans.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

var dayCaser = cases.Title(language.English)

// NormalizeDay title-cases a weekday label ("  monday" -> "Monday").
func NormalizeDay(label string) string {
	return dayCaser.String(strings.ToLower(strings.TrimSpace(label)))
}

// SubjectName resolves a subject id, tolerating dangling references.
func SubjectName(subjects []Subject, id ID) string {
	for _, s := range subjects {
		if s.ID == id {
			return s.Name
		}
	}
	return Unknown
}

// LectureName resolves a lecture id, tolerating dangling references.
func LectureName(lectures []Lecture, id ID) string {
	for _, l := range lectures {
		if l.ID == id {
			return l.Name
		}
	}
	return Unknown
}
