// Package classroom defines the records managed by the teacher workspace:
// subjects, lectures, tests, teacher profiles and weekly schedules.
package classroom

// QuestionTypeMultipleChoice is the only question type produced by generation.
const QuestionTypeMultipleChoice = "multiple-choice"

// TestSchemaVersion marks tests whose question answers are option indexes.
const TestSchemaVersion = 2

// Subject is a taught discipline.
type Subject struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// Lecture is a piece of teaching material belonging to a subject.
type Lecture struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	Duration  int    `json:"duration,omitempty"` // minutes
	SubjectID ID     `json:"subject_id"`
}

// Test is a question set built on top of a lecture.
type Test struct {
	ID            ID         `json:"id"`
	LectureID     ID         `json:"lecture_id"`
	Name          string     `json:"name"`
	Questions     []Question `json:"questions"`
	SchemaVersion int        `json:"schema_version,omitempty"`
}

// Teacher holds the workload preferences used to draft a weekly schedule.
type Teacher struct {
	ID               ID     `json:"id"`
	Name             string `json:"name"`
	SelectedSubjects []ID   `json:"selected_subjects"`
	HoursPerWeek     int    `json:"hours_per_week"`
	LessonDuration   int    `json:"lesson_duration"` // minutes
	MinBreak         int    `json:"min_break"`       // minutes
	WorkStart        string `json:"work_start"`      // HH:MM
	WorkEnd          string `json:"work_end"`        // HH:MM
}

// Schedule is one teacher's lesson plan for a week.
type Schedule struct {
	ID        ID     `json:"id"`
	TeacherID ID     `json:"teacher_id"`
	WeekStart string `json:"week_start"` // YYYY-MM-DD
	Days      []Day  `json:"days"`
}

// Day groups the lessons of one weekday.
type Day struct {
	Day     string   `json:"day"`
	Lessons []Lesson `json:"lessons"`
}

// Lesson is a single slot in a schedule day.
type Lesson struct {
	SubjectID ID     `json:"subject_id"`
	LectureID *ID    `json:"lecture_id,omitempty"`
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`   // HH:MM
}

// LessonCount returns the number of lessons across all days.
func (s Schedule) LessonCount() int {
	n := 0
	for _, d := range s.Days {
		n += len(d.Lessons)
	}
	return n
}
