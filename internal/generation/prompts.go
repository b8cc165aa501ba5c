package generation

import (
	"fmt"
	"strings"

	"github.com/p-n-ai/pai-classroom/internal/classroom"
)

const scheduleSystemPrompt = `You are a school timetable planner. You answer with a single JSON object and nothing else.`

const lectureSystemPrompt = `You are an experienced teacher who writes clear, well structured lecture notes in Markdown.`

const testSystemPrompt = `You are an assessment designer. You answer with a single JSON object and nothing else: no Markdown, no code fences, no commentary.`

func buildSchedulePrompt(teacher classroom.Teacher, subjects []classroom.Subject) string {
	names := make([]string, 0, len(teacher.SelectedSubjects))
	ids := make([]string, 0, len(teacher.SelectedSubjects))
	for _, id := range teacher.SelectedSubjects {
		names = append(names, fmt.Sprintf("%s (subject_id %d)", classroom.SubjectName(subjects, id), id))
		ids = append(ids, id.String())
	}

	var b strings.Builder
	b.WriteString("Teacher:\n")
	fmt.Fprintf(&b, "- Subjects: %s\n", strings.Join(names, ", "))
	fmt.Fprintf(&b, "- Hours per week: %d\n", teacher.HoursPerWeek)
	fmt.Fprintf(&b, "- Lesson duration: %d minutes\n", teacher.LessonDuration)
	fmt.Fprintf(&b, "- Minimum break: %d minutes\n", teacher.MinBreak)
	fmt.Fprintf(&b, "- Working hours: %s - %s\n", teacher.WorkStart, teacher.WorkEnd)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Build a weekly schedule for %s.\n", strings.Join(classroom.Weekdays, ", "))
	b.WriteString("Keep the total teaching time close to the weekly hours, keep every lesson inside the working hours ")
	b.WriteString("and leave at least the minimum break between lessons.\n")
	if len(ids) > 0 {
		fmt.Fprintf(&b, "Use only these subject_id values: %s.\n", strings.Join(ids, ", "))
	}
	b.WriteString(`Return JSON in this shape:
{
  "days": [
    {
      "day": "Monday",
      "lessons": [
        {"subject_id": 1, "lecture_id": 1, "start_time": "09:00", "end_time": "10:30"}
      ]
    }
  ]
}`)
	return b.String()
}

func buildLecturePrompt(title string, subject classroom.Subject) string {
	return fmt.Sprintf(
		"Write a lecture for the subject %q titled %q.\nReturn the lecture text in Markdown.",
		subject.Name, title,
	)
}

func buildTestPrompt(lecture classroom.Lecture, opts TestOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a test for the lecture %q with %d questions.\n", lecture.Name, opts.QuestionCount)
	fmt.Fprintf(&b, "Difficulty: %s.\n", opts.Difficulty)
	fmt.Fprintf(&b, "Question types: %s.\n", strings.Join(opts.Types, ", "))
	b.WriteString("\nLecture text:\n\"\"\"\n")
	b.WriteString(lecture.Content)
	b.WriteString("\n\"\"\"\n\n")
	b.WriteString(`Rules:
- Reply with JSON only.
- "answer" is the zero-based index of the correct option as a number, never the option text.

Return JSON in this shape:
{
  "questions": [
    {"question": "text", "type": "multiple-choice", "options": ["a", "b", "c"], "answer": 0}
  ]
}`)
	return b.String()
}
