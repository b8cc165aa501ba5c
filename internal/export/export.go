// Package export renders schedules as Excel workbooks.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-classroom/internal/classroom"
)

// SheetName is the single sheet of a schedule workbook.
const SheetName = "Schedule"

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrGenerateFailed is returned when the workbook cannot be written.
var ErrGenerateFailed = errors.New("generate workbook failed")

var header = []string{"Day", "Start", "End", "Subject", "Lecture"}

// Lookup resolves the ids a schedule refers to.
type Lookup struct {
	Subjects []classroom.Subject
	Lectures []classroom.Lecture
	Teacher  string
}

// Schedule writes one row per lesson, days in weekday order and lessons by start
// time. It returns the workbook and a suggested file name.
func Schedule(s classroom.Schedule, lookup Lookup) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, "", fmt.Errorf("%w: rename sheet: %v", ErrGenerateFailed, err)
	}

	_ = f.SetColWidth(SheetName, "A", "A", 14)
	_ = f.SetColWidth(SheetName, "B", "C", 8)
	_ = f.SetColWidth(SheetName, "D", "E", 28)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: header style: %v", ErrGenerateFailed, err)
	}

	for i, title := range header {
		_ = f.SetCellValue(SheetName, cell(i, 1), title)
	}
	_ = f.SetCellStyle(SheetName, cell(0, 1), cell(len(header)-1, 1), headerStyle)
	_ = f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	row := 2
	for _, day := range orderedDays(s.Days) {
		for _, lesson := range orderedLessons(day.Lessons) {
			lecture := ""
			if lesson.LectureID != nil {
				lecture = classroom.LectureName(lookup.Lectures, *lesson.LectureID)
			}
			values := []any{
				classroom.NormalizeDay(day.Day),
				lesson.StartTime,
				lesson.EndTime,
				classroom.SubjectName(lookup.Subjects, lesson.SubjectID),
				lecture,
			}
			for i, v := range values {
				if v == "" {
					continue
				}
				_ = f.SetCellValue(SheetName, cell(i, row), v)
			}
			row++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrGenerateFailed, err)
	}
	return buf, fileName(s, lookup.Teacher), nil
}

func orderedDays(days []classroom.Day) []classroom.Day {
	out := slices.Clone(days)
	slices.SortStableFunc(out, func(a, b classroom.Day) int {
		return weekdayIndex(a.Day) - weekdayIndex(b.Day)
	})
	return out
}

func orderedLessons(lessons []classroom.Lesson) []classroom.Lesson {
	out := slices.Clone(lessons)
	slices.SortStableFunc(out, func(a, b classroom.Lesson) int {
		return strings.Compare(a.StartTime, b.StartTime)
	})
	return out
}

// weekdayIndex places unknown labels after Friday, keeping their order.
func weekdayIndex(label string) int {
	if i := slices.Index(classroom.Weekdays, classroom.NormalizeDay(label)); i >= 0 {
		return i
	}
	return len(classroom.Weekdays)
}

func fileName(s classroom.Schedule, teacher string) string {
	parts := []string{"schedule"}
	if t := sanitize(teacher); t != "" {
		parts = append(parts, t)
	}
	if s.WeekStart != "" {
		parts = append(parts, sanitize(s.WeekStart))
	}
	parts = append(parts, s.ID.String())
	return strings.Join(parts, "_") + ".xlsx"
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		case r == ' ' || r == '_':
			return '-'
		default:
			return -1
		}
	}, strings.TrimSpace(s))
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
