package seed

// File is the YAML seed document. Records refer to each other by name because
// ids are only minted when the seed is applied.
type File struct {
	Subjects []Subject `yaml:"subjects"`
	Lectures []Lecture `yaml:"lectures"`
	Teachers []Teacher `yaml:"teachers"`
}

// Subject seeds a classroom.Subject.
type Subject struct {
	Name  string `yaml:"name"`
	Icon  string `yaml:"icon"`
	Color string `yaml:"color"`
}

// Lecture seeds a classroom.Lecture. Subject is the subject name.
type Lecture struct {
	Name     string `yaml:"name"`
	Subject  string `yaml:"subject"`
	Content  string `yaml:"content"`
	Duration int    `yaml:"duration"`
}

// Teacher seeds a classroom.Teacher. Subjects lists subject names.
type Teacher struct {
	Name           string   `yaml:"name"`
	Subjects       []string `yaml:"subjects"`
	HoursPerWeek   int      `yaml:"hours_per_week"`
	LessonDuration int      `yaml:"lesson_duration"`
	MinBreak       int      `yaml:"min_break"`
	WorkStart      string   `yaml:"work_start"`
	WorkEnd        string   `yaml:"work_end"`
}

// Empty reports whether the file holds no records.
func (f *File) Empty() bool {
	return len(f.Subjects) == 0 && len(f.Lectures) == 0 && len(f.Teachers) == 0
}
