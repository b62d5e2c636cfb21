package models

// DefaultLessonType is applied when a lesson is saved without a type.
const DefaultLessonType = "комбинированный"

// LessonTypes lists the lesson kinds offered by the lesson form.
var LessonTypes = []string{DefaultLessonType, "практический"}

// DefaultSectionTitles are suggested when picking a section for a lesson.
var DefaultSectionTitles = []string{"РО 6.1", "РО 6.2", "РО 6.3"}

// Module is a top-level curriculum unit.
type Module struct {
	ID         int64   `db:"id" json:"id"`
	Code       *string `db:"code" json:"code,omitempty"`
	Title      *string `db:"title" json:"title,omitempty"`
	TotalHours *int    `db:"total_hours" json:"total_hours,omitempty"`
}

// Section is a curriculum subdivision (ro_sections) under a module.
type Section struct {
	ID       int64   `db:"id" json:"id"`
	ModuleID *int64  `db:"module_id" json:"module_id,omitempty"`
	Code     *string `db:"code" json:"code,omitempty"`
	Title    *string `db:"title" json:"title,omitempty"`
	Hours    *int    `db:"hours" json:"hours,omitempty"`
}

// Lesson is a numbered lesson of a section.
type Lesson struct {
	ID         int64   `db:"id" json:"id"`
	SectionID  *int64  `db:"ro_id" json:"section_id,omitempty"`
	Number     *int    `db:"number" json:"number,omitempty"`
	Criteria   *string `db:"criteria" json:"criteria,omitempty"`
	TotalHours *int    `db:"total_hours" json:"total_hours,omitempty"`
	Type       *string `db:"type" json:"type,omitempty"`
}

// LessonRow is a lesson listing row joined with its section title.
type LessonRow struct {
	Lesson
	SectionTitle *string `db:"section_title" json:"section_title,omitempty"`
}
