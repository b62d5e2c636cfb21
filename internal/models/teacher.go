package models

// Teacher is a staff member referenced by class plans and exam protocols.
type Teacher struct {
	ID       int64   `db:"id" json:"id"`
	FullName *string `db:"full_name" json:"full_name,omitempty"`
	Position *string `db:"position" json:"position,omitempty"`
}

// ClassPlan stores the path of a teacher's plan for a class and year.
type ClassPlan struct {
	ID        int64   `db:"id" json:"id"`
	TeacherID *int64  `db:"teacher_id" json:"teacher_id,omitempty"`
	Class     *string `db:"class" json:"class,omitempty"`
	Year      *int    `db:"year" json:"year,omitempty"`
	FilePath  *string `db:"file_path" json:"file_path,omitempty"`
}

// ClassPlanRow is a class plan listing row joined with the teacher name.
type ClassPlanRow struct {
	ClassPlan
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
}

// ExamProtocol stores the path of an exam protocol.
type ExamProtocol struct {
	ID        int64   `db:"id" json:"id"`
	TeacherID *int64  `db:"teacher_id" json:"teacher_id,omitempty"`
	Subject   *string `db:"subject" json:"subject,omitempty"`
	Class     *string `db:"class" json:"class,omitempty"`
	Date      *Date   `db:"date" json:"date,omitempty"`
	FilePath  *string `db:"file_path" json:"file_path,omitempty"`
}

// ExamProtocolRow is an exam protocol listing row joined with the teacher name.
type ExamProtocolRow struct {
	ExamProtocol
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
}
