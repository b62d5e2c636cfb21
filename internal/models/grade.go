package models

// GradeReport holds a student's semester grades for a subject. FinalGrade is
// always derived from S1 and S2.
type GradeReport struct {
	ID         int64   `db:"id" json:"id"`
	StudentID  *int64  `db:"student_id" json:"student_id,omitempty"`
	Subject    *string `db:"subject" json:"subject,omitempty"`
	S1         *int    `db:"s1" json:"s1,omitempty"`
	S2         *int    `db:"s2" json:"s2,omitempty"`
	FinalGrade *int    `db:"final_grade" json:"final_grade,omitempty"`
}

// GradeReportRow is a grade report listing row joined with the student name.
type GradeReportRow struct {
	GradeReport
	StudentName *string `db:"student_name" json:"student_name,omitempty"`
}
