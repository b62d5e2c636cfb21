package models

// Student is a learner; deleting one cascades to its grade reports.
type Student struct {
	ID        int64   `db:"id" json:"id"`
	FullName  *string `db:"full_name" json:"full_name,omitempty"`
	BirthDate *Date   `db:"birthdate" json:"birthdate,omitempty"`
	Class     *string `db:"class" json:"class,omitempty"`
}

// SocialPassport holds per-class social statistics for a year.
type SocialPassport struct {
	ID            int64   `db:"id" json:"id"`
	Class         *string `db:"class" json:"class,omitempty"`
	Year          *int    `db:"year" json:"year,omitempty"`
	TotalStudents *int    `db:"total_students" json:"total_students,omitempty"`
	FullFamilies  *int    `db:"full_families" json:"full_families,omitempty"`
	LowIncome     *int    `db:"low_income" json:"low_income,omitempty"`
	Disabilities  *int    `db:"disabilities" json:"disabilities,omitempty"`
	Orphaned      *int    `db:"orphaned" json:"orphaned,omitempty"`
	ManyChildren  *int    `db:"many_children" json:"many_children,omitempty"`
}
