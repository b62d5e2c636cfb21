package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-manager/internal/models"
	"github.com/noah-isme/edu-manager/pkg/database"
)

// StudentRepository manages persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students, newest first.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, `SELECT id, full_name, birthdate, class FROM students ORDER BY id DESC`); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, r.db.Rebind(`SELECT id, full_name, birthdate, class FROM students WHERE id = ?`), id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindIDByName returns the id of the first student with the exact full name.
func (r *StudentRepository) FindIDByName(ctx context.Context, fullName string) (int64, error) {
	var id int64
	if err := r.db.GetContext(ctx, &id, r.db.Rebind(`SELECT id FROM students WHERE full_name = ? ORDER BY id LIMIT 1`), fullName); err != nil {
		return 0, err
	}
	return id, nil
}

// Create inserts a student and returns its id.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) (int64, error) {
	id, err := database.InsertID(ctx, r.db, `INSERT INTO students (full_name, birthdate, class) VALUES (?, ?, ?)`,
		student.FullName, student.BirthDate, student.Class)
	if err != nil {
		return 0, fmt.Errorf("create student: %w", err)
	}
	student.ID = id
	return id, nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET full_name = ?, birthdate = ?, class = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), student.FullName, student.BirthDate, student.Class, student.ID); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student together with its grade reports.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM students WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// SocialPassportRepository manages persistence for social passport statistics.
type SocialPassportRepository struct {
	db *sqlx.DB
}

// NewSocialPassportRepository constructs a SocialPassportRepository.
func NewSocialPassportRepository(db *sqlx.DB) *SocialPassportRepository {
	return &SocialPassportRepository{db: db}
}

const socialPassportColumns = `id, class, year, total_students, full_families, low_income, disabilities, orphaned, many_children`

// List returns passports, newest first.
func (r *SocialPassportRepository) List(ctx context.Context) ([]models.SocialPassport, error) {
	var passports []models.SocialPassport
	if err := r.db.SelectContext(ctx, &passports, `SELECT `+socialPassportColumns+` FROM social_passport ORDER BY id DESC`); err != nil {
		return nil, fmt.Errorf("list social passports: %w", err)
	}
	return passports, nil
}

// FindByID fetches a passport by ID.
func (r *SocialPassportRepository) FindByID(ctx context.Context, id int64) (*models.SocialPassport, error) {
	var passport models.SocialPassport
	if err := r.db.GetContext(ctx, &passport, r.db.Rebind(`SELECT `+socialPassportColumns+` FROM social_passport WHERE id = ?`), id); err != nil {
		return nil, err
	}
	return &passport, nil
}

// Create inserts a passport and returns its id.
func (r *SocialPassportRepository) Create(ctx context.Context, p *models.SocialPassport) (int64, error) {
	const query = `INSERT INTO social_passport (class, year, total_students, full_families, low_income, disabilities, orphaned, many_children)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := database.InsertID(ctx, r.db, query,
		p.Class, p.Year, p.TotalStudents, p.FullFamilies, p.LowIncome, p.Disabilities, p.Orphaned, p.ManyChildren)
	if err != nil {
		return 0, fmt.Errorf("create social passport: %w", err)
	}
	p.ID = id
	return id, nil
}

// Update modifies an existing passport.
func (r *SocialPassportRepository) Update(ctx context.Context, p *models.SocialPassport) error {
	const query = `UPDATE social_passport SET class = ?, year = ?, total_students = ?, full_families = ?, low_income = ?,
		disabilities = ?, orphaned = ?, many_children = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		p.Class, p.Year, p.TotalStudents, p.FullFamilies, p.LowIncome, p.Disabilities, p.Orphaned, p.ManyChildren, p.ID); err != nil {
		return fmt.Errorf("update social passport: %w", err)
	}
	return nil
}

// Delete removes a passport.
func (r *SocialPassportRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM social_passport WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete social passport: %w", err)
	}
	return nil
}
