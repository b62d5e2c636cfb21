package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-manager/internal/models"
	"github.com/noah-isme/edu-manager/pkg/database"
)

// GradeReportRepository manages persistence for grade reports.
type GradeReportRepository struct {
	db *sqlx.DB
}

// NewGradeReportRepository constructs a GradeReportRepository.
func NewGradeReportRepository(db *sqlx.DB) *GradeReportRepository {
	return &GradeReportRepository{db: db}
}

// List returns grade reports with the student name, newest first.
func (r *GradeReportRepository) List(ctx context.Context) ([]models.GradeReportRow, error) {
	const query = `SELECT g.id, g.student_id, g.subject, g.s1, g.s2, g.final_grade, s.full_name AS student_name
		FROM grade_reports g
		LEFT JOIN students s ON s.id = g.student_id
		ORDER BY g.id DESC`
	var reports []models.GradeReportRow
	if err := r.db.SelectContext(ctx, &reports, query); err != nil {
		return nil, fmt.Errorf("list grade reports: %w", err)
	}
	return reports, nil
}

// FindByID fetches a grade report by ID.
func (r *GradeReportRepository) FindByID(ctx context.Context, id int64) (*models.GradeReport, error) {
	const query = `SELECT id, student_id, subject, s1, s2, final_grade FROM grade_reports WHERE id = ?`
	var report models.GradeReport
	if err := r.db.GetContext(ctx, &report, r.db.Rebind(query), id); err != nil {
		return nil, err
	}
	return &report, nil
}

// Create inserts a grade report and returns its id.
func (r *GradeReportRepository) Create(ctx context.Context, report *models.GradeReport) (int64, error) {
	id, err := database.InsertID(ctx, r.db, `INSERT INTO grade_reports (student_id, subject, s1, s2, final_grade) VALUES (?, ?, ?, ?, ?)`,
		report.StudentID, report.Subject, report.S1, report.S2, report.FinalGrade)
	if err != nil {
		return 0, fmt.Errorf("create grade report: %w", err)
	}
	report.ID = id
	return id, nil
}

// Update modifies an existing grade report.
func (r *GradeReportRepository) Update(ctx context.Context, report *models.GradeReport) error {
	const query = `UPDATE grade_reports SET student_id = ?, subject = ?, s1 = ?, s2 = ?, final_grade = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		report.StudentID, report.Subject, report.S1, report.S2, report.FinalGrade, report.ID); err != nil {
		return fmt.Errorf("update grade report: %w", err)
	}
	return nil
}

// Delete removes a grade report.
func (r *GradeReportRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM grade_reports WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete grade report: %w", err)
	}
	return nil
}
