package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-manager/internal/models"
	"github.com/noah-isme/edu-manager/pkg/database"
)

// ClassPlanRepository manages persistence for class plans.
type ClassPlanRepository struct {
	db *sqlx.DB
}

// NewClassPlanRepository constructs a ClassPlanRepository.
func NewClassPlanRepository(db *sqlx.DB) *ClassPlanRepository {
	return &ClassPlanRepository{db: db}
}

// List returns class plans with the teacher name, newest first.
func (r *ClassPlanRepository) List(ctx context.Context) ([]models.ClassPlanRow, error) {
	const query = `SELECT p.id, p.teacher_id, p.class, p.year, p.file_path, t.full_name AS teacher_name
		FROM class_plans p
		LEFT JOIN teachers t ON t.id = p.teacher_id
		ORDER BY p.id DESC`
	var plans []models.ClassPlanRow
	if err := r.db.SelectContext(ctx, &plans, query); err != nil {
		return nil, fmt.Errorf("list class plans: %w", err)
	}
	return plans, nil
}

// FindByID fetches a class plan by ID.
func (r *ClassPlanRepository) FindByID(ctx context.Context, id int64) (*models.ClassPlan, error) {
	var plan models.ClassPlan
	if err := r.db.GetContext(ctx, &plan, r.db.Rebind(`SELECT id, teacher_id, class, year, file_path FROM class_plans WHERE id = ?`), id); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Create inserts a class plan and returns its id.
func (r *ClassPlanRepository) Create(ctx context.Context, plan *models.ClassPlan) (int64, error) {
	id, err := database.InsertID(ctx, r.db, `INSERT INTO class_plans (teacher_id, class, year, file_path) VALUES (?, ?, ?, ?)`,
		plan.TeacherID, plan.Class, plan.Year, plan.FilePath)
	if err != nil {
		return 0, fmt.Errorf("create class plan: %w", err)
	}
	plan.ID = id
	return id, nil
}

// Update modifies an existing class plan.
func (r *ClassPlanRepository) Update(ctx context.Context, plan *models.ClassPlan) error {
	const query = `UPDATE class_plans SET teacher_id = ?, class = ?, year = ?, file_path = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), plan.TeacherID, plan.Class, plan.Year, plan.FilePath, plan.ID); err != nil {
		return fmt.Errorf("update class plan: %w", err)
	}
	return nil
}

// Delete removes a class plan.
func (r *ClassPlanRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM class_plans WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete class plan: %w", err)
	}
	return nil
}

// ExamProtocolRepository manages persistence for exam protocols.
type ExamProtocolRepository struct {
	db *sqlx.DB
}

// NewExamProtocolRepository constructs an ExamProtocolRepository.
func NewExamProtocolRepository(db *sqlx.DB) *ExamProtocolRepository {
	return &ExamProtocolRepository{db: db}
}

// List returns exam protocols with the teacher name, newest first.
func (r *ExamProtocolRepository) List(ctx context.Context) ([]models.ExamProtocolRow, error) {
	const query = `SELECT e.id, e.teacher_id, e.subject, e.class, e.date, e.file_path, t.full_name AS teacher_name
		FROM exam_protocols e
		LEFT JOIN teachers t ON t.id = e.teacher_id
		ORDER BY e.id DESC`
	var protocols []models.ExamProtocolRow
	if err := r.db.SelectContext(ctx, &protocols, query); err != nil {
		return nil, fmt.Errorf("list exam protocols: %w", err)
	}
	return protocols, nil
}

// FindByID fetches an exam protocol by ID.
func (r *ExamProtocolRepository) FindByID(ctx context.Context, id int64) (*models.ExamProtocol, error) {
	const query = `SELECT id, teacher_id, subject, class, date, file_path FROM exam_protocols WHERE id = ?`
	var protocol models.ExamProtocol
	if err := r.db.GetContext(ctx, &protocol, r.db.Rebind(query), id); err != nil {
		return nil, err
	}
	return &protocol, nil
}

// Create inserts an exam protocol and returns its id.
func (r *ExamProtocolRepository) Create(ctx context.Context, p *models.ExamProtocol) (int64, error) {
	id, err := database.InsertID(ctx, r.db, `INSERT INTO exam_protocols (teacher_id, subject, class, date, file_path) VALUES (?, ?, ?, ?, ?)`,
		p.TeacherID, p.Subject, p.Class, p.Date, p.FilePath)
	if err != nil {
		return 0, fmt.Errorf("create exam protocol: %w", err)
	}
	p.ID = id
	return id, nil
}

// Update modifies an existing exam protocol.
func (r *ExamProtocolRepository) Update(ctx context.Context, p *models.ExamProtocol) error {
	const query = `UPDATE exam_protocols SET teacher_id = ?, subject = ?, class = ?, date = ?, file_path = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), p.TeacherID, p.Subject, p.Class, p.Date, p.FilePath, p.ID); err != nil {
		return fmt.Errorf("update exam protocol: %w", err)
	}
	return nil
}

// Delete removes an exam protocol.
func (r *ExamProtocolRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM exam_protocols WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete exam protocol: %w", err)
	}
	return nil
}
