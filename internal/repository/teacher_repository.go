package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-manager/internal/models"
	"github.com/noah-isme/edu-manager/pkg/database"
)

// TeacherRepository manages persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers, newest first.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, `SELECT id, full_name, position FROM teachers ORDER BY id DESC`); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, r.db.Rebind(`SELECT id, full_name, position FROM teachers WHERE id = ?`), id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindIDByName returns the id of the first teacher with the exact full name.
func (r *TeacherRepository) FindIDByName(ctx context.Context, fullName string) (int64, error) {
	var id int64
	if err := r.db.GetContext(ctx, &id, r.db.Rebind(`SELECT id FROM teachers WHERE full_name = ? ORDER BY id LIMIT 1`), fullName); err != nil {
		return 0, err
	}
	return id, nil
}

// Create inserts a teacher and returns its id.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) (int64, error) {
	id, err := database.InsertID(ctx, r.db, `INSERT INTO teachers (full_name, position) VALUES (?, ?)`, teacher.FullName, teacher.Position)
	if err != nil {
		return 0, fmt.Errorf("create teacher: %w", err)
	}
	teacher.ID = id
	return id, nil
}

// Update modifies an existing teacher.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE teachers SET full_name = ?, position = ? WHERE id = ?`), teacher.FullName, teacher.Position, teacher.ID); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// Delete removes a teacher; plans and protocols keep their rows with a NULL teacher.
func (r *TeacherRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM teachers WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return nil
}
