package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-manager/internal/models"
	"github.com/noah-isme/edu-manager/pkg/database"
)

// ModuleRepository manages persistence for curriculum modules.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository constructs a ModuleRepository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// List returns modules, newest first.
func (r *ModuleRepository) List(ctx context.Context) ([]models.Module, error) {
	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, `SELECT id, code, title, total_hours FROM module ORDER BY id DESC`); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

// FindByID fetches a module by ID.
func (r *ModuleRepository) FindByID(ctx context.Context, id int64) (*models.Module, error) {
	var module models.Module
	if err := r.db.GetContext(ctx, &module, r.db.Rebind(`SELECT id, code, title, total_hours FROM module WHERE id = ?`), id); err != nil {
		return nil, err
	}
	return &module, nil
}

// FirstID returns the lowest module id, the default parent of new sections.
func (r *ModuleRepository) FirstID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.db.GetContext(ctx, &id, `SELECT id FROM module ORDER BY id LIMIT 1`); err != nil {
		return 0, err
	}
	return id, nil
}

// Create inserts a module and returns its id.
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) (int64, error) {
	id, err := database.InsertID(ctx, r.db, `INSERT INTO module (code, title, total_hours) VALUES (?, ?, ?)`,
		module.Code, module.Title, module.TotalHours)
	if err != nil {
		return 0, fmt.Errorf("create module: %w", err)
	}
	module.ID = id
	return id, nil
}

// Update modifies an existing module.
func (r *ModuleRepository) Update(ctx context.Context, module *models.Module) error {
	const query = `UPDATE module SET code = ?, title = ?, total_hours = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), module.Code, module.Title, module.TotalHours, module.ID); err != nil {
		return fmt.Errorf("update module: %w", err)
	}
	return nil
}

// Delete removes a module. Modules still owning sections are rejected by the database.
func (r *ModuleRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM module WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	return nil
}

// SectionRepository manages persistence for curriculum sections (ro_sections).
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs a SectionRepository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

const sectionColumns = `id, module_id, code, title, hours`

// List returns sections, newest first.
func (r *SectionRepository) List(ctx context.Context) ([]models.Section, error) {
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, `SELECT `+sectionColumns+` FROM ro_sections ORDER BY id DESC`); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// Titles returns every section title in alphabetical order.
func (r *SectionRepository) Titles(ctx context.Context) ([]string, error) {
	var titles []string
	if err := r.db.SelectContext(ctx, &titles, `SELECT title FROM ro_sections WHERE title IS NOT NULL ORDER BY title`); err != nil {
		return nil, fmt.Errorf("list section titles: %w", err)
	}
	return titles, nil
}

// FindByID fetches a section by ID.
func (r *SectionRepository) FindByID(ctx context.Context, id int64) (*models.Section, error) {
	var section models.Section
	if err := r.db.GetContext(ctx, &section, r.db.Rebind(`SELECT `+sectionColumns+` FROM ro_sections WHERE id = ?`), id); err != nil {
		return nil, err
	}
	return &section, nil
}

// FindByTitle fetches the first section with the given title.
func (r *SectionRepository) FindByTitle(ctx context.Context, title string) (*models.Section, error) {
	var section models.Section
	if err := r.db.GetContext(ctx, &section, r.db.Rebind(`SELECT `+sectionColumns+` FROM ro_sections WHERE title = ? ORDER BY id LIMIT 1`), title); err != nil {
		return nil, err
	}
	return &section, nil
}

// Create inserts a section and returns its id.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) (int64, error) {
	id, err := database.InsertID(ctx, r.db, `INSERT INTO ro_sections (module_id, code, title, hours) VALUES (?, ?, ?, ?)`,
		section.ModuleID, section.Code, section.Title, section.Hours)
	if err != nil {
		return 0, fmt.Errorf("create section: %w", err)
	}
	section.ID = id
	return id, nil
}

// Update modifies an existing section.
func (r *SectionRepository) Update(ctx context.Context, section *models.Section) error {
	const query = `UPDATE ro_sections SET module_id = ?, code = ?, title = ?, hours = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), section.ModuleID, section.Code, section.Title, section.Hours, section.ID); err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return nil
}

// Delete removes a section. Sections still owning lessons are rejected by the database.
func (r *SectionRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM ro_sections WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return nil
}

// LessonRepository manages persistence for lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a LessonRepository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// List returns lessons with their section title, newest first.
func (r *LessonRepository) List(ctx context.Context) ([]models.LessonRow, error) {
	const query = `SELECT l.id, l.ro_id, l.number, l.criteria, l.total_hours, l.type, s.title AS section_title
		FROM lessons l
		LEFT JOIN ro_sections s ON s.id = l.ro_id
		ORDER BY l.id DESC`
	var lessons []models.LessonRow
	if err := r.db.SelectContext(ctx, &lessons, query); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// FindByID fetches a lesson by ID together with its section title.
func (r *LessonRepository) FindByID(ctx context.Context, id int64) (*models.LessonRow, error) {
	const query = `SELECT l.id, l.ro_id, l.number, l.criteria, l.total_hours, l.type, s.title AS section_title
		FROM lessons l
		LEFT JOIN ro_sections s ON s.id = l.ro_id
		WHERE l.id = ?`
	var lesson models.LessonRow
	if err := r.db.GetContext(ctx, &lesson, r.db.Rebind(query), id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Create inserts a lesson and returns its id.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) (int64, error) {
	id, err := database.InsertID(ctx, r.db, `INSERT INTO lessons (ro_id, number, criteria, total_hours, type) VALUES (?, ?, ?, ?, ?)`,
		lesson.SectionID, lesson.Number, lesson.Criteria, lesson.TotalHours, lesson.Type)
	if err != nil {
		return 0, fmt.Errorf("create lesson: %w", err)
	}
	lesson.ID = id
	return id, nil
}

// Update modifies an existing lesson.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	const query = `UPDATE lessons SET ro_id = ?, number = ?, criteria = ?, total_hours = ?, type = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), lesson.SectionID, lesson.Number, lesson.Criteria, lesson.TotalHours, lesson.Type, lesson.ID); err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return nil
}

// Delete removes a lesson.
func (r *LessonRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM lessons WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}
