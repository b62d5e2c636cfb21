package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-manager/internal/models"
	appErrors "github.com/noah-isme/edu-manager/pkg/errors"
)

const sectionCodeLength = 10

type moduleRepository interface {
	List(ctx context.Context) ([]models.Module, error)
	FindByID(ctx context.Context, id int64) (*models.Module, error)
	FirstID(ctx context.Context) (int64, error)
	Create(ctx context.Context, module *models.Module) (int64, error)
	Update(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, id int64) error
}

type sectionRepository interface {
	List(ctx context.Context) ([]models.Section, error)
	Titles(ctx context.Context) ([]string, error)
	FindByID(ctx context.Context, id int64) (*models.Section, error)
	FindByTitle(ctx context.Context, title string) (*models.Section, error)
	Create(ctx context.Context, section *models.Section) (int64, error)
	Update(ctx context.Context, section *models.Section) error
	Delete(ctx context.Context, id int64) error
}

type lessonRepository interface {
	List(ctx context.Context) ([]models.LessonRow, error)
	FindByID(ctx context.Context, id int64) (*models.LessonRow, error)
	Create(ctx context.Context, lesson *models.Lesson) (int64, error)
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id int64) error
}

// ModuleRequest is the input of module create and edit.
type ModuleRequest struct {
	Code       string `json:"code" validate:"max=50"`
	Title      string `json:"title" validate:"required,max=255"`
	TotalHours string `json:"total_hours" validate:"omitempty,number"`
}

// ModuleRequestFrom prefills a request with the stored module.
func ModuleRequestFrom(m *models.Module) ModuleRequest {
	return ModuleRequest{Code: formatString(m.Code), Title: formatString(m.Title), TotalHours: formatInt(m.TotalHours)}
}

// ModuleService orchestrates module operations.
type ModuleService struct {
	repo      moduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewModuleService constructs a ModuleService.
func NewModuleService(repo moduleRepository, validate *validator.Validate, logger *zap.Logger) *ModuleService {
	validate, logger = defaults(validate, logger)
	return &ModuleService{repo: repo, validator: validate, logger: logger}
}

// List returns modules, newest first.
func (s *ModuleService) List(ctx context.Context) ([]models.Module, error) {
	modules, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list modules")
	}
	return modules, nil
}

// Get returns a module by id.
func (s *ModuleService) Get(ctx context.Context, id int64) (*models.Module, error) {
	module, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "module")
	}
	return module, nil
}

// Create registers a new module.
func (s *ModuleService) Create(ctx context.Context, req ModuleRequest) (*models.Module, error) {
	trimAll(&req.Code, &req.Title, &req.TotalHours)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "module")
	}
	module := &models.Module{Code: optional(req.Code), Title: optional(req.Title), TotalHours: optionalInt(req.TotalHours)}
	if _, err := s.repo.Create(ctx, module); err != nil {
		return nil, writeError(err, "create", "module")
	}
	return module, nil
}

// Update replaces the editable fields of a module.
func (s *ModuleService) Update(ctx context.Context, id int64, req ModuleRequest) (*models.Module, error) {
	trimAll(&req.Code, &req.Title, &req.TotalHours)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "module")
	}
	module, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "module")
	}
	module.Code = optional(req.Code)
	module.Title = optional(req.Title)
	module.TotalHours = optionalInt(req.TotalHours)
	if err := s.repo.Update(ctx, module); err != nil {
		return nil, writeError(err, "update", "module")
	}
	return module, nil
}

// Delete removes a module; modules that still own sections yield a conflict.
func (s *ModuleService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return loadError(err, "module")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "module")
	}
	return nil
}

// SectionRequest is the input of section create and edit. An empty module
// places the section under the default module; an empty code is derived from
// the title.
type SectionRequest struct {
	ModuleID string `json:"module_id" validate:"omitempty,number"`
	Code     string `json:"code" validate:"max=100"`
	Title    string `json:"title" validate:"required,max=255"`
	Hours    string `json:"hours" validate:"omitempty,number"`
}

// SectionRequestFrom prefills a request with the stored section.
func SectionRequestFrom(sec *models.Section) SectionRequest {
	return SectionRequest{
		ModuleID: formatID(sec.ModuleID),
		Code:     formatString(sec.Code),
		Title:    formatString(sec.Title),
		Hours:    formatInt(sec.Hours),
	}
}

// SectionService orchestrates section operations.
type SectionService struct {
	repo      sectionRepository
	modules   moduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSectionService constructs a SectionService.
func NewSectionService(repo sectionRepository, modules moduleRepository, validate *validator.Validate, logger *zap.Logger) *SectionService {
	validate, logger = defaults(validate, logger)
	return &SectionService{repo: repo, modules: modules, validator: validate, logger: logger}
}

// List returns sections, newest first.
func (s *SectionService) List(ctx context.Context) ([]models.Section, error) {
	sections, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list sections")
	}
	return sections, nil
}

// Titles returns the suggested section titles followed by the stored ones.
func (s *SectionService) Titles(ctx context.Context) ([]string, error) {
	stored, err := s.repo.Titles(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list section titles")
	}
	seen := make(map[string]struct{}, len(stored)+len(models.DefaultSectionTitles))
	titles := make([]string, 0, len(stored)+len(models.DefaultSectionTitles))
	for _, t := range append(append([]string{}, models.DefaultSectionTitles...), stored...) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		titles = append(titles, t)
	}
	return titles, nil
}

// Get returns a section by id.
func (s *SectionService) Get(ctx context.Context, id int64) (*models.Section, error) {
	section, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "section")
	}
	return section, nil
}

// Create registers a new section.
func (s *SectionService) Create(ctx context.Context, req SectionRequest) (*models.Section, error) {
	section := &models.Section{}
	if err := s.apply(ctx, section, req); err != nil {
		return nil, err
	}
	if _, err := s.repo.Create(ctx, section); err != nil {
		return nil, writeError(err, "create", "section")
	}
	return section, nil
}

// Update replaces the editable fields of a section.
func (s *SectionService) Update(ctx context.Context, id int64, req SectionRequest) (*models.Section, error) {
	section, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "section")
	}
	if err := s.apply(ctx, section, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, section); err != nil {
		return nil, writeError(err, "update", "section")
	}
	return section, nil
}

// Delete removes a section; sections that still own lessons yield a conflict.
func (s *SectionService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return loadError(err, "section")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "section")
	}
	return nil
}

// Resolve returns the id of the section with the given title, creating it
// under the default module when none exists.
func (s *SectionService) Resolve(ctx context.Context, title string) (int64, error) {
	existing, err := s.repo.FindByTitle(ctx, title)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, loadError(err, "section")
	}
	section, err := s.Create(ctx, SectionRequest{Title: title})
	if err != nil {
		return 0, err
	}
	s.logger.Info("section created on demand", zap.Int64("section_id", section.ID), zap.String("title", title))
	return section.ID, nil
}

func (s *SectionService) apply(ctx context.Context, section *models.Section, req SectionRequest) error {
	trimAll(&req.ModuleID, &req.Code, &req.Title, &req.Hours)
	if err := s.validator.Struct(req); err != nil {
		return invalid(err, "section")
	}
	moduleID := optionalID(req.ModuleID)
	if moduleID == nil {
		id, err := s.modules.FirstID(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "no module available for the section")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to load default module")
		}
		moduleID = &id
	} else if _, err := s.modules.FindByID(ctx, *moduleID); err != nil {
		return loadError(err, "module")
	}
	if req.Code == "" {
		req.Code = truncateRunes(req.Title, sectionCodeLength)
	}
	hours := optionalInt(req.Hours)
	if hours == nil {
		zero := 0
		hours = &zero
	}
	section.ModuleID = moduleID
	section.Code = optional(req.Code)
	section.Title = optional(req.Title)
	section.Hours = hours
	return nil
}

type sectionResolver interface {
	Resolve(ctx context.Context, title string) (int64, error)
}

// LessonRequest is the input of lesson create and edit. Section is a section
// title, created on demand.
type LessonRequest struct {
	Section  string `json:"section" validate:"required,max=255"`
	Number   string `json:"number" validate:"required,number"`
	Criteria string `json:"criteria" validate:"required"`
	Hours    string `json:"hours" validate:"required,number"`
	Type     string `json:"type" validate:"omitempty,oneof=комбинированный практический"`
}

// LessonRequestFrom prefills a request with the stored lesson.
func LessonRequestFrom(l *models.LessonRow) LessonRequest {
	return LessonRequest{
		Section:  formatString(l.SectionTitle),
		Number:   formatInt(l.Number),
		Criteria: formatString(l.Criteria),
		Hours:    formatInt(l.TotalHours),
		Type:     formatString(l.Type),
	}
}

// LessonService orchestrates lesson operations.
type LessonService struct {
	repo      lessonRepository
	sections  sectionResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonService constructs a LessonService.
func NewLessonService(repo lessonRepository, sections sectionResolver, validate *validator.Validate, logger *zap.Logger) *LessonService {
	validate, logger = defaults(validate, logger)
	return &LessonService{repo: repo, sections: sections, validator: validate, logger: logger}
}

// List returns lessons with their section title, newest first.
func (s *LessonService) List(ctx context.Context) ([]models.LessonRow, error) {
	lessons, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list lessons")
	}
	return lessons, nil
}

// Get returns a lesson by id.
func (s *LessonService) Get(ctx context.Context, id int64) (*models.LessonRow, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "lesson")
	}
	return lesson, nil
}

// Create registers a new lesson.
func (s *LessonService) Create(ctx context.Context, req LessonRequest) (*models.Lesson, error) {
	lesson := &models.Lesson{}
	if err := s.apply(ctx, lesson, req); err != nil {
		return nil, err
	}
	if _, err := s.repo.Create(ctx, lesson); err != nil {
		return nil, writeError(err, "create", "lesson")
	}
	return lesson, nil
}

// Update replaces the editable fields of a lesson.
func (s *LessonService) Update(ctx context.Context, id int64, req LessonRequest) (*models.Lesson, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "lesson")
	}
	lesson := row.Lesson
	if err := s.apply(ctx, &lesson, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &lesson); err != nil {
		return nil, writeError(err, "update", "lesson")
	}
	return &lesson, nil
}

// Delete removes a lesson.
func (s *LessonService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return loadError(err, "lesson")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "lesson")
	}
	return nil
}

func (s *LessonService) apply(ctx context.Context, lesson *models.Lesson, req LessonRequest) error {
	trimAll(&req.Section, &req.Number, &req.Criteria, &req.Hours, &req.Type)
	if err := s.validator.Struct(req); err != nil {
		return invalid(err, "lesson")
	}
	if req.Type == "" {
		req.Type = models.DefaultLessonType
	}
	sectionID, err := s.sections.Resolve(ctx, req.Section)
	if err != nil {
		return err
	}
	lesson.SectionID = &sectionID
	lesson.Number = optionalInt(req.Number)
	lesson.Criteria = optional(req.Criteria)
	lesson.TotalHours = optionalInt(req.Hours)
	lesson.Type = optional(req.Type)
	return nil
}
