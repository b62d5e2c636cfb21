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

type teacherRepository interface {
	List(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
	FindIDByName(ctx context.Context, fullName string) (int64, error)
	Create(ctx context.Context, teacher *models.Teacher) (int64, error)
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id int64) error
}

// TeacherRequest represents the teacher form.
type TeacherRequest struct {
	FullName string `json:"full_name" validate:"required,max=255"`
	Position string `json:"position" validate:"max=255"`
}

// TeacherRequestFrom prefills a request with the stored teacher.
func TeacherRequestFrom(t *models.Teacher) TeacherRequest {
	return TeacherRequest{FullName: formatString(t.FullName), Position: formatString(t.Position)}
}

// TeacherService orchestrates teacher operations.
type TeacherService struct {
	repo      teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	validate, logger = defaults(validate, logger)
	return &TeacherService{repo: repo, validator: validate, logger: logger}
}

// List returns teachers, newest first.
func (s *TeacherService) List(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list teachers")
	}
	return teachers, nil
}

// Get returns a teacher by id.
func (s *TeacherService) Get(ctx context.Context, id int64) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "teacher")
	}
	return teacher, nil
}

// Create registers a new teacher record.
func (s *TeacherService) Create(ctx context.Context, req TeacherRequest) (*models.Teacher, error) {
	trimAll(&req.FullName, &req.Position)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "teacher")
	}
	teacher := &models.Teacher{FullName: optional(req.FullName), Position: optional(req.Position)}
	if _, err := s.repo.Create(ctx, teacher); err != nil {
		return nil, writeError(err, "create", "teacher")
	}
	return teacher, nil
}

// Update modifies an existing teacher.
func (s *TeacherService) Update(ctx context.Context, id int64, req TeacherRequest) (*models.Teacher, error) {
	trimAll(&req.FullName, &req.Position)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "teacher")
	}
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "teacher")
	}
	teacher.FullName = optional(req.FullName)
	teacher.Position = optional(req.Position)
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, writeError(err, "update", "teacher")
	}
	return teacher, nil
}

// Delete removes a teacher. Plans and protocols keep their rows without a teacher.
func (s *TeacherService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return loadError(err, "teacher")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "teacher")
	}
	return nil
}

// Resolve maps a teacher reference to an id. An explicit id must exist; a
// name that matches nobody resolves to no teacher.
func (s *TeacherService) Resolve(ctx context.Context, id, name string) (*int64, error) {
	if ref := optionalID(id); ref != nil {
		if _, err := s.repo.FindByID(ctx, *ref); err != nil {
			return nil, loadError(err, "teacher")
		}
		return ref, nil
	}
	name = formatString(optional(name))
	if name == "" {
		return nil, nil
	}
	found, err := s.repo.FindIDByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Debug("teacher name not matched", zap.String("full_name", name))
			return nil, nil
		}
		return nil, loadError(err, "teacher")
	}
	return &found, nil
}
