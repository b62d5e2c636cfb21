package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-manager/internal/models"
	appErrors "github.com/noah-isme/edu-manager/pkg/errors"
)

type classPlanRepository interface {
	List(ctx context.Context) ([]models.ClassPlanRow, error)
	FindByID(ctx context.Context, id int64) (*models.ClassPlan, error)
	Create(ctx context.Context, plan *models.ClassPlan) (int64, error)
	Update(ctx context.Context, plan *models.ClassPlan) error
	Delete(ctx context.Context, id int64) error
}

type examProtocolRepository interface {
	List(ctx context.Context) ([]models.ExamProtocolRow, error)
	FindByID(ctx context.Context, id int64) (*models.ExamProtocol, error)
	Create(ctx context.Context, p *models.ExamProtocol) (int64, error)
	Update(ctx context.Context, p *models.ExamProtocol) error
	Delete(ctx context.Context, id int64) error
}

type teacherResolver interface {
	Resolve(ctx context.Context, id, name string) (*int64, error)
}

// ClassPlanRequest represents the class plan form. The teacher is given by id
// or by full name.
type ClassPlanRequest struct {
	TeacherID   string `json:"teacher_id" validate:"omitempty,number"`
	TeacherName string `json:"teacher_name"`
	Class       string `json:"class" validate:"max=50"`
	Year        string `json:"year" validate:"omitempty,number"`
	FilePath    string `json:"file_path"`
}

// ClassPlanRequestFrom prefills a request with the stored plan.
func ClassPlanRequestFrom(p *models.ClassPlan) ClassPlanRequest {
	return ClassPlanRequest{
		TeacherID: formatID(p.TeacherID),
		Class:     formatString(p.Class),
		Year:      formatInt(p.Year),
		FilePath:  formatString(p.FilePath),
	}
}

// ClassPlanService orchestrates class plan operations.
type ClassPlanService struct {
	repo      classPlanRepository
	teachers  teacherResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassPlanService constructs a ClassPlanService.
func NewClassPlanService(repo classPlanRepository, teachers teacherResolver, validate *validator.Validate, logger *zap.Logger) *ClassPlanService {
	validate, logger = defaults(validate, logger)
	return &ClassPlanService{repo: repo, teachers: teachers, validator: validate, logger: logger}
}

func (s *ClassPlanService) List(ctx context.Context) ([]models.ClassPlanRow, error) {
	plans, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list class plans")
	}
	return plans, nil
}

func (s *ClassPlanService) Get(ctx context.Context, id int64) (*models.ClassPlan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "class plan")
	}
	return plan, nil
}

func (s *ClassPlanService) Create(ctx context.Context, req ClassPlanRequest) (*models.ClassPlan, error) {
	plan := &models.ClassPlan{}
	if err := s.apply(ctx, plan, req); err != nil {
		return nil, err
	}
	if _, err := s.repo.Create(ctx, plan); err != nil {
		return nil, writeError(err, "create", "class plan")
	}
	return plan, nil
}

func (s *ClassPlanService) Update(ctx context.Context, id int64, req ClassPlanRequest) (*models.ClassPlan, error) {
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "class plan")
	}
	if err := s.apply(ctx, plan, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, plan); err != nil {
		return nil, writeError(err, "update", "class plan")
	}
	return plan, nil
}

func (s *ClassPlanService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return loadError(err, "class plan")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "class plan")
	}
	return nil
}

func (s *ClassPlanService) apply(ctx context.Context, plan *models.ClassPlan, req ClassPlanRequest) error {
	trimAll(&req.TeacherID, &req.TeacherName, &req.Class, &req.Year, &req.FilePath)
	if err := s.validator.Struct(req); err != nil {
		return invalid(err, "class plan")
	}
	teacherID, err := s.teachers.Resolve(ctx, req.TeacherID, req.TeacherName)
	if err != nil {
		return err
	}
	plan.TeacherID = teacherID
	plan.Class = optional(req.Class)
	plan.Year = optionalInt(req.Year)
	plan.FilePath = optional(req.FilePath)
	return nil
}

// ExamProtocolRequest represents the exam protocol form.
type ExamProtocolRequest struct {
	TeacherID   string `json:"teacher_id" validate:"omitempty,number"`
	TeacherName string `json:"teacher_name"`
	Subject     string `json:"subject" validate:"max=255"`
	Class       string `json:"class" validate:"max=50"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	FilePath    string `json:"file_path"`
}

// ExamProtocolRequestFrom prefills a request with the stored protocol.
func ExamProtocolRequestFrom(p *models.ExamProtocol) ExamProtocolRequest {
	return ExamProtocolRequest{
		TeacherID: formatID(p.TeacherID),
		Subject:   formatString(p.Subject),
		Class:     formatString(p.Class),
		Date:      formatDate(p.Date),
		FilePath:  formatString(p.FilePath),
	}
}

// ExamProtocolService orchestrates exam protocol operations.
type ExamProtocolService struct {
	repo      examProtocolRepository
	teachers  teacherResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamProtocolService constructs an ExamProtocolService.
func NewExamProtocolService(repo examProtocolRepository, teachers teacherResolver, validate *validator.Validate, logger *zap.Logger) *ExamProtocolService {
	validate, logger = defaults(validate, logger)
	return &ExamProtocolService{repo: repo, teachers: teachers, validator: validate, logger: logger}
}

func (s *ExamProtocolService) List(ctx context.Context) ([]models.ExamProtocolRow, error) {
	protocols, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list exam protocols")
	}
	return protocols, nil
}

func (s *ExamProtocolService) Get(ctx context.Context, id int64) (*models.ExamProtocol, error) {
	protocol, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "exam protocol")
	}
	return protocol, nil
}

func (s *ExamProtocolService) Create(ctx context.Context, req ExamProtocolRequest) (*models.ExamProtocol, error) {
	protocol := &models.ExamProtocol{}
	if err := s.apply(ctx, protocol, req); err != nil {
		return nil, err
	}
	if _, err := s.repo.Create(ctx, protocol); err != nil {
		return nil, writeError(err, "create", "exam protocol")
	}
	return protocol, nil
}

func (s *ExamProtocolService) Update(ctx context.Context, id int64, req ExamProtocolRequest) (*models.ExamProtocol, error) {
	protocol, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "exam protocol")
	}
	if err := s.apply(ctx, protocol, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, protocol); err != nil {
		return nil, writeError(err, "update", "exam protocol")
	}
	return protocol, nil
}

func (s *ExamProtocolService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return loadError(err, "exam protocol")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "exam protocol")
	}
	return nil
}

func (s *ExamProtocolService) apply(ctx context.Context, protocol *models.ExamProtocol, req ExamProtocolRequest) error {
	trimAll(&req.TeacherID, &req.TeacherName, &req.Subject, &req.Class, &req.Date, &req.FilePath)
	if err := s.validator.Struct(req); err != nil {
		return invalid(err, "exam protocol")
	}
	date, err := optionalDate(req.Date)
	if err != nil {
		return invalid(err, "exam protocol")
	}
	teacherID, err := s.teachers.Resolve(ctx, req.TeacherID, req.TeacherName)
	if err != nil {
		return err
	}
	protocol.TeacherID = teacherID
	protocol.Subject = optional(req.Subject)
	protocol.Class = optional(req.Class)
	protocol.Date = date
	protocol.FilePath = optional(req.FilePath)
	return nil
}
