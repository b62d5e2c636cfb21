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

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	FindIDByName(ctx context.Context, fullName string) (int64, error)
	Create(ctx context.Context, student *models.Student) (int64, error)
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
}

type socialPassportRepository interface {
	List(ctx context.Context) ([]models.SocialPassport, error)
	FindByID(ctx context.Context, id int64) (*models.SocialPassport, error)
	Create(ctx context.Context, p *models.SocialPassport) (int64, error)
	Update(ctx context.Context, p *models.SocialPassport) error
	Delete(ctx context.Context, id int64) error
}

// StudentRequest represents the student form.
type StudentRequest struct {
	FullName  string `json:"full_name" validate:"required,max=255"`
	BirthDate string `json:"birthdate" validate:"omitempty,datetime=2006-01-02"`
	Class     string `json:"class" validate:"max=50"`
}

// StudentRequestFrom prefills a request with the stored student.
func StudentRequestFrom(st *models.Student) StudentRequest {
	return StudentRequest{FullName: formatString(st.FullName), BirthDate: formatDate(st.BirthDate), Class: formatString(st.Class)}
}

// StudentService orchestrates student operations.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	validate, logger = defaults(validate, logger)
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns students, newest first.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list students")
	}
	return students, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "student")
	}
	return student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.Student, error) {
	student := &models.Student{}
	if err := s.apply(student, req); err != nil {
		return nil, err
	}
	if _, err := s.repo.Create(ctx, student); err != nil {
		return nil, writeError(err, "create", "student")
	}
	return student, nil
}

// Update modifies an existing student.
func (s *StudentService) Update(ctx context.Context, id int64, req StudentRequest) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "student")
	}
	if err := s.apply(student, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, writeError(err, "update", "student")
	}
	return student, nil
}

// Delete removes a student and, through the foreign key, its grade reports.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return loadError(err, "student")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "student")
	}
	return nil
}

// Resolve maps a student reference to an id. Unlike teachers, a student
// reference must match an existing row.
func (s *StudentService) Resolve(ctx context.Context, id, name string) (int64, error) {
	if ref := optionalID(id); ref != nil {
		if _, err := s.repo.FindByID(ctx, *ref); err != nil {
			return 0, loadError(err, "student")
		}
		return *ref, nil
	}
	found, err := s.repo.FindIDByName(ctx, formatString(optional(name)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return 0, loadError(err, "student")
	}
	return found, nil
}

func (s *StudentService) apply(student *models.Student, req StudentRequest) error {
	trimAll(&req.FullName, &req.BirthDate, &req.Class)
	if err := s.validator.Struct(req); err != nil {
		return invalid(err, "student")
	}
	birthDate, err := optionalDate(req.BirthDate)
	if err != nil {
		return invalid(err, "student")
	}
	student.FullName = optional(req.FullName)
	student.BirthDate = birthDate
	student.Class = optional(req.Class)
	return nil
}

// SocialPassportRequest represents the social passport form. An empty total
// is stored as NULL; the other counters default to zero.
type SocialPassportRequest struct {
	Class         string `json:"class" validate:"max=50"`
	Year          string `json:"year" validate:"omitempty,number"`
	TotalStudents string `json:"total_students" validate:"omitempty,number"`
	FullFamilies  string `json:"full_families" validate:"omitempty,number"`
	LowIncome     string `json:"low_income" validate:"omitempty,number"`
	Disabilities  string `json:"disabilities" validate:"omitempty,number"`
	Orphaned      string `json:"orphaned" validate:"omitempty,number"`
	ManyChildren  string `json:"many_children" validate:"omitempty,number"`
}

// SocialPassportRequestFrom prefills a request with the stored passport.
func SocialPassportRequestFrom(p *models.SocialPassport) SocialPassportRequest {
	return SocialPassportRequest{
		Class:         formatString(p.Class),
		Year:          formatInt(p.Year),
		TotalStudents: formatInt(p.TotalStudents),
		FullFamilies:  formatInt(p.FullFamilies),
		LowIncome:     formatInt(p.LowIncome),
		Disabilities:  formatInt(p.Disabilities),
		Orphaned:      formatInt(p.Orphaned),
		ManyChildren:  formatInt(p.ManyChildren),
	}
}

// SocialPassportService orchestrates social passport operations.
type SocialPassportService struct {
	repo      socialPassportRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSocialPassportService constructs a SocialPassportService.
func NewSocialPassportService(repo socialPassportRepository, validate *validator.Validate, logger *zap.Logger) *SocialPassportService {
	validate, logger = defaults(validate, logger)
	return &SocialPassportService{repo: repo, validator: validate, logger: logger}
}

func (s *SocialPassportService) List(ctx context.Context) ([]models.SocialPassport, error) {
	passports, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list social passports")
	}
	return passports, nil
}

func (s *SocialPassportService) Get(ctx context.Context, id int64) (*models.SocialPassport, error) {
	passport, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "social passport")
	}
	return passport, nil
}

func (s *SocialPassportService) Create(ctx context.Context, req SocialPassportRequest) (*models.SocialPassport, error) {
	passport := &models.SocialPassport{}
	if err := s.apply(passport, req); err != nil {
		return nil, err
	}
	if _, err := s.repo.Create(ctx, passport); err != nil {
		return nil, writeError(err, "create", "social passport")
	}
	return passport, nil
}

func (s *SocialPassportService) Update(ctx context.Context, id int64, req SocialPassportRequest) (*models.SocialPassport, error) {
	passport, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "social passport")
	}
	if err := s.apply(passport, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, passport); err != nil {
		return nil, writeError(err, "update", "social passport")
	}
	return passport, nil
}

func (s *SocialPassportService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return loadError(err, "social passport")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "social passport")
	}
	return nil
}

func (s *SocialPassportService) apply(p *models.SocialPassport, req SocialPassportRequest) error {
	trimAll(&req.Class, &req.Year, &req.TotalStudents, &req.FullFamilies, &req.LowIncome, &req.Disabilities, &req.Orphaned, &req.ManyChildren)
	if err := s.validator.Struct(req); err != nil {
		return invalid(err, "social passport")
	}
	p.Class = optional(req.Class)
	p.Year = optionalInt(req.Year)
	p.TotalStudents = optionalInt(req.TotalStudents)
	p.FullFamilies = counter(req.FullFamilies)
	p.LowIncome = counter(req.LowIncome)
	p.Disabilities = counter(req.Disabilities)
	p.Orphaned = counter(req.Orphaned)
	p.ManyChildren = counter(req.ManyChildren)
	return nil
}

func counter(raw string) *int {
	if v := optionalInt(raw); v != nil {
		return v
	}
	zero := 0
	return &zero
}
