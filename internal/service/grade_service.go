package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-manager/internal/grading"
	"github.com/noah-isme/edu-manager/internal/models"
	appErrors "github.com/noah-isme/edu-manager/pkg/errors"
)

type gradeReportRepository interface {
	List(ctx context.Context) ([]models.GradeReportRow, error)
	FindByID(ctx context.Context, id int64) (*models.GradeReport, error)
	Create(ctx context.Context, report *models.GradeReport) (int64, error)
	Update(ctx context.Context, report *models.GradeReport) error
	Delete(ctx context.Context, id int64) error
}

type studentResolver interface {
	Resolve(ctx context.Context, id, name string) (int64, error)
}

// GradeReportRequest represents the grade form. Semester grades are read
// leniently: anything but digits is stored as no grade.
type GradeReportRequest struct {
	StudentID   string `json:"student_id" validate:"omitempty,number"`
	StudentName string `json:"student_name" validate:"required_without=StudentID"`
	Subject     string `json:"subject" validate:"max=255"`
	S1          string `json:"s1"`
	S2          string `json:"s2"`
}

// GradeReportRequestFrom prefills a request with the stored report.
func GradeReportRequestFrom(g *models.GradeReport) GradeReportRequest {
	return GradeReportRequest{
		StudentID: formatID(g.StudentID),
		Subject:   formatString(g.Subject),
		S1:        formatInt(g.S1),
		S2:        formatInt(g.S2),
	}
}

// GradeReportService orchestrates grade report operations and keeps the
// final grade derived from the semester grades.
type GradeReportService struct {
	repo      gradeReportRepository
	students  studentResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeReportService constructs a GradeReportService.
func NewGradeReportService(repo gradeReportRepository, students studentResolver, validate *validator.Validate, logger *zap.Logger) *GradeReportService {
	validate, logger = defaults(validate, logger)
	return &GradeReportService{repo: repo, students: students, validator: validate, logger: logger}
}

// List returns grade reports with student names, newest first.
func (s *GradeReportService) List(ctx context.Context) ([]models.GradeReportRow, error) {
	reports, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to list grade reports")
	}
	return reports, nil
}

// Get returns a grade report by id.
func (s *GradeReportService) Get(ctx context.Context, id int64) (*models.GradeReport, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "grade report")
	}
	return report, nil
}

// Create records a grade report.
func (s *GradeReportService) Create(ctx context.Context, req GradeReportRequest) (*models.GradeReport, error) {
	report := &models.GradeReport{}
	if err := s.apply(ctx, report, req); err != nil {
		return nil, err
	}
	if _, err := s.repo.Create(ctx, report); err != nil {
		return nil, writeError(err, "create", "grade report")
	}
	s.logger.Debug("grade report created",
		zap.Int64("grade_report_id", report.ID),
		zap.String("final_grade", formatInt(report.FinalGrade)))
	return report, nil
}

// Update replaces the editable fields of a grade report.
func (s *GradeReportService) Update(ctx context.Context, id int64, req GradeReportRequest) (*models.GradeReport, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, loadError(err, "grade report")
	}
	if err := s.apply(ctx, report, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, report); err != nil {
		return nil, writeError(err, "update", "grade report")
	}
	return report, nil
}

// Delete removes a grade report.
func (s *GradeReportService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return loadError(err, "grade report")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return writeError(err, "delete", "grade report")
	}
	return nil
}

func (s *GradeReportService) apply(ctx context.Context, report *models.GradeReport, req GradeReportRequest) error {
	trimAll(&req.StudentID, &req.StudentName, &req.Subject, &req.S1, &req.S2)
	if err := s.validator.Struct(req); err != nil {
		return invalid(err, "grade report")
	}
	studentID, err := s.students.Resolve(ctx, req.StudentID, req.StudentName)
	if err != nil {
		return err
	}
	report.StudentID = &studentID
	report.Subject = optional(req.Subject)
	report.S1 = grading.Parse(req.S1)
	report.S2 = grading.Parse(req.S2)
	report.FinalGrade = grading.Pair(report.S1, report.S2)
	return nil
}
