package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-manager/internal/models"
	appErrors "github.com/noah-isme/edu-manager/pkg/errors"
	"github.com/noah-isme/edu-manager/pkg/export"
)

// Entity names accepted by list and export commands.
const (
	EntityModules         = "modules"
	EntitySections        = "sections"
	EntityLessons         = "lessons"
	EntityTeachers        = "teachers"
	EntityStudents        = "students"
	EntityClassPlans      = "class-plans"
	EntitySocialPassports = "social-passports"
	EntityGradeReports    = "grade-reports"
	EntityExamProtocols   = "exam-protocols"
)

// Entities lists every exportable entity.
var Entities = []string{
	EntityLessons, EntityModules, EntitySections, EntityTeachers, EntityStudents,
	EntityClassPlans, EntitySocialPassports, EntityGradeReports, EntityExamProtocols,
}

type lister[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// ExportSources supplies the listings rendered by the ExportService.
type ExportSources struct {
	Modules         lister[models.Module]
	Sections        lister[models.Section]
	Lessons         lister[models.LessonRow]
	Teachers        lister[models.Teacher]
	Students        lister[models.Student]
	ClassPlans      lister[models.ClassPlanRow]
	SocialPassports lister[models.SocialPassport]
	GradeReports    lister[models.GradeReportRow]
	ExamProtocols   lister[models.ExamProtocolRow]
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportResult describes a written export file.
type ExportResult struct {
	Path   string
	Format export.Format
	Rows   int
}

// ExportService turns entity listings into tables and persists rendered files.
type ExportService struct {
	sources   ExportSources
	storage   fileStorage
	renderers map[export.Format]renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. pdfFont may be empty.
func NewExportService(sources ExportSources, storage fileStorage, pdfFont string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		sources: sources,
		storage: storage,
		renderers: map[export.Format]renderer{
			export.FormatCSV:  export.NewCSVExporter(),
			export.FormatPDF:  export.NewPDFExporter(pdfFont),
			export.FormatXLSX: export.NewXLSXExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// Export renders the entity listing in the requested format and stores it
// under a unique file name.
func (s *ExportService) Export(ctx context.Context, entity string, format export.Format) (*ExportResult, error) {
	r, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	dataset, err := s.Dataset(ctx, entity)
	if err != nil {
		return nil, err
	}
	payload, err := r.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to render export")
	}
	path, err := s.storage.Save(s.buildFilename(entity, format), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to store export")
	}
	s.logger.Info("export written",
		zap.String("entity", entity),
		zap.String("format", string(format)),
		zap.Int("rows", len(dataset.Rows)),
		zap.String("path", path))
	return &ExportResult{Path: path, Format: format, Rows: len(dataset.Rows)}, nil
}

// Cleanup removes exports older than ttl.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cleanup age must be positive")
	}
	deleted, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to clean up exports")
	}
	return deleted, nil
}

func (s *ExportService) buildFilename(entity string, format export.Format) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.%s", strings.ReplaceAll(entity, "-", "_"), timestamp, uuid.NewString()[:8], format)
}

// Dataset builds the table shown by list commands and written by exports.
func (s *ExportService) Dataset(ctx context.Context, entity string) (export.Dataset, error) {
	switch entity {
	case EntityModules:
		return build(ctx, s.sources.Modules, "Modules", []string{"ID", "Code", "Title", "Total hours"},
			func(m models.Module) []string {
				return []string{formatPK(m.ID), formatString(m.Code), formatString(m.Title), formatInt(m.TotalHours)}
			})
	case EntitySections:
		return build(ctx, s.sources.Sections, "Sections", []string{"ID", "Module ID", "Code", "Title", "Hours"},
			func(sec models.Section) []string {
				return []string{formatPK(sec.ID), formatID(sec.ModuleID), formatString(sec.Code), formatString(sec.Title), formatInt(sec.Hours)}
			})
	case EntityLessons:
		return build(ctx, s.sources.Lessons, "Lessons", []string{"ID", "Section", "Number", "Criteria", "Hours", "Type"},
			func(l models.LessonRow) []string {
				return []string{formatPK(l.ID), formatString(l.SectionTitle), formatInt(l.Number), formatString(l.Criteria), formatInt(l.TotalHours), formatString(l.Type)}
			})
	case EntityTeachers:
		return build(ctx, s.sources.Teachers, "Teachers", []string{"ID", "Full name", "Position"},
			func(t models.Teacher) []string {
				return []string{formatPK(t.ID), formatString(t.FullName), formatString(t.Position)}
			})
	case EntityStudents:
		return build(ctx, s.sources.Students, "Students", []string{"ID", "Full name", "Birthdate", "Class"},
			func(st models.Student) []string {
				return []string{formatPK(st.ID), formatString(st.FullName), formatDate(st.BirthDate), formatString(st.Class)}
			})
	case EntityClassPlans:
		return build(ctx, s.sources.ClassPlans, "Class plans", []string{"ID", "Teacher", "Class", "Year", "File"},
			func(p models.ClassPlanRow) []string {
				return []string{formatPK(p.ID), formatString(p.TeacherName), formatString(p.Class), formatInt(p.Year), formatString(p.FilePath)}
			})
	case EntitySocialPassports:
		return build(ctx, s.sources.SocialPassports, "Social passport",
			[]string{"ID", "Class", "Year", "Students", "Full families", "Low income", "Disabilities", "Orphaned", "Many children"},
			func(p models.SocialPassport) []string {
				return []string{
					formatPK(p.ID), formatString(p.Class), formatInt(p.Year), formatInt(p.TotalStudents), formatInt(p.FullFamilies),
					formatInt(p.LowIncome), formatInt(p.Disabilities), formatInt(p.Orphaned), formatInt(p.ManyChildren),
				}
			})
	case EntityGradeReports:
		return build(ctx, s.sources.GradeReports, "Grade reports", []string{"ID", "Student", "Subject", "Semester 1", "Semester 2", "Final"},
			func(g models.GradeReportRow) []string {
				return []string{formatPK(g.ID), formatString(g.StudentName), formatString(g.Subject), formatInt(g.S1), formatInt(g.S2), formatInt(g.FinalGrade)}
			})
	case EntityExamProtocols:
		return build(ctx, s.sources.ExamProtocols, "Exam protocols", []string{"ID", "Teacher", "Subject", "Class", "Date", "File"},
			func(e models.ExamProtocolRow) []string {
				return []string{formatPK(e.ID), formatString(e.TeacherName), formatString(e.Subject), formatString(e.Class), formatDate(e.Date), formatString(e.FilePath)}
			})
	default:
		return export.Dataset{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown entity %q", entity))
	}
}

func build[T any](ctx context.Context, source lister[T], title string, headers []string, row func(T) []string) (export.Dataset, error) {
	if source == nil {
		return export.Dataset{}, appErrors.Clone(appErrors.ErrInternal, "no data source for "+strings.ToLower(title))
	}
	items, err := source.List(ctx)
	if err != nil {
		return export.Dataset{}, err
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, row(item))
	}
	return export.Dataset{Title: title, Headers: headers, Rows: rows}, nil
}

func formatPK(v int64) string {
	return strconv.FormatInt(v, 10)
}
