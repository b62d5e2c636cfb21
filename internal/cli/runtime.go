package cli

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-manager/internal/bootstrap"
	"github.com/noah-isme/edu-manager/internal/repository"
	"github.com/noah-isme/edu-manager/internal/service"
	"github.com/noah-isme/edu-manager/pkg/config"
	"github.com/noah-isme/edu-manager/pkg/database"
	appErrors "github.com/noah-isme/edu-manager/pkg/errors"
	"github.com/noah-isme/edu-manager/pkg/storage"
)

// Runtime holds the services available once the database is bootstrapped.
type Runtime struct {
	DB     *sqlx.DB
	Report *bootstrap.Report

	Modules         *service.ModuleService
	Sections        *service.SectionService
	Lessons         *service.LessonService
	Teachers        *service.TeacherService
	Students        *service.StudentService
	ClassPlans      *service.ClassPlanService
	SocialPassports *service.SocialPassportService
	GradeReports    *service.GradeReportService
	ExamProtocols   *service.ExamProtocolService
	Exports         *service.ExportService
	Metrics         *service.MetricsService
}

// Close releases the database handle.
func (rt *Runtime) Close() error {
	if rt == nil || rt.DB == nil {
		return nil
	}
	return rt.DB.Close()
}

// Connect opens the configured database, bootstraps it and wires the services.
// Any failure is reported as BOOTSTRAP_FAILED.
func Connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBootstrap.Code, "connect to database")
	}
	rt, err := NewRuntime(ctx, db, cfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return rt, nil
}

// NewRuntime bootstraps db and builds the services on top of it.
func NewRuntime(ctx context.Context, db *sqlx.DB, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	report, err := bootstrap.New(db, logger).Run(ctx)
	if err != nil {
		return nil, err
	}

	metrics := service.NewMetricsService()
	metrics.RecordBootstrap(report, time.Now())

	store, err := storage.NewLocalStorage(cfg.Exports.Dir)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrBootstrap.Code, "prepare exports directory")
	}

	validate := validator.New()
	moduleRepo := repository.NewModuleRepository(db)
	modules := service.NewModuleService(moduleRepo, validate, logger)
	sections := service.NewSectionService(repository.NewSectionRepository(db), moduleRepo, validate, logger)
	teachers := service.NewTeacherService(repository.NewTeacherRepository(db), validate, logger)
	students := service.NewStudentService(repository.NewStudentRepository(db), validate, logger)

	rt := &Runtime{
		DB:              db,
		Report:          report,
		Modules:         modules,
		Sections:        sections,
		Lessons:         service.NewLessonService(repository.NewLessonRepository(db), sections, validate, logger),
		Teachers:        teachers,
		Students:        students,
		ClassPlans:      service.NewClassPlanService(repository.NewClassPlanRepository(db), teachers, validate, logger),
		SocialPassports: service.NewSocialPassportService(repository.NewSocialPassportRepository(db), validate, logger),
		GradeReports:    service.NewGradeReportService(repository.NewGradeReportRepository(db), students, validate, logger),
		ExamProtocols:   service.NewExamProtocolService(repository.NewExamProtocolRepository(db), teachers, validate, logger),
		Metrics:         metrics,
	}
	rt.Exports = service.NewExportService(service.ExportSources{
		Modules:         rt.Modules,
		Sections:        rt.Sections,
		Lessons:         rt.Lessons,
		Teachers:        rt.Teachers,
		Students:        rt.Students,
		ClassPlans:      rt.ClassPlans,
		SocialPassports: rt.SocialPassports,
		GradeReports:    rt.GradeReports,
		ExamProtocols:   rt.ExamProtocols,
	}, store, cfg.Exports.PDFFont, logger)
	return rt, nil
}
