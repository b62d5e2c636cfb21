// Package bootstrap prepares the records database before any command runs:
// it creates missing tables, guarantees a default module and migrates grade
// reports from quarters to semesters.
package bootstrap

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-manager/pkg/database"
	appErrors "github.com/noah-isme/edu-manager/pkg/errors"
)

// Bootstrapper runs the schema, seed and migration steps against one database.
type Bootstrapper struct {
	db      *sqlx.DB
	dialect database.Dialect
	logger  *zap.Logger
}

// New constructs a Bootstrapper.
func New(db *sqlx.DB, logger *zap.Logger) *Bootstrapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bootstrapper{db: db, dialect: database.DialectOf(db), logger: logger}
}

// Report summarises a bootstrap run.
type Report struct {
	RunID           string
	DefaultModuleID int64
	Migration       MigrationResult
	Duration        time.Duration
}

// Run executes schema creation, module seeding and the grading migration in
// order. The first failure aborts the run and is returned as a BOOTSTRAP_FAILED error.
func (b *Bootstrapper) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString()}
	log := b.logger.With(zap.String("run_id", report.RunID), zap.String("dialect", b.dialect.Name))

	log.Info("bootstrap started")
	if err := b.EnsureSchema(ctx); err != nil {
		log.Error("schema bootstrap failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrBootstrap.Code, "ensure schema")
	}

	moduleID, err := b.EnsureSeedModule(ctx)
	if err != nil {
		log.Error("module seeding failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrBootstrap.Code, "ensure seed module")
	}
	report.DefaultModuleID = moduleID

	migration, err := b.MigrateGradingScheme(ctx)
	if err != nil {
		log.Error("grading migration failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrBootstrap.Code, "migrate grading scheme")
	}
	report.Migration = migration
	report.Duration = time.Since(start)

	log.Info("bootstrap finished",
		zap.Int64("default_module_id", moduleID),
		zap.Stringer("grading_branch", migration.Branch),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}
