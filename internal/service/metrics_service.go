package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noah-isme/edu-manager/internal/bootstrap"
	appErrors "github.com/noah-isme/edu-manager/pkg/errors"
)

var branches = []bootstrap.Branch{bootstrap.NoQuarters, bootstrap.QuartersVestigial, bootstrap.QuartersAbsorbed}

// MetricsService collects bootstrap and command metrics for the Prometheus
// textfile collector.
type MetricsService struct {
	registry          *prometheus.Registry
	bootstrapDuration prometheus.Gauge
	bootstrapLast     prometheus.Gauge
	migrationBranch   *prometheus.GaugeVec
	migrationRows     *prometheus.CounterVec
	quarterValues     prometheus.Gauge
	commandTotal      *prometheus.CounterVec
	commandDuration   *prometheus.HistogramVec
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	bootstrapDuration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "edu_bootstrap_duration_seconds",
		Help: "Duration of the last database bootstrap",
	})

	bootstrapLast := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "edu_bootstrap_last_success_timestamp_seconds",
		Help: "Unix time of the last successful bootstrap",
	})

	migrationBranch := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "edu_grading_migration_branch",
		Help: "Branch taken by the grading migration (1 for the active branch)",
	}, []string{"branch"})

	migrationRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "edu_grading_migration_rows_total",
		Help: "Grade report rows written by the grading migration",
	}, []string{"step"})

	quarterValues := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "edu_grading_migration_quarter_values",
		Help: "Non-null quarter grades found by the grading migration",
	})

	commandTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "edu_commands_total",
		Help: "Admin commands executed, by outcome code",
	}, []string{"command", "code"})

	commandDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "edu_command_duration_seconds",
		Help:    "Duration of admin commands",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})

	registry.MustRegister(bootstrapDuration, bootstrapLast, migrationBranch, migrationRows, quarterValues, commandTotal, commandDuration)

	return &MetricsService{
		registry:          registry,
		bootstrapDuration: bootstrapDuration,
		bootstrapLast:     bootstrapLast,
		migrationBranch:   migrationBranch,
		migrationRows:     migrationRows,
		quarterValues:     quarterValues,
		commandTotal:      commandTotal,
		commandDuration:   commandDuration,
	}
}

// RecordBootstrap stores the outcome of a successful bootstrap run.
func (m *MetricsService) RecordBootstrap(report *bootstrap.Report, finishedAt time.Time) {
	if m == nil || report == nil {
		return
	}
	m.bootstrapDuration.Set(report.Duration.Seconds())
	m.bootstrapLast.Set(float64(finishedAt.Unix()))
	for _, b := range branches {
		value := 0.0
		if b == report.Migration.Branch {
			value = 1
		}
		m.migrationBranch.WithLabelValues(b.String()).Set(value)
	}
	m.migrationRows.WithLabelValues("absorbed").Add(float64(report.Migration.RowsAbsorbed))
	m.migrationRows.WithLabelValues("recomputed").Add(float64(report.Migration.RowsRecomputed))
	m.quarterValues.Set(float64(report.Migration.QuarterValues))
}

// ObserveCommand records a finished command labelled with its error code, or "OK".
func (m *MetricsService) ObserveCommand(command string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	code := "OK"
	if err != nil {
		code = appErrors.FromError(err).Code
	}
	m.commandTotal.WithLabelValues(command, code).Inc()
	m.commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// Gatherer exposes the registry, mainly for tests.
func (m *MetricsService) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile atomically writes the metrics in text exposition format.
func (m *MetricsService) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
