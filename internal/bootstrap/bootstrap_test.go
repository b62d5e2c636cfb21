package bootstrap

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-manager/pkg/database"
	appErrors "github.com/noah-isme/edu-manager/pkg/errors"
)

func newBootstrapMock(t *testing.T) (*Bootstrapper, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return New(sqlx.NewDb(db, "sqlmock"), zap.NewNop()), mock, func() { db.Close() }
}

func expectCreateTables(mock sqlmock.Sqlmock) {
	for _, name := range TableNames() {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + name + " (")).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func expectColumn(mock sqlmock.Sqlmock, column string, exists bool) {
	count := 0
	if exists {
		count = 1
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM information_schema.columns")).
		WithArgs("grade_reports", column).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

func expectColumns(mock sqlmock.Sqlmock, present ...string) {
	for _, col := range append(append([]string{}, semesterColumns...), quarterColumns...) {
		expectColumn(mock, col, contains(present, col))
	}
}

func semesterRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "s1", "s2", "final_grade"})
}

func quarterRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "q1", "q2", "q3", "q4"})
}

const (
	selectSemesters = "SELECT id, s1, s2, final_grade FROM grade_reports ORDER BY id"
	updateFinal     = "UPDATE grade_reports SET final_grade = ? WHERE id = ?"
	updateSemesters = "UPDATE grade_reports SET s1 = ?, s2 = ? WHERE id = ?"
)

func TestEnsureSchemaCreatesTablesInDependencyOrder(t *testing.T) {
	b, mock, cleanup := newBootstrapMock(t)
	defer cleanup()

	assert.Equal(t, []string{"module", "ro_sections", "lessons", "teachers", "students", "class_plans", "social_passport", "grade_reports", "exam_protocols"}, TableNames())

	expectCreateTables(mock)
	require.NoError(t, b.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())

	// idempotent: the same statements are issued again and succeed
	expectCreateTables(mock)
	require.NoError(t, b.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchemaTwiceIssuesIdenticalStatements(t *testing.T) {
	var issued []string
	recorder := sqlmock.QueryMatcherFunc(func(expectedSQL, actualSQL string) error {
		issued = append(issued, actualSQL)
		return nil
	})
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(recorder))
	require.NoError(t, err)
	defer db.Close()
	b := New(sqlx.NewDb(db, "sqlmock"), zap.NewNop())

	for run := 0; run < 2; run++ {
		for range TableNames() {
			mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
		}
		require.NoError(t, b.EnsureSchema(context.Background()))
	}
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, issued, 2*len(TableNames()))
	first, second := issued[:len(TableNames())], issued[len(TableNames()):]
	assert.Equal(t, first, second)
	for i, stmt := range first {
		assert.True(t, strings.HasPrefix(stmt, "CREATE TABLE IF NOT EXISTS "+TableNames()[i]+" ("), stmt)
	}
}

func TestEnsureSchemaAbortsOnFirstFailure(t *testing.T) {
	b, mock, cleanup := newBootstrapMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS module (")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS ro_sections (")).WillReturnError(errors.New("access denied"))

	err := b.EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create table ro_sections")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateStatementPerDialect(t *testing.T) {
	var grades table
	for _, tb := range tables {
		if tb.name == "grade_reports" {
			grades = tb
		}
	}

	mysql := createStatement(grades, database.MySQL)
	assert.Contains(t, mysql, "id INT PRIMARY KEY AUTO_INCREMENT")
	assert.True(t, strings.HasSuffix(mysql, ") ENGINE=InnoDB"))
	assert.Contains(t, mysql, "ON DELETE CASCADE")

	pg := createStatement(grades, database.Postgres)
	assert.Contains(t, pg, "id SERIAL PRIMARY KEY")
	assert.NotContains(t, pg, "ENGINE")
}

func TestForeignKeyPolicies(t *testing.T) {
	ddl := map[string]string{}
	for _, tb := range tables {
		ddl[tb.name] = tb.ddl
	}
	assert.Regexp(t, `REFERENCES module\(id\)\s+ON DELETE RESTRICT`, ddl["ro_sections"])
	assert.Regexp(t, `REFERENCES ro_sections\(id\)\s+ON DELETE RESTRICT`, ddl["lessons"])
	assert.Regexp(t, `REFERENCES teachers\(id\)\s+ON DELETE SET NULL`, ddl["class_plans"])
	assert.Regexp(t, `REFERENCES teachers\(id\)\s+ON DELETE SET NULL`, ddl["exam_protocols"])
	assert.Regexp(t, `REFERENCES students\(id\)\s+ON DELETE CASCADE`, ddl["grade_reports"])
}

func TestEnsureSeedModuleInsertsSentinelIntoEmptyTable(t *testing.T) {
	b, mock, cleanup := newBootstrapMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM module ORDER BY id LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO module (code, title, total_hours) VALUES (?, ?, ?)")).
		WithArgs(SentinelModuleCode, SentinelModuleTitle, 0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id, err := b.EnsureSeedModule(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSeedModuleKeepsExistingModules(t *testing.T) {
	b, mock, cleanup := newBootstrapMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM module ORDER BY id LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

	id, err := b.EnsureSeedModule(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateNoQuartersRecomputesFinalGrades(t *testing.T) {
	b, mock, cleanup := newBootstrapMock(t)
	defer cleanup()

	expectColumns(mock, "s1", "s2")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectSemesters)).
		WillReturnRows(semesterRows().
			AddRow(1, 80, 90, nil).
			AddRow(2, nil, 70, 70).
			AddRow(3, nil, nil, 5))
	mock.ExpectExec(regexp.QuoteMeta(updateFinal)).WithArgs(85, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(updateFinal)).WithArgs(nil, 3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := b.MigrateGradingScheme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NoQuarters, result.Branch)
	assert.Empty(t, result.AddedColumns)
	assert.Equal(t, 0, result.RowsAbsorbed)
	assert.Equal(t, 2, result.RowsRecomputed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateAbsorbsQuarters(t *testing.T) {
	b, mock, cleanup := newBootstrapMock(t)
	defer cleanup()

	expectColumn(mock, "s1", false)
	mock.ExpectExec(regexp.QuoteMeta("ALTER TABLE grade_reports ADD COLUMN s1 INT DEFAULT NULL")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	expectColumn(mock, "s2", true)
	for _, q := range quarterColumns {
		expectColumn(mock, q, true)
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(q1) + COUNT(q2) + COUNT(q3) + COUNT(q4) FROM grade_reports")).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(3))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, q1, q2, q3, q4 FROM grade_reports ORDER BY id")).
		WillReturnRows(quarterRows().
			AddRow(1, 80, 90, nil, 70).
			AddRow(2, nil, nil, nil, nil))
	mock.ExpectExec(regexp.QuoteMeta(updateSemesters)).WithArgs(85, 70, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(updateSemesters)).WithArgs(nil, nil, 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE grade_reports SET q1 = NULL, q2 = NULL, q3 = NULL, q4 = NULL")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectSemesters)).
		WillReturnRows(semesterRows().
			AddRow(1, 85, 70, nil).
			AddRow(2, nil, nil, nil))
	mock.ExpectExec(regexp.QuoteMeta(updateFinal)).WithArgs(78, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := b.MigrateGradingScheme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, QuartersAbsorbed, result.Branch)
	assert.Equal(t, []string{"s1"}, result.AddedColumns)
	assert.Equal(t, quarterColumns, result.QuarterColumns)
	assert.Equal(t, 3, result.QuarterValues)
	assert.Equal(t, 2, result.RowsAbsorbed)
	assert.Equal(t, 1, result.RowsRecomputed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateAbsorbsPartialQuarterColumnsAndMalformedValues(t *testing.T) {
	b, mock, cleanup := newBootstrapMock(t)
	defer cleanup()

	expectColumns(mock, "s1", "s2", "q1", "q3")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(q1) + COUNT(q3) FROM grade_reports")).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(2))

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, q1, NULL AS q2, q3, NULL AS q4 FROM grade_reports ORDER BY id")).
		WillReturnRows(quarterRows().AddRow(7, []byte("n/a"), nil, []byte("64"), nil))
	mock.ExpectExec(regexp.QuoteMeta(updateSemesters)).WithArgs(nil, 64, 7).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE grade_reports SET q1 = NULL, q3 = NULL")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectSemesters)).
		WillReturnRows(semesterRows().AddRow(7, nil, 64, nil))
	mock.ExpectExec(regexp.QuoteMeta(updateFinal)).WithArgs(64, 7).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := b.MigrateGradingScheme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, QuartersAbsorbed, result.Branch)
	assert.Equal(t, []string{"q1", "q3"}, result.QuarterColumns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateVestigialQuartersLeaveSemestersUntouched(t *testing.T) {
	b, mock, cleanup := newBootstrapMock(t)
	defer cleanup()

	expectColumns(mock, "s1", "s2", "q1", "q2", "q3", "q4")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(q1) + COUNT(q2) + COUNT(q3) + COUNT(q4) FROM grade_reports")).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(0))

	// no absorption transaction: only final grades are touched
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectSemesters)).
		WillReturnRows(semesterRows().
			AddRow(1, 60, 71, 66).
			AddRow(2, 90, nil, 45))
	mock.ExpectExec(regexp.QuoteMeta(updateFinal)).WithArgs(90, 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := b.MigrateGradingScheme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, QuartersVestigial, result.Branch)
	assert.Equal(t, 0, result.RowsAbsorbed)
	assert.Equal(t, 1, result.RowsRecomputed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateRerunAfterAbsorptionKeepsEditedSemesters(t *testing.T) {
	b, mock, cleanup := newBootstrapMock(t)
	defer cleanup()

	// first start: quarter data is absorbed and cleared
	expectColumns(mock, "s1", "s2", "q1", "q2", "q3", "q4")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(q1) + COUNT(q2) + COUNT(q3) + COUNT(q4) FROM grade_reports")).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(3))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, q1, q2, q3, q4 FROM grade_reports ORDER BY id")).
		WillReturnRows(quarterRows().AddRow(1, 80, 90, nil, 70))
	mock.ExpectExec(regexp.QuoteMeta(updateSemesters)).WithArgs(85, 70, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE grade_reports SET q1 = NULL, q2 = NULL, q3 = NULL, q4 = NULL")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectSemesters)).
		WillReturnRows(semesterRows().AddRow(1, 85, 70, nil))
	mock.ExpectExec(regexp.QuoteMeta(updateFinal)).WithArgs(78, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	first, err := b.MigrateGradingScheme(context.Background())
	require.NoError(t, err)
	require.Equal(t, QuartersAbsorbed, first.Branch)

	// s1 edited to 95 (final 83) between runs; quarters are empty now
	expectColumns(mock, "s1", "s2", "q1", "q2", "q3", "q4")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(q1) + COUNT(q2) + COUNT(q3) + COUNT(q4) FROM grade_reports")).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectSemesters)).
		WillReturnRows(semesterRows().AddRow(1, 95, 70, 83))
	mock.ExpectCommit()

	second, err := b.MigrateGradingScheme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, QuartersVestigial, second.Branch)
	assert.Equal(t, 0, second.QuarterValues)
	assert.Equal(t, 0, second.RowsAbsorbed)
	assert.Equal(t, 0, second.RowsRecomputed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateClearsQuartersOnlyAfterSemestersAreWritten(t *testing.T) {
	b, mock, cleanup := newBootstrapMock(t)
	defer cleanup()

	expectColumns(mock, "s1", "s2", "q1", "q2")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(q1) + COUNT(q2) FROM grade_reports")).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(2))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, q1, q2, NULL AS q3, NULL AS q4 FROM grade_reports ORDER BY id")).
		WillReturnRows(quarterRows().AddRow(1, 70, 80, nil, nil))
	mock.ExpectExec(regexp.QuoteMeta(updateSemesters)).WithArgs(75, nil, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE grade_reports SET q1 = NULL, q2 = NULL")).
		WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	_, err := b.MigrateGradingScheme(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear absorbed quarters")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateRollsBackFailedAbsorption(t *testing.T) {
	b, mock, cleanup := newBootstrapMock(t)
	defer cleanup()

	expectColumns(mock, "s1", "s2", "q1", "q2")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(q1) + COUNT(q2) FROM grade_reports")).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(4))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, q1, q2, NULL AS q3, NULL AS q4 FROM grade_reports ORDER BY id")).
		WillReturnRows(quarterRows().AddRow(1, 70, 80, nil, nil).AddRow(2, 50, 60, nil, nil))
	mock.ExpectExec(regexp.QuoteMeta(updateSemesters)).WithArgs(75, nil, 1).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(updateSemesters)).WithArgs(55, nil, 2).WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	_, err := b.MigrateGradingScheme(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absorb quarters of grade report 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunWrapsFailuresAsBootstrapErrors(t *testing.T) {
	b, mock, cleanup := newBootstrapMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS module (")).WillReturnError(errors.New("connection refused"))

	report, err := b.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, appErrors.ErrBootstrap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunExecutesAllSteps(t *testing.T) {
	b, mock, cleanup := newBootstrapMock(t)
	defer cleanup()

	expectCreateTables(mock)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM module ORDER BY id LIMIT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	expectColumns(mock, "s1", "s2")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(selectSemesters)).WillReturnRows(semesterRows())
	mock.ExpectCommit()

	report, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, int64(1), report.DefaultModuleID)
	assert.Equal(t, NoQuarters, report.Migration.Branch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBranchString(t *testing.T) {
	assert.Equal(t, "no_quarters", NoQuarters.String())
	assert.Equal(t, "quarters_vestigial", QuartersVestigial.String())
	assert.Equal(t, "quarters_absorbed", QuartersAbsorbed.String())
}
