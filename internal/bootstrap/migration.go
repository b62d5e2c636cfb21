package bootstrap

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-manager/internal/grading"
)

const gradeTable = "grade_reports"

var (
	semesterColumns = []string{"s1", "s2"}
	quarterColumns  = []string{"q1", "q2", "q3", "q4"}
)

// Branch is the path the grading migration took on a given run.
type Branch int

const (
	// NoQuarters means the legacy quarter columns are absent.
	NoQuarters Branch = iota
	// QuartersVestigial means quarter columns exist but hold no values.
	QuartersVestigial
	// QuartersAbsorbed means quarter values were folded into s1/s2.
	QuartersAbsorbed
)

func (b Branch) String() string {
	switch b {
	case NoQuarters:
		return "no_quarters"
	case QuartersVestigial:
		return "quarters_vestigial"
	case QuartersAbsorbed:
		return "quarters_absorbed"
	default:
		return fmt.Sprintf("branch(%d)", int(b))
	}
}

// MigrationResult describes what MigrateGradingScheme observed and changed.
type MigrationResult struct {
	Branch         Branch
	AddedColumns   []string
	QuarterColumns []string
	QuarterValues  int
	RowsAbsorbed   int
	RowsRecomputed int
}

// MigrateGradingScheme moves grade reports from the quarterly layout to the
// semester layout. The branch is re-derived from the live schema and data on
// every call, so repeated runs never recompute semesters from emptied quarters.
func (b *Bootstrapper) MigrateGradingScheme(ctx context.Context) (MigrationResult, error) {
	var result MigrationResult

	for _, col := range semesterColumns {
		exists, err := b.columnExists(ctx, gradeTable, col)
		if err != nil {
			return result, err
		}
		if exists {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s INT DEFAULT NULL", gradeTable, col)
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return result, fmt.Errorf("add column %s.%s: %w", gradeTable, col, err)
		}
		result.AddedColumns = append(result.AddedColumns, col)
	}

	for _, col := range quarterColumns {
		exists, err := b.columnExists(ctx, gradeTable, col)
		if err != nil {
			return result, err
		}
		if exists {
			result.QuarterColumns = append(result.QuarterColumns, col)
		}
	}

	result.Branch = NoQuarters
	if len(result.QuarterColumns) > 0 {
		count, err := b.countQuarterValues(ctx, result.QuarterColumns)
		if err != nil {
			return result, err
		}
		result.QuarterValues = count
		result.Branch = QuartersVestigial
		if count > 0 {
			result.Branch = QuartersAbsorbed
			absorbed, err := b.absorbQuarters(ctx, result.QuarterColumns)
			if err != nil {
				return result, err
			}
			result.RowsAbsorbed = absorbed
		}
	}

	recomputed, err := b.recomputeFinalGrades(ctx)
	if err != nil {
		return result, err
	}
	result.RowsRecomputed = recomputed

	b.logger.Info("grading migration finished",
		zap.Stringer("branch", result.Branch),
		zap.Strings("added_columns", result.AddedColumns),
		zap.Strings("quarter_columns", result.QuarterColumns),
		zap.Int("quarter_values", result.QuarterValues),
		zap.Int("rows_absorbed", result.RowsAbsorbed),
		zap.Int("rows_recomputed", result.RowsRecomputed),
	)
	return result, nil
}

func (b *Bootstrapper) columnExists(ctx context.Context, tableName, column string) (bool, error) {
	query := b.db.Rebind(fmt.Sprintf(`SELECT COUNT(*) FROM information_schema.columns
		WHERE table_schema = %s AND table_name = ? AND column_name = ?`, b.dialect.CurrentSchema))
	var count int
	if err := b.db.GetContext(ctx, &count, query, tableName, column); err != nil {
		return false, fmt.Errorf("inspect column %s.%s: %w", tableName, column, err)
	}
	return count > 0, nil
}

func (b *Bootstrapper) countQuarterValues(ctx context.Context, present []string) (int, error) {
	counts := make([]string, 0, len(present))
	for _, col := range present {
		counts = append(counts, fmt.Sprintf("COUNT(%s)", col))
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(counts, " + "), gradeTable)
	var total int
	if err := b.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count quarter values: %w", err)
	}
	return total, nil
}

type quarterRow struct {
	id             int64
	q1, q2, q3, q4 lenientGrade
}

// absorbQuarters overwrites s1 and s2 of every row from the quarter pairs and
// empties the quarter columns, in a single transaction. Missing quarter
// columns read as NULL.
func (b *Bootstrapper) absorbQuarters(ctx context.Context, present []string) (int, error) {
	selectCols := make([]string, 0, len(quarterColumns))
	for _, col := range quarterColumns {
		if contains(present, col) {
			selectCols = append(selectCols, col)
		} else {
			selectCols = append(selectCols, "NULL AS "+col)
		}
	}
	query := fmt.Sprintf("SELECT id, %s FROM %s ORDER BY id", strings.Join(selectCols, ", "), gradeTable)

	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin quarter absorption: %w", err)
	}

	rows, err := tx.QueryxContext(ctx, query)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return 0, fmt.Errorf("load quarter grades: %w", err)
	}
	var pending []quarterRow
	for rows.Next() {
		var r quarterRow
		if err := rows.Scan(&r.id, &r.q1, &r.q2, &r.q3, &r.q4); err != nil {
			rows.Close()
			tx.Rollback() //nolint:errcheck
			return 0, fmt.Errorf("scan quarter grades: %w", err)
		}
		pending = append(pending, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		tx.Rollback() //nolint:errcheck
		return 0, fmt.Errorf("iterate quarter grades: %w", err)
	}
	rows.Close()

	update := tx.Rebind(fmt.Sprintf("UPDATE %s SET s1 = ?, s2 = ? WHERE id = ?", gradeTable))
	for _, r := range pending {
		s1 := grading.Pair(r.q1.value, r.q2.value)
		s2 := grading.Pair(r.q3.value, r.q4.value)
		if _, err := tx.ExecContext(ctx, update, nullable(s1), nullable(s2), r.id); err != nil {
			tx.Rollback() //nolint:errcheck
			return 0, fmt.Errorf("absorb quarters of grade report %d: %w", r.id, err)
		}
	}

	// Later runs find no quarter data and take the vestigial branch.
	assignments := make([]string, 0, len(present))
	for _, col := range present {
		assignments = append(assignments, col+" = NULL")
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET %s", gradeTable, strings.Join(assignments, ", "))); err != nil {
		tx.Rollback() //nolint:errcheck
		return 0, fmt.Errorf("clear absorbed quarters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit quarter absorption: %w", err)
	}
	return len(pending), nil
}

type semesterRow struct {
	id         int64
	s1, s2     lenientGrade
	finalGrade lenientGrade
}

// recomputeFinalGrades rewrites final_grade wherever it disagrees with the
// pairing of s1 and s2, and returns the number of rows changed.
func (b *Bootstrapper) recomputeFinalGrades(ctx context.Context) (int, error) {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin final grade recompute: %w", err)
	}

	rows, err := tx.QueryxContext(ctx, fmt.Sprintf("SELECT id, s1, s2, final_grade FROM %s ORDER BY id", gradeTable))
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return 0, fmt.Errorf("load semester grades: %w", err)
	}
	type change struct {
		id    int64
		final *int
	}
	var changes []change
	for rows.Next() {
		var r semesterRow
		if err := rows.Scan(&r.id, &r.s1, &r.s2, &r.finalGrade); err != nil {
			rows.Close()
			tx.Rollback() //nolint:errcheck
			return 0, fmt.Errorf("scan semester grades: %w", err)
		}
		final := grading.Pair(r.s1.value, r.s2.value)
		if !sameGrade(final, r.finalGrade.value) || r.finalGrade.malformed {
			changes = append(changes, change{id: r.id, final: final})
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		tx.Rollback() //nolint:errcheck
		return 0, fmt.Errorf("iterate semester grades: %w", err)
	}
	rows.Close()

	update := tx.Rebind(fmt.Sprintf("UPDATE %s SET final_grade = ? WHERE id = ?", gradeTable))
	for _, c := range changes {
		if _, err := tx.ExecContext(ctx, update, nullable(c.final), c.id); err != nil {
			tx.Rollback() //nolint:errcheck
			return 0, fmt.Errorf("recompute final grade of grade report %d: %w", c.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit final grade recompute: %w", err)
	}
	return len(changes), nil
}

// lenientGrade scans a grade column, degrading unreadable values to NULL.
type lenientGrade struct {
	value     *int
	malformed bool
}

func (g *lenientGrade) Scan(src interface{}) error {
	g.value, g.malformed = nil, false
	switch v := src.(type) {
	case nil:
	case int64:
		g.set(int(v))
	case int:
		g.set(v)
	case int32:
		g.set(int(v))
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			g.set(int(v))
		} else {
			g.malformed = true
		}
	case []byte:
		g.parse(string(v))
	case string:
		g.parse(v)
	default:
		g.malformed = true
	}
	return nil
}

func (g *lenientGrade) set(v int) {
	g.value = &v
}

func (g *lenientGrade) parse(raw string) {
	g.value = grading.Parse(raw)
	g.malformed = g.value == nil
}

func sameGrade(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// nullable converts an optional grade into a driver argument.
func nullable(v *int) interface{} {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
