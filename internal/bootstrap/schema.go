package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-manager/pkg/database"
)

type table struct {
	name string
	// ddl is formatted with the dialect's id column (%[1]s) and table options (%[2]s).
	ddl string
}

// tables are listed parents first so every foreign key target already exists.
var tables = []table{
	{name: "module", ddl: `CREATE TABLE IF NOT EXISTS module (
		%[1]s,
		code VARCHAR(50),
		title VARCHAR(255),
		total_hours INT
	)%[2]s`},
	{name: "ro_sections", ddl: `CREATE TABLE IF NOT EXISTS ro_sections (
		%[1]s,
		module_id INT,
		code VARCHAR(100),
		title VARCHAR(255),
		hours INT DEFAULT 0,
		FOREIGN KEY (module_id) REFERENCES module(id)
			ON DELETE RESTRICT ON UPDATE CASCADE
	)%[2]s`},
	{name: "lessons", ddl: `CREATE TABLE IF NOT EXISTS lessons (
		%[1]s,
		ro_id INT,
		number INT,
		criteria TEXT,
		total_hours INT,
		type VARCHAR(100),
		FOREIGN KEY (ro_id) REFERENCES ro_sections(id)
			ON DELETE RESTRICT ON UPDATE CASCADE
	)%[2]s`},
	{name: "teachers", ddl: `CREATE TABLE IF NOT EXISTS teachers (
		%[1]s,
		full_name VARCHAR(255),
		position VARCHAR(255)
	)%[2]s`},
	{name: "students", ddl: `CREATE TABLE IF NOT EXISTS students (
		%[1]s,
		full_name VARCHAR(255),
		birthdate DATE,
		class VARCHAR(50)
	)%[2]s`},
	{name: "class_plans", ddl: `CREATE TABLE IF NOT EXISTS class_plans (
		%[1]s,
		teacher_id INT,
		class VARCHAR(50),
		year INT,
		file_path TEXT,
		FOREIGN KEY (teacher_id) REFERENCES teachers(id)
			ON DELETE SET NULL ON UPDATE CASCADE
	)%[2]s`},
	{name: "social_passport", ddl: `CREATE TABLE IF NOT EXISTS social_passport (
		%[1]s,
		class VARCHAR(50),
		year INT,
		total_students INT,
		full_families INT,
		low_income INT,
		disabilities INT,
		orphaned INT,
		many_children INT DEFAULT 0
	)%[2]s`},
	{name: "grade_reports", ddl: `CREATE TABLE IF NOT EXISTS grade_reports (
		%[1]s,
		student_id INT,
		subject VARCHAR(255),
		s1 INT,
		s2 INT,
		final_grade INT,
		FOREIGN KEY (student_id) REFERENCES students(id)
			ON DELETE CASCADE ON UPDATE CASCADE
	)%[2]s`},
	{name: "exam_protocols", ddl: `CREATE TABLE IF NOT EXISTS exam_protocols (
		%[1]s,
		teacher_id INT,
		subject VARCHAR(255),
		class VARCHAR(50),
		date DATE,
		file_path TEXT,
		FOREIGN KEY (teacher_id) REFERENCES teachers(id)
			ON DELETE SET NULL ON UPDATE CASCADE
	)%[2]s`},
}

// TableNames returns the managed tables in creation order.
func TableNames() []string {
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.name)
	}
	return names
}

func createStatement(t table, d database.Dialect) string {
	return fmt.Sprintf(t.ddl, d.IDColumn, d.TableOptions)
}

// EnsureSchema creates every missing table. Existing tables are left as they are.
func (b *Bootstrapper) EnsureSchema(ctx context.Context) error {
	for _, t := range tables {
		if _, err := b.db.ExecContext(ctx, createStatement(t, b.dialect)); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
		b.logger.Debug("table ensured", zap.String("table", t.name))
	}
	return nil
}
