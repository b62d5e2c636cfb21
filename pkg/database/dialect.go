package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Dialect captures the SQL differences between the supported engines.
type Dialect struct {
	Name string
	// IDColumn is the column definition of an auto-incrementing primary key.
	IDColumn string
	// TableOptions is appended after the closing parenthesis of CREATE TABLE.
	TableOptions string
	// CurrentSchema is the expression naming the connected schema in information_schema.
	CurrentSchema string
}

var (
	MySQL = Dialect{
		Name:          "mysql",
		IDColumn:      "id INT PRIMARY KEY AUTO_INCREMENT",
		TableOptions:  " ENGINE=InnoDB",
		CurrentSchema: "DATABASE()",
	}
	Postgres = Dialect{
		Name:          "postgres",
		IDColumn:      "id SERIAL PRIMARY KEY",
		CurrentSchema: "current_schema()",
	}
)

// DialectOf picks the dialect matching the driver behind db. Unknown drivers
// (including test doubles) are treated as MySQL.
func DialectOf(db *sqlx.DB) Dialect {
	if db != nil && db.DriverName() == Postgres.Name {
		return Postgres
	}
	return MySQL
}

// InsertID runs an INSERT written with ? placeholders and returns the id of
// the new row.
func InsertID(ctx context.Context, db sqlx.ExtContext, query string, args ...interface{}) (int64, error) {
	query = db.Rebind(query)
	if db.DriverName() == Postgres.Name {
		var id int64
		if err := db.QueryRowxContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}
	return id, nil
}
