package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/edu-manager/pkg/config"
)

// Open returns a client for the configured records database. Idle connections
// are not retained, so every statement acquires and releases its connection.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	db.SetMaxIdleConns(0)
	db.SetConnMaxLifetime(1 * time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// DSN renders the driver specific connection string.
func DSN(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		mc.DBName = cfg.Name
		mc.ParseTime = true
		if cfg.Charset != "" {
			mc.Params = map[string]string{"charset": cfg.Charset}
		}
		return mc.FormatDSN(), nil
	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			quoteConnValue(cfg.Password),
			cfg.Name,
			cfg.SSLMode,
		)
		if cfg.Charset != "" {
			dsn += " client_encoding=" + postgresEncoding(cfg.Charset)
		}
		return dsn, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func postgresEncoding(charset string) string {
	switch charset {
	case "utf8", "utf8mb4", "utf8mb3":
		return "UTF8"
	default:
		return charset
	}
}

var connValueEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// quoteConnValue quotes a libpq keyword/value parameter.
func quoteConnValue(v string) string {
	return "'" + connValueEscaper.Replace(v) + "'"
}
