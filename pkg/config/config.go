package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	Env string

	Database DatabaseConfig
	Log      LogConfig
	Exports  ExportsConfig
	Metrics  MetricsConfig
}

// DatabaseConfig holds the connection parameters of the records database.
type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	Charset      string
	SSLMode      string
	MaxOpenConns int
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

// ExportsConfig controls where list snapshots are written.
type ExportsConfig struct {
	Dir string
	// PDFFont is a TrueType font used for PDF exports; required for Cyrillic output.
	PDFFont string
}

// MetricsConfig points the bootstrap at a Prometheus textfile collector target.
type MetricsConfig struct {
	Textfile string
}

// Load reads configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}
	cfg.Env = v.GetString("ENV")

	driver := strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER")))
	if driver != DriverPostgres {
		driver = DriverMySQL
	}
	port := v.GetInt("DB_PORT")
	if port <= 0 {
		port = defaultPort(driver)
	}

	cfg.Database = DatabaseConfig{
		Driver:       driver,
		Host:         v.GetString("DB_HOST"),
		Port:         port,
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		Charset:      v.GetString("DB_CHARSET"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
		File:   v.GetString("LOG_FILE"),
	}

	cfg.Exports = ExportsConfig{
		Dir:     v.GetString("EXPORTS_DIR"),
		PDFFont: v.GetString("EXPORTS_PDF_FONT"),
	}
	cfg.Metrics = MetricsConfig{Textfile: v.GetString("METRICS_TEXTFILE")}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("DB_DRIVER", DriverMySQL)
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", 0)
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "education_manager")
	v.SetDefault("DB_CHARSET", "utf8mb4")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 1)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_FILE", "")

	v.SetDefault("EXPORTS_DIR", "./exports")
	v.SetDefault("EXPORTS_PDF_FONT", "")
	v.SetDefault("METRICS_TEXTFILE", "")
}

func defaultPort(driver string) int {
	if driver == DriverPostgres {
		return 5432
	}
	return 3306
}
