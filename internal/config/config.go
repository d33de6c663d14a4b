package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/costmgmt/koku/pkg/db"
	"github.com/joho/godotenv"
)

// APIVersion is the version of the masu-compatible API served under /api/v1.
const APIVersion = 1

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	Debug       bool
	HTTPAddr    string

	// Commit is the build identifier reported by the status endpoint. Empty
	// means "derive at runtime".
	Commit string

	LogLevel string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	BrokerAddr     string
	BrokerPassword string
	BrokerDB       int

	RetentionMonths      int
	RetentionPollSeconds int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")

	return Config{
		AppName:     getenv("APP_SERVICE", "koku"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: environment,
		Debug:       getenvBool("DEVELOPMENT", environment != "production"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		Commit:      strings.TrimSpace(getenv("OPENSHIFT_BUILD_COMMIT", "")),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "koku"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),

		BrokerAddr:     getenv("BROKER_ADDR", "localhost:6379"),
		BrokerPassword: getenv("BROKER_PASSWORD", ""),
		BrokerDB:       getenvInt("BROKER_DB", 0),

		RetentionMonths:      getenvInt("REPORT_RETENTION_MONTHS", 3),
		RetentionPollSeconds: getenvInt("RETENTION_POLL_SECONDS", 3600),
	}
}

// Database maps the app config onto the store configuration.
func (c Config) Database() db.Config {
	return db.Config{
		Type:            c.DBType,
		Host:            c.DBHost,
		Port:            c.DBPort,
		Name:            c.DBName,
		User:            c.DBUser,
		Password:        c.DBPassword,
		SSLMode:         c.DBSSLMode,
		MaxIdleConn:     c.DBMaxIdleConn,
		MaxOpenConn:     c.DBMaxOpenConn,
		ConnMaxLifetime: c.DBConnMaxLifetime,
		ConnMaxIdleTime: c.DBConnMaxIdleTime,
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
