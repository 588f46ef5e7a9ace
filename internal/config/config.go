package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort string
	JWTSecret  string
	JWTExpiry  time.Duration

	// Storage selects the repository backend: postgres or memory.
	Storage string
	// RedisURL enables cross-process event fan-out when set.
	RedisURL           string
	RedisChannel       string
	RealtimeSendBuffer int

	LogLevel  string
	LogFormat string
}

func Load(log logrus.FieldLogger) *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "taskboard"),
		DBPassword:         getEnv("DB_PASSWORD", "taskboard"),
		DBName:             getEnv("DB_NAME", "taskboard"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		JWTSecret:          getEnv("JWT_SECRET", "supersecretkey"),
		JWTExpiry:          time.Duration(getInt(log, "JWT_EXPIRY_HOURS", 24)) * time.Hour,
		Storage:            getEnv("STORAGE", StoragePostgres),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisChannel:       getEnv("REDIS_CHANNEL", "taskboard:events"),
		RealtimeSendBuffer: getInt(log, "REALTIME_SEND_BUFFER", 64),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}
}

// DSN is the gorm/pgx connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

// MigrateURL is the same database addressed for the migrate pgx5 driver.
func (c *Config) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getInt(log logrus.FieldLogger, key string, defaultVal int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.WithField("key", key).Warnf("⚠️  %q is not a number, using %d", raw, defaultVal)
		return defaultVal
	}
	return v
}
