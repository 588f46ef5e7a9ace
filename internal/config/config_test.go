package config_test

import (
	"testing"
	"time"

	"taskboard/internal/config"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	logger, _ := test.NewNullLogger()
	t.Setenv("DB_HOST", "db")
	t.Setenv("JWT_EXPIRY_HOURS", "2")

	cfg := config.Load(logger)

	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, config.StoragePostgres, cfg.Storage)
	assert.Equal(t, 64, cfg.RealtimeSendBuffer)
}

func TestLoad_BadNumberFallsBack(t *testing.T) {
	logger, hook := test.NewNullLogger()
	t.Setenv("REALTIME_SEND_BUFFER", "lots")

	cfg := config.Load(logger)

	assert.Equal(t, 64, cfg.RealtimeSendBuffer)
	assert.NotNil(t, hook.LastEntry())
}

func TestConnectionStrings(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p@ss", DBName: "boards"}

	assert.Equal(t, "host=db port=5432 user=u password=p@ss dbname=boards sslmode=disable", cfg.DSN())
	assert.Equal(t, "pgx5://u:p%40ss@db:5432/boards?sslmode=disable", cfg.MigrateURL())
}
