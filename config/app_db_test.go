package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/akeren/trustlink-waitlist/internal/log"
	"github.com/akeren/trustlink-waitlist/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewLogger(&bytes.Buffer{}, slog.LevelError)
}

func TestNewDBConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_DATABASE_DRIVER", "")
	t.Setenv("DB_MAX_OPEN_CONNS", "")
	t.Setenv("DB_MAX_IDLE_CONNS", "")
	t.Setenv("DB_CONN_MAX_LIFETIME", "")

	cfg := NewDBConfigFromEnv()
	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, 20, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
}

func TestNewDBConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_DATABASE_DRIVER", " SQLite ")
	t.Setenv("DB_MAX_OPEN_CONNS", "4")
	t.Setenv("DB_MAX_IDLE_CONNS", "10")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30s")

	cfg := NewDBConfigFromEnv()
	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, 4, cfg.MaxOpenConns)
	assert.Equal(t, 4, cfg.MaxIdleConns, "idle conns are capped at the pool size")
	assert.Equal(t, 30*time.Second, cfg.ConnMaxLifetime)
}

func TestBuildPostgresDSN_PrefersDatabaseURL(t *testing.T) {
	t.Setenv("APP_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "'postgres://u:p@db:5432/waitlist'")

	dsn, err := buildPostgresDSN(quietLogger(), DefaultDBConfig())
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/waitlist", dsn)
}

func TestBuildPostgresDSN_ReportsMissingVars(t *testing.T) {
	t.Setenv("APP_DATABASE_URL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_HOST", "")
	t.Setenv("POSTGRES_PORT", "")
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("POSTGRES_DB_NAME", "")

	_, err := buildPostgresDSN(quietLogger(), DefaultDBConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_HOST")
	assert.Contains(t, err.Error(), "POSTGRES_DB_NAME")
}

func TestBuildDialector_RejectsUnknownDriver(t *testing.T) {
	_, err := buildDialector(quietLogger(), &DBConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestNewDatabase_SQLiteAutoMigrateCreatesViews(t *testing.T) {
	cfg := DefaultDBConfig()
	cfg.Driver = DriverSQLite
	cfg.SQLitePath = "file:config_test?mode=memory&cache=shared"
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1

	db, err := NewDatabase(quietLogger(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { CloseDatabase(db, quietLogger()) })

	require.NoError(t, AutoMigrate(quietLogger(), db, models.ModelRegistry...))
	require.NoError(t, AutoMigrate(quietLogger(), db, models.ModelRegistry...), "auto-migrate is repeatable")

	var rows []models.ActorTypeCount
	require.NoError(t, db.Table(models.StatsViewName).Find(&rows).Error)
	assert.Empty(t, rows)
}
