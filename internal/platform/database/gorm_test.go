package database

import (
	"path/filepath"
	"testing"

	"maatram_portal_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(&config.Config{
		DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p",
		DBName: "portal", DBSSLMode: "disable", DBTimezone: "UTC",
	})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=portal sslmode=disable TimeZone=UTC", dsn)
}

func TestNewGORM_SQLite(t *testing.T) {
	db, err := NewGORM(&config.Config{
		DBDriver:       "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "portal.db"),
		DBMaxIdleConns: 1,
		DBMaxOpenConns: 1,
		LogLevel:       "silent",
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Close())
}
