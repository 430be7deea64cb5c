package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("STORAGE", "")
	t.Setenv("BILL_WRITE_RETRIES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.False(t, cfg.UsesDatabase())
	assert.True(t, cfg.SeedDemoData)
	assert.Equal(t, 3, cfg.Bills.WriteRetries)
	assert.Equal(t, 10*time.Millisecond, cfg.Bills.RetryBaseDelay)
	assert.Equal(t, "*", cfg.GetAllowedOrigins())
	assert.Same(t, cfg, AppConfig)
}

func TestLoadPostgres(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("STORAGE", "Postgres")
	t.Setenv("DEV_DB_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.True(t, cfg.UsesDatabase())
}

func TestLoadRejectsBadValues(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad_mode", env: map[string]string{"APP_MODE": "staging"}},
		{name: "bad_storage", env: map[string]string{"APP_MODE": "dev", "STORAGE": "redis"}},
		{name: "bad_retries", env: map[string]string{"APP_MODE": "dev", "BILL_WRITE_RETRIES": "-1"}},
		{name: "prod_default_secret", env: map[string]string{"APP_MODE": "prod", "PROD_JWT_SECRET": "", "PROD_JWT_REFRESH_SECRET": ""}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "3306", User: "app", Password: "pw", DBName: "conveyease", SSLMode: "disable"}

	assert.Equal(t, "app:pw@tcp(db:3306)/conveyease?charset=utf8mb4&parseTime=True&loc=UTC", buildMySQLDSN(d))
	assert.Equal(t, "host=db port=3306 user=app password=pw dbname=conveyease sslmode=disable TimeZone=UTC", buildPostgresDSN(d))

	_, err := buildDialector(StorageMemory, d)
	assert.Error(t, err)
}
