// internal/common/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "rotationhub", cfg.App.Name)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, ":9090", cfg.Server.MetricsAddress)
	assert.Equal(t, "localhost", cfg.Database.Postgres.Host)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, 60, cfg.Catalog.CacheTTL)
	assert.Equal(t, 20, cfg.Catalog.DefaultPageSize)
	assert.Equal(t, 100, cfg.Catalog.MaxPageSize)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Address = ":3000"
	cfg.Catalog.DefaultPageSize = 50
	applyDefaults(cfg)

	assert.Equal(t, ":3000", cfg.Server.Address)
	assert.Equal(t, 50, cfg.Catalog.DefaultPageSize)
}

func TestValidateConfigRequiresProdPassword(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.App.Environment = "production"

	err := validateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")

	cfg.Database.Postgres.Password = "secret"
	assert.NoError(t, validateConfig(cfg))
}

func TestValidateConfigPageSizeBounds(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Catalog.DefaultPageSize = 200
	cfg.Catalog.MaxPageSize = 100

	assert.Error(t, validateConfig(cfg))
}

func TestValidateConfigSESNeedsFromEmail(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Notifications.AWS.SES.Enabled = true

	assert.Error(t, validateConfig(cfg))

	cfg.Notifications.AWS.SES.FromEmail = "noreply@rotationhub.example"
	assert.NoError(t, validateConfig(cfg))
}

func TestGetDSN(t *testing.T) {
	p := PostgresConfig{
		Host:     "db.internal",
		Port:     5433,
		Database: "rotationhub",
		User:     "svc",
		Password: "secret",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=svc password=secret dbname=rotationhub sslmode=require",
		p.GetDSN())
}
