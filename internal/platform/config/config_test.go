package config_test

import (
	"testing"

	"github.com/gestionale-jos/jos_backend/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, config.StoreMemory, cfg.StoreBackend)
	assert.Equal(t, "Europe/Rome", cfg.ShopLocation.String())
	assert.True(t, cfg.LockClosedDays)
	assert.True(t, decimal.NewFromInt(200).Equal(cfg.DefaultOpeningFloat))
	assert.Equal(t, "5-M", cfg.LoginRateLimit)
}

func TestLoadConfig_Overrides(t *testing.T) {
	viper.Reset()
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/jos-test.db")
	t.Setenv("CASSA_LOCK_CLOSED_DAYS", "false")
	t.Setenv("CASSA_DEFAULT_OPENING_FLOAT", "150.50")
	t.Setenv("SHOP_TIMEZONE", "UTC")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/jos-test.db", cfg.SQLitePath)
	assert.False(t, cfg.LockClosedDays)
	assert.True(t, decimal.RequireFromString("150.50").Equal(cfg.DefaultOpeningFloat))
	assert.Equal(t, "UTC", cfg.ShopLocation.String())
}

func TestLoadConfig_InvalidTimezone(t *testing.T) {
	viper.Reset()
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("SHOP_TIMEZONE", "Mars/Olympus")

	_, err := config.LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{name: "postgres without url", cfg: config.Config{StoreBackend: config.StorePostgres}, wantErr: true},
		{name: "postgres with url", cfg: config.Config{StoreBackend: config.StorePostgres, DatabaseURL: "postgres://x"}},
		{name: "memory in production", cfg: config.Config{StoreBackend: config.StoreMemory, IsProduction: true, JWTSecret: "s"}, wantErr: true},
		{name: "unknown backend", cfg: config.Config{StoreBackend: "mongo"}, wantErr: true},
		{name: "telegram token without chat", cfg: config.Config{StoreBackend: config.StoreMemory, TelegramBotToken: "t"}, wantErr: true},
		{name: "negative float", cfg: config.Config{StoreBackend: config.StoreMemory, DefaultOpeningFloat: decimal.NewFromInt(-1)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
