package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, ":8080", cfg.Addr())
	require.Equal(t, DriverMemory, cfg.DBDriver)
	require.Equal(t, 24*time.Hour, cfg.TokenTTL)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.Empty(t, cfg.SeedCategories)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DATABASE_URL", "auction.db")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("SEED_CATEGORIES", "Books,Toys,Home")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr())
	require.Equal(t, DriverSQLite, cfg.DBDriver)
	require.Equal(t, "auction.db", cfg.DatabaseURL)
	require.Equal(t, time.Hour, cfg.TokenTTL)
	require.Equal(t, []string{"Books", "Toys", "Home"}, cfg.SeedCategories)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		cfg         Config
		expectError bool
	}{
		{name: "memory", cfg: Config{JWTSecret: "s", DBDriver: DriverMemory, TokenTTL: time.Hour}},
		{name: "postgres_with_url", cfg: Config{JWTSecret: "s", DBDriver: DriverPostgres, DatabaseURL: "postgres://x", TokenTTL: time.Hour}},
		{name: "postgres_without_url", cfg: Config{JWTSecret: "s", DBDriver: DriverPostgres, TokenTTL: time.Hour}, expectError: true},
		{name: "unknown_driver", cfg: Config{JWTSecret: "s", DBDriver: "mysql", TokenTTL: time.Hour}, expectError: true},
		{name: "empty_secret", cfg: Config{DBDriver: DriverMemory, TokenTTL: time.Hour}, expectError: true},
		{name: "zero_ttl", cfg: Config{JWTSecret: "s", DBDriver: DriverMemory}, expectError: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.Validate()
			if tc.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
