package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"MHPOS_APP_NAME":                         os.Getenv("MHPOS_APP_NAME"),
		"MHPOS_APP_ENV":                          os.Getenv("MHPOS_APP_ENV"),
		"MHPOS_APP_PORT":                         os.Getenv("MHPOS_APP_PORT"),
		"MHPOS_DATABASE_HOST":                    os.Getenv("MHPOS_DATABASE_HOST"),
		"MHPOS_DATABASE_PORT":                    os.Getenv("MHPOS_DATABASE_PORT"),
		"MHPOS_DATABASE_USER":                    os.Getenv("MHPOS_DATABASE_USER"),
		"MHPOS_DATABASE_PASSWORD":                os.Getenv("MHPOS_DATABASE_PASSWORD"),
		"MHPOS_DATABASE_DBNAME":                  os.Getenv("MHPOS_DATABASE_DBNAME"),
		"MHPOS_DATABASE_SSLMODE":                 os.Getenv("MHPOS_DATABASE_SSLMODE"),
		"MHPOS_DATABASE_MAX_OPEN_CONNS":          os.Getenv("MHPOS_DATABASE_MAX_OPEN_CONNS"),
		"MHPOS_DATABASE_MAX_IDLE_CONNS":          os.Getenv("MHPOS_DATABASE_MAX_IDLE_CONNS"),
		"MHPOS_INVOICING_PAYMENT_TERM_DAYS":      os.Getenv("MHPOS_INVOICING_PAYMENT_TERM_DAYS"),
		"MHPOS_INVOICING_REMINDER_GRACE":         os.Getenv("MHPOS_INVOICING_REMINDER_GRACE"),
		"MHPOS_INVOICING_REMINDER_COOLDOWN":      os.Getenv("MHPOS_INVOICING_REMINDER_COOLDOWN"),
		"MHPOS_INVOICING_PAYMENT_RETRY_ATTEMPTS": os.Getenv("MHPOS_INVOICING_PAYMENT_RETRY_ATTEMPTS"),
		"MHPOS_JOBS_RECURRING_INTERVAL":          os.Getenv("MHPOS_JOBS_RECURRING_INTERVAL"),
		"MHPOS_NOTIFICATION_WEBHOOK_URL":         os.Getenv("MHPOS_NOTIFICATION_WEBHOOK_URL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "mhpos-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "mhpos", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 30, cfg.Invoicing.PaymentTermDays)
		assert.Equal(t, 24*time.Hour, cfg.Invoicing.ReminderGrace)
		assert.Equal(t, 72*time.Hour, cfg.Invoicing.ReminderCooldown)
		assert.Equal(t, 3, cfg.Invoicing.PaymentRetryAttempts)
		assert.Equal(t, time.Hour, cfg.Jobs.RecurringInterval)
		assert.Equal(t, 6*time.Hour, cfg.Jobs.ReminderInterval)
		assert.Equal(t, 5*time.Minute, cfg.Jobs.LeaseTTL)
		assert.Empty(t, cfg.Notification.WebhookURL)
	})

	t.Run("loads values from environment variables with MHPOS prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("MHPOS_APP_NAME", "test-app")
		os.Setenv("MHPOS_APP_PORT", "9000")
		os.Setenv("MHPOS_DATABASE_HOST", "testdb.local")
		os.Setenv("MHPOS_DATABASE_PORT", "5433")
		os.Setenv("MHPOS_DATABASE_USER", "testuser")
		os.Setenv("MHPOS_DATABASE_PASSWORD", "testpass")
		os.Setenv("MHPOS_INVOICING_PAYMENT_TERM_DAYS", "14")
		os.Setenv("MHPOS_INVOICING_REMINDER_GRACE", "48h")
		os.Setenv("MHPOS_JOBS_RECURRING_INTERVAL", "30m")
		os.Setenv("MHPOS_NOTIFICATION_WEBHOOK_URL", "https://hooks.example.com/reminders")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, 14, cfg.Invoicing.PaymentTermDays)
		assert.Equal(t, 48*time.Hour, cfg.Invoicing.ReminderGrace)
		assert.Equal(t, 30*time.Minute, cfg.Jobs.RecurringInterval)
		assert.Equal(t, "https://hooks.example.com/reminders", cfg.Notification.WebhookURL)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("MHPOS_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("MHPOS_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("production requires password and ssl", func(t *testing.T) {
		clearEnv()
		os.Setenv("MHPOS_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")

		os.Setenv("MHPOS_DATABASE_PASSWORD", "secret")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")

		os.Setenv("MHPOS_DATABASE_SSLMODE", "require")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "mhpos",
		Password: "p@ss/word",
		DBName:   "invoices",
		SSLMode:  "require",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5432")
	assert.Contains(t, dsn, "sslmode=require")
	// Special characters in the password must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfigAddr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", cfg.Addr())
}
