package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/kendall-kelly/autoparts-api/config"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
// It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// NewTestDB opens a fresh in-memory sqlite database with every table migrated.
// The pool is pinned to one connection so every query sees the same database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// NewTestLogger returns a logger that discards output
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// TestConfig returns a Config suitable for unit tests
func TestConfig() *config.Config {
	return &config.Config{
		DatabaseURL:     "sqlite://memory",
		Port:            "8080",
		GoEnv:           "test",
		LogLevel:        "error",
		JWTSecret:       "test-secret",
		JWTIssuer:       "autoparts-api",
		JWTAudience:     "autoparts-dashboard",
		TokenTTL:        time.Hour,
		OTPTTL:          10 * time.Minute,
		AdminEmails:     []string{"admin@autoparts.test"},
		FrontendURL:     "http://localhost:3000",
		DashboardURL:    "http://localhost:3001",
		MetaAccessToken: "meta-token",
		MetaVerifyToken: "verify-me",
		RedisChannel:    "dashboard-events",
	}
}
