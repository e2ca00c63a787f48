// test/helpers/helpers.go
package helpers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/api-framework/internal/adapters/apiclient"
	"github.com/ammerola/api-framework/internal/adapters/cache"
	"github.com/ammerola/api-framework/internal/adapters/db"
	"github.com/ammerola/api-framework/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB starts a PostgreSQL container, applies the embedded migrations
// and returns a pgx-backed accessor for integration tests.
func SetupTestDB(t testing.TB) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_people",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")
	_ = resource.Expire(300)

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := db.DefaultConfig()
	dbConfig.User = "test"
	dbConfig.Password = "test"
	dbConfig.Database = "test_people"
	dbConfig.MaxConnections = 5
	dbConfig.MinConnections = 1
	dbConfig.AcquireTimeout = 10 * time.Second
	dbConfig.EnableQueryLogging = testing.Verbose()
	dbConfig.Port, err = portNumber(resource.GetPort("5432/tcp"))
	require.NoError(t, err)

	pool.MaxWait = 2 * time.Minute
	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Logf("Could not close database: %s", err)
		}
	})

	err = db.RunMigrationsWithRetry(context.Background(), &db.MigrationConfig{
		DatabaseURL: dbConfig.URL(),
	}, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// MockDatabaseConfig returns accessor settings suitable for sqlmock-backed
// tests.
func MockDatabaseConfig() *db.Config {
	cfg := db.DefaultConfig()
	cfg.Database = "test_people"
	cfg.MinConnections = 1
	cfg.MaxConnections = 20
	cfg.AcquireTimeout = 0
	return cfg
}

// SetupMockDatabase builds an accessor over go-sqlmock. A nil cfg uses
// MockDatabaseConfig.
func SetupMockDatabase(t *testing.T, cfg *db.Config) (*db.Database, sqlmock.Sqlmock) {
	t.Helper()

	if cfg == nil {
		cfg = MockDatabaseConfig()
	}

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	database, err := db.NewSQLDatabase(context.Background(), sqlDB, cfg, TestLogger())
	require.NoError(t, err, "Failed to create mock database")

	t.Cleanup(func() {
		// sqlmock reports an unexpected Close unless the test asked for it.
		_ = database.Close()
	})

	return database, mock
}

// TruncatePeople empties the people table between tests.
func TruncatePeople(t testing.TB, database *db.Database) {
	t.Helper()

	_, err := database.Execute(context.Background(), "TRUNCATE TABLE people RESTART IDENTITY CASCADE")
	require.NoError(t, err, "Failed to truncate people")
}

// APIClientOptions mirrors the CLI client settings. When REDIS_URL is set
// the client serves repeated GETs from the response cache.
func APIClientOptions(t testing.TB, cfg *config.Config) []apiclient.Option {
	t.Helper()

	opts := []apiclient.Option{
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
		apiclient.WithUserAgent(cfg.API.UserAgent),
		apiclient.WithLogger(TestLogger()),
	}
	if cfg.Redis.URL == "" {
		return opts
	}

	client, err := cache.NewClient(cfg.Redis.URL)
	require.NoError(t, err)

	rc := cache.NewCache(client, cfg.Redis.CacheTTL, TestLogger())
	require.NoError(t, rc.Ping(context.Background()), "Could not reach redis")
	t.Cleanup(func() { _ = rc.Close() })

	return append(opts, apiclient.WithCache(rc, cfg.Redis.CacheTTL))
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-harness",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
		},
		Database: config.DatabaseConfig{
			Host:              "localhost",
			Port:              5432,
			User:              "test",
			Password:          "test",
			PasswordSecretKey: "password",
			Name:              "test_people",
			SSLMode:           "disable",
			MinConnections:    1,
			MaxConnections:    10,
			MaxConnLifetime:   time.Hour,
			MaxConnIdleTime:   30 * time.Minute,
			HealthCheckPeriod: time.Minute,
			ConnectTimeout:    10 * time.Second,
			AcquireTimeout:    30 * time.Second,
		},
		API: config.APIConfig{
			BaseURL:       "https://fakerestapi.azurewebsites.net/",
			DogAPIBaseURL: "https://dogapi.dog/api/v2/",
			Timeout:       30 * time.Second,
			RateBurst:     1,
			UserAgent:     "api-framework/test",
		},
		AWS: config.AWSConfig{
			Region: "us-east-1",
		},
	}
}

// LoadFixture loads a file from test/fixtures.
func LoadFixture(t *testing.T, filename string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(fixturesDir(), filename))
	require.NoError(t, err, "Failed to load fixture: %s", filename)

	return data
}

func fixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "fixtures")
}

func portNumber(port string) (int, error) {
	n, err := strconv.Atoi(port)
	if err != nil {
		return 0, fmt.Errorf("invalid container port %q: %w", port, err)
	}
	return n, nil
}
