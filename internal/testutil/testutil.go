package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/arjun/vidtube-backend/internal/api"
	"github.com/arjun/vidtube-backend/internal/config"
	"github.com/arjun/vidtube-backend/internal/domain"
	"github.com/arjun/vidtube-backend/internal/repository"
	repoPostgres "github.com/arjun/vidtube-backend/internal/repository/postgres"
	"github.com/arjun/vidtube-backend/internal/service"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_vidtube"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Subscription{},
	)
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"subscriptions",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0", // Random port
		Environment:        "test",
		AccessTokenSecret:  "test-access-secret-key-for-testing-only",
		AccessTokenTTL:     time.Hour,
		RefreshTokenSecret: "test-refresh-secret-key-for-testing-only",
		RefreshTokenTTL:    24 * time.Hour,
		TempUploadDir:      "",
	}
}

// FakeUploader is an in-memory image host for tests. It records every upload
// and can be told to fail.
type FakeUploader struct {
	mu      sync.Mutex
	uploads []string
	Fail    bool
}

func NewFakeUploader() *FakeUploader {
	return &FakeUploader{}
}

func (f *FakeUploader) Upload(ctx context.Context, localPath string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail {
		return "", fmt.Errorf("image host unavailable")
	}
	f.uploads = append(f.uploads, localPath)
	return fmt.Sprintf("https://cdn.test/images/%d", len(f.uploads)), nil
}

func (f *FakeUploader) Uploads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploads...)
}

// FlakyUploader succeeds for the first n uploads and fails afterwards.
type FlakyUploader struct {
	mu        sync.Mutex
	remaining int
	calls     int
}

func NewFlakyUploader(succeedFirst int) *FlakyUploader {
	return &FlakyUploader{remaining: succeedFirst}
}

func (f *FlakyUploader) Upload(ctx context.Context, localPath string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.remaining <= 0 {
		return "", fmt.Errorf("image host unavailable")
	}
	f.remaining--
	return fmt.Sprintf("https://cdn.test/images/flaky-%d", f.calls), nil
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Uploader *FakeUploader
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()
	cfg.TempUploadDir = t.TempDir()

	repos := repoPostgres.NewRepositories(testDB.DB)
	uploader := NewFakeUploader()
	services := service.NewServices(repos, cfg, uploader)
	router := api.NewRouter(services, cfg)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Uploader: uploader,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}
