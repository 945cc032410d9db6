package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	handlerhttp "github.com/examdesk/examdesk/internal/adapters/handler/http"
	"github.com/examdesk/examdesk/internal/adapters/repository/postgres"
	"github.com/examdesk/examdesk/internal/core/services"
)

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Client      *http.Client
	DBContainer testcontainers.Container
}

func (a *TestApp) Teardown(t *testing.T) {
	t.Helper()

	a.Server.Close()
	require.NoError(t, a.DB.Close())
	require.NoError(t, a.DBContainer.Terminate(context.Background()))
}

// setupTestApp boots a throwaway postgres, applies the migrations, and
// serves the full HTTP stack against it.
func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	pgContainer, connStr, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	require.NoError(t, applyMigrations(db))

	hasher := services.NewSHA256Hasher()
	userService := services.NewUserService(postgres.NewUserRepository(db), hasher)
	tokenService := services.NewTokenService(services.TokenConfig{
		Secret:   []byte("integration-test-signing-secret!"),
		Issuer:   "examdesk",
		Audience: "examdesk-users",
	})
	authService := services.NewAuthService(userService, tokenService, postgres.NewRefreshTokenRepository(db))

	handler := handlerhttp.NewHandler(handlerhttp.NewAuthHandler(authService, userService), tokenService)

	return &TestApp{
		DB:          db,
		Server:      httptest.NewServer(handler),
		Client:      &http.Client{},
		DBContainer: pgContainer,
	}
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	password := "password"

	pgContainer, err := pgcontainer.Run(ctx, "postgres:15-alpine",
		pgcontainer.WithDatabase(dbName),
		pgcontainer.WithUsername(user),
		pgcontainer.WithPassword(password),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		fullPath := filepath.Join(dirPath, entry.Name())
		content, err := os.ReadFile(fullPath)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		_, err = db.Exec(string(content))
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}
