package postgresql_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/timesheet-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timesheet-backend-go/internal/repository/postgresql/migrations"
	"github.com/stretchr/testify/require"
)

// testDB stays nil when TEST_DATABASE_URL is unset; every test then skips.
var testDB *database.DB

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		return m.Run()
	}

	migrator, err := database.NewMigrator(dsn, migrations.FS)
	if err != nil {
		slog.Error("failed to open migrator", "error", err)
		return 1
	}
	if err := migrator.Up(); err != nil {
		slog.Error("failed to migrate test database", "error", err)
		return 1
	}
	_ = migrator.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	testDB, err = database.NewPostgreSQLDB(ctx, dsn)
	if err != nil {
		slog.Error("failed to connect to test database", "error", err)
		return 1
	}
	defer testDB.Close()

	return m.Run()
}

// setupTestDB skips without a database and truncates every table otherwise.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	for _, table := range []string{"time_entries", "employees", "users"} {
		_, err := testDB.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err)
	}
	return testDB
}
