package repo

import (
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/vaughan-dsouza/tasktracer/internal/db"
)

// testDB connects to the database named by TEST_DATABASE_URL, applies
// migrations and truncates all tables. Tests are skipped when the variable
// is unset.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.Migrate(conn))

	_, err = conn.Exec(`TRUNCATE tasks, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return conn
}
