package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/messestand-kalkulator/internal/config"
	"github.com/iliyamo/messestand-kalkulator/internal/database"
)

// newTestDB returns a migrated SQLite database in a temp directory.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(config.DBConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, config.DriverSQLite, zap.NewNop()))
	return db
}

func mustUser(t *testing.T, users *UserRepo, name string) uint64 {
	t.Helper()
	id, err := users.Create(context.Background(), name, name+"@example.com", "pw", "", 4)
	require.NoError(t, err)
	return id
}
