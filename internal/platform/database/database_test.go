package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addressbook/internal/platform/config"
)

func TestOpenSQLite(t *testing.T) {
	db, err := Open(context.Background(), config.Database{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "book.db"),
	})
	require.NoError(t, err)
	defer db.Close()

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestOpenRejectsNonSQLDrivers(t *testing.T) {
	_, err := Open(context.Background(), config.Database{Driver: config.DriverRedis})
	assert.Error(t, err)
}
