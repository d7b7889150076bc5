package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNormalizeDSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "sqlite:grocery.db", want: "grocery.db?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"},
		{in: "sqlite://data/g.db", want: "data/g.db?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"},
		{in: "", want: "grocery.db?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"},
		{in: "file:x.db?cache=shared", want: "file:x.db?cache=shared"},
		{in: ":memory:", want: ":memory:"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDSN(tt.in))
		})
	}
}

func TestNewDBCreatesDirAndTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "grocery.db")
	db := openTestDBAt(t, "sqlite:"+path)

	_, err := os.Stat(path)
	require.NoError(t, err)
	for _, table := range Tables {
		assert.True(t, db.Migrator().HasTable(table), "table %s should exist", table)
	}

	// migrating again is harmless
	again := openTestDBAt(t, path)
	assert.True(t, again.Migrator().HasTable("entries"))
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDBAt(t, filepath.Join(t.TempDir(), "test.db"))
}

func openTestDBAt(t *testing.T, dsn string) *gorm.DB {
	t.Helper()
	db, err := NewDB(dsn)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}
