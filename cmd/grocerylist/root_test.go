package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-list/internal/config"
	"grocery-list/internal/model"
	"grocery-list/internal/repository"
)

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, version, strings.TrimSpace(out.String()))
}

func TestRootRegistersConfigFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"database-url", "port", "demo", "demo-db", "reset-interval", "log-level"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestResetOnceCopiesSnapshot(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "demo.db")
	live := filepath.Join(dir, "live.db")

	seed, err := repository.NewDB(snapshot)
	require.NoError(t, err)
	require.NoError(t, seed.Create(&model.Category{Name: "Produce"}).Error)
	seedSQL, err := seed.DB()
	require.NoError(t, err)
	require.NoError(t, seedSQL.Close())

	cfg := config.Config{DatabaseURL: "sqlite:" + live, DemoDBPath: snapshot}
	require.NoError(t, resetOnce(context.Background(), cfg))

	db, err := repository.NewDB(live)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	var names []string
	require.NoError(t, db.Model(&model.Category{}).Pluck("name", &names).Error)
	assert.Equal(t, []string{"Produce"}, names)
}

func TestResetOnceMissingSnapshot(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{
		DatabaseURL: "sqlite:" + filepath.Join(dir, "live.db"),
		DemoDBPath:  filepath.Join(dir, "absent.db"),
	}
	assert.Error(t, resetOnce(context.Background(), cfg))
}
