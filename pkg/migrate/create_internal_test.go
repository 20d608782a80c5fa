package migrate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestScanReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("001_bad.sql", "-- +goose Up\n-- +goose Down\n")
	write("20250101000000_no_down.sql", "-- +goose Up\n")
	write("20250102000000_ok.sql", "-- +goose Up\n-- +goose Down\n")
	write("README.md", "ignored")

	files, err := Scan(dir)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	require.Len(t, files, 1)
	assert.Equal(t, "20250102000000", files[0].Version)
}

func TestScanRejectsUnbalancedStatements(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_x.sql"), []byte(body), 0o644))

	_, err := Scan(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unbalanced")
}

func TestCreateAtRefusesOutOfOrderVersion(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	_, err := createAt(dir, "add loan products", now)
	require.NoError(t, err)

	_, err = createAt(dir, "older", now.Add(-time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not sort after")

	path, err := createAt(dir, "newer", now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, "20250301090001_newer.sql", filepath.Base(path))
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	onDisk, err := Scan("migrations")
	require.NoError(t, err)

	entries, err := embedded.ReadDir(embeddedDir)
	require.NoError(t, err)
	require.Len(t, entries, len(onDisk))
	for i, entry := range entries {
		assert.Equal(t, onDisk[i].Name, entry.Name())
	}
}
