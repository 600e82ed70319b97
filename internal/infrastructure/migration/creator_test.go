package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/erp/ledger/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add payments table", "add_payments_table"},
		{"Add-Payments-Table", "add_payments_table"},
		{"ADD_PAYMENTS_TABLE", "add_payments_table"},
		{"add__payments__table", "add_payments_table"},
		{"Add Vouchers 123", "add_vouchers_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add sale returns", "Returns against completed sales")
	require.NoError(t, err)

	assert.Len(t, mf.Version, 14)
	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase)
	assert.True(t, strings.HasSuffix(upBase, "_add_sale_returns"))

	upContent, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(upContent), "add sale returns")
	assert.Contains(t, string(upContent), "Returns against completed sales")

	downContent, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(downContent), "Rollback")

	listed, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{upBase}, listed)
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "test", "test migration")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations_NonexistentDirectory(t *testing.T) {
	listed, err := ListMigrations(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestListMigrationsFS(t *testing.T) {
	fsys := fstest.MapFS{
		"20260302000000_add_index.up.sql":   {Data: []byte("--")},
		"20260302000000_add_index.down.sql": {Data: []byte("--")},
		"20260301000000_init.up.sql":        {Data: []byte("--")},
		"20260301000000_init.down.sql":      {Data: []byte("--")},
		"README.md":                         {Data: []byte("notes")},
		"nested.up.sql/keep":                {Data: []byte("")},
	}

	listed, err := ListMigrationsFS(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"20260301000000_init", "20260302000000_add_index"}, listed)

	latest, err := LatestVersion(fsys)
	require.NoError(t, err)
	assert.Equal(t, uint(20260302000000), latest)
}

func TestLatestVersion_RejectsUnversionedFiles(t *testing.T) {
	fsys := fstest.MapFS{"init.up.sql": {Data: []byte("--")}}

	_, err := LatestVersion(fsys)
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	listed, err := ListMigrationsFS(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, listed)

	for _, name := range listed {
		_, err := versionOf(name)
		assert.NoError(t, err, name)

		_, err = migrations.FS.ReadFile(name + ".down.sql")
		assert.NoError(t, err, "%s has no down migration", name)
	}

	up, err := migrations.FS.ReadFile(listed[0] + ".up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS products")
}

func TestStatus_Pending(t *testing.T) {
	assert.True(t, Status{Version: 1, Latest: 2}.Pending())
	assert.False(t, Status{Version: 2, Latest: 2}.Pending())
}
