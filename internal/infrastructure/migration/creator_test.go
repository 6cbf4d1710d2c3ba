package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Apolo151/tourist-village-app-sub000/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add bookings table", "add_bookings_table"},
		{"Add-Bookings-Table", "add_bookings_table"},
		{"ADD_BOOKINGS_TABLE", "add_bookings_table"},
		{"add__bookings__table", "add_bookings_table"},
		{"Add Villages 123", "add_villages_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"a !! b", "a_b"},
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

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- test"), 0o644))
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("starts numbering at one", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "add meter readings", "Store utility meter readings")
		require.NoError(t, err)

		assert.Equal(t, "000001", mf.Version)
		assert.Equal(t, filepath.Join(dir, "000001_add_meter_readings.up.sql"), mf.UpPath)
		assert.Equal(t, filepath.Join(dir, "000001_add_meter_readings.down.sql"), mf.DownPath)

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "add meter readings")
		assert.Contains(t, string(up), "Store utility meter readings")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "Rollback")
	})

	t.Run("continues after the highest existing version", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000001_init.up.sql", "000001_init.down.sql",
			"000007_add_view.up.sql", "000007_add_view.down.sql",
			"notes.up.sql",
		)

		mf, err := CreateMigration(dir, "add trigger", "")
		require.NoError(t, err)
		assert.Equal(t, "000008", mf.Version)
	})

	t.Run("creates the directory", func(t *testing.T) {
		nested := filepath.Join(t.TempDir(), "nested", "migrations")

		_, err := CreateMigration(nested, "test", "test migration")
		require.NoError(t, err)

		info, err := os.Stat(nested)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("rejects a name without usable characters", func(t *testing.T) {
		_, err := CreateMigration(t.TempDir(), "!!!", "")
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("lists up migrations in version order", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir,
			"000002_add_payments.up.sql", "000002_add_payments.down.sql",
			"000001_init_schema.up.sql", "000001_init_schema.down.sql",
			"README.md", ".gitkeep",
		)
		require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.up.sql"), 0o755))

		list, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_init_schema", "000002_add_payments"}, list)
	})

	t.Run("nonexistent directory is empty", func(t *testing.T) {
		list, err := ListMigrations("/nonexistent/path/to/migrations")
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := migrations.FS.ReadDir(".")
	require.NoError(t, err)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case filepath.Ext(name) != ".sql":
		case len(name) > 7 && name[len(name)-7:] == ".up.sql":
			ups[name[:len(name)-7]] = true
		case len(name) > 9 && name[len(name)-9:] == ".down.sql":
			downs[name[:len(name)-9]] = true
		}
	}
	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
	assert.True(t, ups["000002_create_occupancy_status_view"])
}
