package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestAssetsMigrationContainsConstraints(t *testing.T) {
	for _, driver := range []string{"postgres", "sqlite"} {
		matches, err := filepath.Glob(filepath.Join("migrations", driver, "*_create_assets_table.sql"))
		require.NoError(t, err)
		require.NotEmpty(t, matches, "no assets migration for %s", driver)

		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)
		content := string(data)

		for _, sub := range []string{
			"CREATE TABLE IF NOT EXISTS assets",
			"title VARCHAR(200) NOT NULL",
			"media_type VARCHAR(50) NOT NULL DEFAULT 'other'",
			"gallery VARCHAR(100) NOT NULL DEFAULT ''",
			"CHECK (media_type IN ('image', 'video', 'other'))",
			"idx_assets_gallery",
			"DROP TABLE IF EXISTS assets",
		} {
			assert.Contains(t, content, sub, "%s migration", driver)
		}
	}
}

func TestValidateTree(t *testing.T) {
	require.NoError(t, ValidateTree("migrations"))
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "create_assets.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	_, err := ValidateDir(dir)
	require.Error(t, err)
}

func TestValidateDirRequiresAnnotations(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_x.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644))

	_, err := ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "goose Down")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Gallery Index!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_gallery_index.sql"))

	versions, err := ValidateDir(dir)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", d)

	d, err = DialectFor("POSTGRES")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d)

	_, err = DialectFor("mysql")
	require.Error(t, err)
}

func TestRunEmbeddedSQLiteUpAndDown(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_run?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	require.NoError(t, Run(ctx, sqlDB, "sqlite", "", "up"))
	assert.True(t, conn.Migrator().HasTable("assets"))

	require.NoError(t, conn.Exec("INSERT INTO assets (title) VALUES (?)", "defaults").Error)
	var row struct {
		MediaType string
		Gallery   string
		FileSize  int64
	}
	require.NoError(t, conn.Raw("SELECT media_type, gallery, file_size FROM assets").Scan(&row).Error)
	assert.Equal(t, "other", row.MediaType)
	assert.Equal(t, "", row.Gallery)
	assert.Zero(t, row.FileSize)

	require.Error(t, conn.Exec("INSERT INTO assets (title, media_type) VALUES (?, ?)", "bad", "audio").Error)

	require.NoError(t, MigrateToVersion(ctx, sqlDB, "sqlite", "", "0"))
	assert.False(t, conn.Migrator().HasTable("assets"))
}
