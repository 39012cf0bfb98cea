package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"
)

// DefaultDir holds one sub-directory of migrations per database driver.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*/*.sql
var embeddedMigrations embed.FS

// DialectFor maps a configured database driver onto the goose dialect.
func DialectFor(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres":
		return "postgres", nil
	case "sqlite", "sqlite3":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported migration driver %q", driver)
	}
}

// DirFor returns the on-disk migration directory for driver under root.
func DirFor(root, driver string) string {
	if root == "" {
		root = DefaultDir
	}
	return filepath.Join(root, driverDir(driver))
}

func driverDir(driver string) string {
	d := strings.ToLower(strings.TrimSpace(driver))
	if d == "sqlite3" {
		return "sqlite"
	}
	return d
}

// prepare selects the dialect and migration source. An empty dir runs the
// migrations compiled into the binary.
func prepare(driver, dir string) (string, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return "", err
	}
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("set goose dialect: %w", err)
	}
	if dir == "" {
		goose.SetBaseFS(embeddedMigrations)
		return path.Join("migrations", driverDir(driver)), nil
	}
	goose.SetBaseFS(nil)
	return dir, nil
}

// Run executes a standard goose command that requires a DB connection.
func Run(ctx context.Context, db *sql.DB, driver, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	source, err := prepare(driver, dir)
	if err != nil {
		return err
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, source, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, driver, dir string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}

	source, err := prepare(driver, dir)
	if err != nil {
		return err
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil

	case current < target:
		if err := goose.UpToContext(ctx, db, source, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil

	default:
		if err := goose.DownToContext(ctx, db, source, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}
