package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
)

// ValidateDir validates migration filenames and goose annotations in one
// dialect directory and returns the versions it found.
func ValidateDir(dir string) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{} // version -> filename
	versions := []string{}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}

		version := m[1]
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name
		versions = append(versions, version)

		full := filepath.Join(dir, name)
		b, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("read file %q: %w", full, err)
		}

		txt := string(b)
		if !strings.Contains(txt, "-- +goose Up") {
			return nil, fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
		}
		if !strings.Contains(txt, "-- +goose Down") {
			return nil, fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
		}
	}

	sort.Strings(versions)
	return versions, nil
}

// ValidateTree validates every dialect directory under root and requires
// all dialects to carry the same migration versions.
func ValidateTree(root string) error {
	if root == "" {
		root = DefaultDir
	}
	var reference []string
	var referenceDriver string
	for _, driver := range []string{"postgres", "sqlite"} {
		versions, err := ValidateDir(DirFor(root, driver))
		if err != nil {
			return fmt.Errorf("%s: %w", driver, err)
		}
		if referenceDriver == "" {
			reference, referenceDriver = versions, driver
			continue
		}
		if strings.Join(versions, ",") != strings.Join(reference, ",") {
			return fmt.Errorf("migration versions differ between %s %v and %s %v", referenceDriver, reference, driver, versions)
		}
	}
	return nil
}
