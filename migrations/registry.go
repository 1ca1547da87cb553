// Package migrations resolves the embedded collaborator schema for the SQL
// dialect a host runs on.
package migrations

import (
	"fmt"
	"io/fs"
	"strings"

	promise "github.com/goliatone/go-promise"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const migrationsDir = "data/sql/migrations"

// dialectDirs maps a dialect to its directory below migrationsDir. Postgres
// files sit at the root; other dialects keep their own subdirectory.
var dialectDirs = map[string]string{
	DialectPostgres: ".",
	DialectSQLite:   "sqlite",
}

// Dialects lists the dialects that ship migrations.
func Dialects() []string {
	return []string{DialectPostgres, DialectSQLite}
}

// NormalizeDialect folds driver names onto the dialect keys used here.
func NormalizeDialect(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case DialectPostgres, "postgresql", "pg", "pgx":
		return DialectPostgres, true
	case DialectSQLite, "sqlite3":
		return DialectSQLite, true
	default:
		return "", false
	}
}

// ForDialect returns the migrations for dialect, read from the embedded tree
// unless source is given. The result holds the *.up.sql and *.down.sql pairs
// at its root, ready for a persistence client to register.
func ForDialect(dialect string, source ...fs.FS) (fs.FS, error) {
	key, ok := NormalizeDialect(dialect)
	if !ok {
		return nil, fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}

	root := promise.GetMigrationsFS()
	if len(source) > 0 && source[0] != nil {
		root = source[0]
	}

	dir := migrationsDir
	if sub := dialectDirs[key]; sub != "." {
		dir += "/" + sub
	}
	fsys, err := fs.Sub(root, dir)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve %s: %w", dir, err)
	}

	ups, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("migrations: list %s: %w", dir, err)
	}
	if len(ups) == 0 {
		return nil, fmt.Errorf("migrations: %s has no *.up.sql files", dir)
	}
	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		if _, err := fs.Stat(fsys, down); err != nil {
			return nil, fmt.Errorf("migrations: %s is missing %s", dir, down)
		}
	}
	return fsys, nil
}
