package migrations

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	promise "github.com/goliatone/go-promise"
	_ "github.com/mattn/go-sqlite3"
)

func TestForDialect_ResolvesEmbeddedTrees(t *testing.T) {
	for _, dialect := range Dialects() {
		fsys, err := ForDialect(dialect)
		if err != nil {
			t.Fatalf("for dialect %s: %v", dialect, err)
		}
		if _, err := fs.Stat(fsys, "00001_promise_collaborators.up.sql"); err != nil {
			t.Fatalf("expected %s collaborator migration at the root: %v", dialect, err)
		}
	}

	sqliteFS, err := ForDialect("sqlite3")
	if err != nil {
		t.Fatalf("for dialect sqlite3: %v", err)
	}
	content, err := fs.ReadFile(sqliteFS, "00001_promise_collaborators.up.sql")
	if err != nil {
		t.Fatalf("read sqlite migration: %v", err)
	}
	if strings.Contains(string(content), "TIMESTAMPTZ") {
		t.Fatalf("expected the sqlite tree, got the postgres migration")
	}
}

func TestNormalizeDialect_DriverAliases(t *testing.T) {
	cases := map[string]string{
		"postgres":   DialectPostgres,
		"PostgreSQL": DialectPostgres,
		" pg ":       DialectPostgres,
		"sqlite3":    DialectSQLite,
		"sqlite":     DialectSQLite,
	}
	for name, expected := range cases {
		got, ok := NormalizeDialect(name)
		if !ok || got != expected {
			t.Fatalf("expected %q to normalize to %q, got %q (%v)", name, expected, got, ok)
		}
	}
	if _, ok := NormalizeDialect("mysql"); ok {
		t.Fatalf("expected mysql to be unsupported")
	}
	if _, err := ForDialect("mysql"); err == nil {
		t.Fatalf("expected unsupported dialect error")
	}
}

func TestForDialect_RejectsIncompleteTrees(t *testing.T) {
	withoutUp := fstest.MapFS{
		"data/sql/migrations/sqlite/00001_a.down.sql": {Data: []byte("SELECT 1;")},
	}
	if _, err := ForDialect(DialectSQLite, withoutUp); err == nil {
		t.Fatalf("expected missing up migrations to fail")
	}

	withoutDown := fstest.MapFS{
		"data/sql/migrations/00001_a.up.sql": {Data: []byte("SELECT 1;")},
	}
	if _, err := ForDialect(DialectPostgres, withoutDown); err == nil {
		t.Fatalf("expected missing down migration to fail")
	}

	complete := fstest.MapFS{
		"data/sql/migrations/00001_a.up.sql":   {Data: []byte("SELECT 1;")},
		"data/sql/migrations/00001_a.down.sql": {Data: []byte("SELECT 1;")},
	}
	if _, err := ForDialect(DialectPostgres, complete); err != nil {
		t.Fatalf("expected complete tree to resolve: %v", err)
	}
}

func TestCollaboratorMigrationPair_ExistsForBothDialects(t *testing.T) {
	root := promise.GetMigrationsFS()
	paths := []string{
		"data/sql/migrations/00001_promise_collaborators.up.sql",
		"data/sql/migrations/00001_promise_collaborators.down.sql",
		"data/sql/migrations/sqlite/00001_promise_collaborators.up.sql",
		"data/sql/migrations/sqlite/00001_promise_collaborators.down.sql",
	}
	for _, migrationPath := range paths {
		content, err := fs.ReadFile(root, migrationPath)
		if err != nil {
			t.Fatalf("read migration %s: %v", migrationPath, err)
		}
		if strings.TrimSpace(string(content)) == "" {
			t.Fatalf("expected migration %s to have SQL content", migrationPath)
		}
	}
}

func TestSQLiteCollaboratorMigration_ApplyAndRollback(t *testing.T) {
	db, err := sql.Open("sqlite3", "file:migrations-promise-collaborators?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	defer func() { _ = db.Close() }()

	sqliteMigrations, err := ForDialect(DialectSQLite)
	if err != nil {
		t.Fatalf("resolve sqlite migrations: %v", err)
	}

	if err := execSQLMigration(context.Background(), db, sqliteMigrations, "00001_promise_collaborators.up.sql"); err != nil {
		t.Fatalf("apply up migration: %v", err)
	}

	insertMembership := `INSERT INTO promise_memberships (id, account, relation, member) VALUES (?, ?, ?, ?)`
	if _, err := db.ExecContext(context.Background(), insertMembership, "m1", "acct1", "follow", "bob"); err != nil {
		t.Fatalf("insert membership: %v", err)
	}
	if _, err := db.ExecContext(context.Background(), insertMembership, "m2", "acct1", "follow", "bob"); err == nil {
		t.Fatalf("expected duplicate membership to violate unique constraint")
	}

	insertKey := `INSERT INTO promise_account_keys (id, account, curve, public_key, purpose, consent) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := db.ExecContext(context.Background(), insertKey, "k1", "acct1", "ed25519", "pub", "sig", "consent"); err != nil {
		t.Fatalf("insert account key: %v", err)
	}
	if _, err := db.ExecContext(context.Background(), insertKey, "k2", "acct1", "ed25519", "pub", "sig", "consent"); err == nil {
		t.Fatalf("expected duplicate key to violate unique constraint")
	}

	if err := execSQLMigration(context.Background(), db, sqliteMigrations, "00001_promise_collaborators.down.sql"); err != nil {
		t.Fatalf("apply down migration: %v", err)
	}

	var count int
	if err := db.QueryRowContext(
		context.Background(),
		`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name LIKE 'promise_%'`,
	).Scan(&count); err != nil {
		t.Fatalf("count tables: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected promise tables to be dropped, got %d", count)
	}
}

func execSQLMigration(ctx context.Context, db *sql.DB, fsys fs.FS, filename string) error {
	content, err := fs.ReadFile(fsys, filepath.Clean(filename))
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, string(content))
	return err
}
