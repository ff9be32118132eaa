package sqlitemigrate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "migrate.db")
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestApplyMigrations_AppliesOnce(t *testing.T) {
	sqlDB := openTestDB(t)
	fsys := fstest.MapFS{
		"0001_init.sql": &fstest.MapFile{Data: []byte(`
-- +migrate Up
CREATE TABLE widgets (id TEXT PRIMARY KEY);
-- +migrate Down
DROP TABLE widgets;
`)},
	}

	if err := ApplyMigrations(sqlDB, fsys, ""); err != nil {
		t.Fatalf("apply: %v", err)
	}
	// Second run must be a no-op.
	if err := ApplyMigrations(sqlDB, fsys, ""); err != nil {
		t.Fatalf("re-apply: %v", err)
	}

	var count int
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("applied migrations = %d, want 1", count)
	}
	if _, err := sqlDB.Exec("INSERT INTO widgets (id) VALUES ('w1')"); err != nil {
		t.Fatalf("insert into migrated table: %v", err)
	}
}

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (x);\n-- +migrate Down\nDROP TABLE a;\n"
	up := ExtractUpMigration(content)
	if up != "\nCREATE TABLE a (x);\n" {
		t.Fatalf("up section = %q", up)
	}

	plain := "CREATE TABLE b (y);"
	if got := ExtractUpMigration(plain); got != plain {
		t.Fatalf("plain content = %q", got)
	}
}

func TestApplyMigrations_OrderedByName(t *testing.T) {
	sqlDB := openTestDB(t)
	fsys := fstest.MapFS{
		"0002_add_column.sql": &fstest.MapFile{Data: []byte("ALTER TABLE things ADD COLUMN label TEXT;")},
		"0001_init.sql":       &fstest.MapFile{Data: []byte("CREATE TABLE things (id TEXT PRIMARY KEY);")},
	}

	if err := ApplyMigrations(sqlDB, fsys, ""); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := sqlDB.Exec("INSERT INTO things (id, label) VALUES ('t1', 'first')"); err != nil {
		t.Fatalf("insert with added column: %v", err)
	}
}
