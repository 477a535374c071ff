// Package sqlitemigrate applies embedded SQL migrations to a SQLite
// database, recording applied files in a schema_migrations ledger so that
// reopening a store is idempotent.
package sqlitemigrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

const ledgerTable = "schema_migrations"

const upMarker = "-- +migrate Up"
const downMarker = "-- +migrate Down"

// Apply executes every .sql file under dir of fsys, in lexical order, at
// most once per file. Each migration runs in its own transaction together
// with its ledger row, so a failed migration stays unrecorded.
func Apply(sqlDB *sql.DB, fsys fs.FS, dir string) error {
	if sqlDB == nil {
		return fmt.Errorf("sql db is required")
	}

	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "."
	}

	files, err := migrationFiles(fsys, dir)
	if err != nil {
		return err
	}

	if err := ensureLedger(sqlDB); err != nil {
		return err
	}

	for _, file := range files {
		if err := applyOne(sqlDB, fsys, dir, file); err != nil {
			return err
		}
	}
	return nil
}

// UpSection returns the SQL between the "-- +migrate Up" marker and the
// "-- +migrate Down" marker. Files without markers apply whole.
func UpSection(content string) string {
	start := strings.Index(content, upMarker)
	if start == -1 {
		return content
	}
	body := content[start+len(upMarker):]
	if end := strings.Index(body, downMarker); end != -1 {
		body = body[:end]
	}
	return body
}

func migrationFiles(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

func ensureLedger(sqlDB *sql.DB) error {
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    name TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`, ledgerTable)
	if _, err := sqlDB.Exec(ddl); err != nil {
		return fmt.Errorf("ensure migration ledger: %w", err)
	}
	return nil
}

func applyOne(sqlDB *sql.DB, fsys fs.FS, dir, file string) error {
	key := file
	if dir != "." {
		key = path.Join(dir, file)
	}

	applied, err := isApplied(sqlDB, key)
	if err != nil {
		return fmt.Errorf("check migration %s: %w", file, err)
	}
	if applied {
		return nil
	}

	content, err := fs.ReadFile(fsys, path.Join(dir, file))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", file, err)
	}
	upSQL := UpSection(string(content))
	if strings.TrimSpace(upSQL) == "" {
		return nil
	}

	tx, err := sqlDB.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("begin migration transaction %s: %w", file, err)
	}
	if _, err := tx.Exec(upSQL); err != nil {
		if !isIdempotentDDLError(err) {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", file, err)
		}
	}
	if _, err := tx.Exec(
		fmt.Sprintf("INSERT OR IGNORE INTO %s (name, applied_at) VALUES (?, ?)", ledgerTable),
		key,
		time.Now().UTC().UnixMilli(),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", file, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", file, err)
	}
	return nil
}

// isIdempotentDDLError reports DDL failures that indicate the schema change
// already happened, which replayed migrations may hit.
func isIdempotentDDLError(err error) bool {
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "already exists") || strings.Contains(value, "duplicate column name")
}

func isApplied(sqlDB *sql.DB, name string) (bool, error) {
	var found int
	row := sqlDB.QueryRow("SELECT 1 FROM "+ledgerTable+" WHERE name = ?", name)
	if err := row.Scan(&found); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
