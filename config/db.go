package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// busyTimeout makes a writer wait for another process holding the database
// lock instead of failing with SQLITE_BUSY.
const busyTimeout = "?_pragma=busy_timeout(5000)"

// OpenDB opens the SQLite database at path and creates the workflow schema
// if it does not exist yet.
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+busyTimeout)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows a single writer; one connection keeps the approval
	// transaction and its triggers on the same handle.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func createTables(db *sql.DB) error {
	// Begin a transaction for the table creation process
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}

	statements := []struct {
		name string
		sql  string
	}{
		{"workflow_requests table", `
		CREATE TABLE IF NOT EXISTS workflow_requests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL UNIQUE,
			material_number TEXT NOT NULL,
			material_description TEXT NOT NULL,
			request_date TEXT NOT NULL,       -- RFC3339Nano
			requested_by TEXT NOT NULL,
			status TEXT CHECK(status IN ('Requested','Approved')) NOT NULL,
			approved_by TEXT,
			approval_date TEXT,
			comments TEXT
		);`},
		{"audit_log table", `
		CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			material_number TEXT NOT NULL,
			material_description TEXT,
			status TEXT NOT NULL,
			created_by TEXT,
			created_at TEXT,
			modified_by TEXT NOT NULL,
			modified_at TEXT NOT NULL,
			version INTEGER NOT NULL,
			comments TEXT
		);`},
		{"audit_log index", `
		CREATE INDEX IF NOT EXISTS idx_audit_log_material ON audit_log(material_number, version);`},
		// Audit rows are append-only.
		{"audit_log update guard", `
		CREATE TRIGGER IF NOT EXISTS audit_log_no_update
		BEFORE UPDATE ON audit_log
		BEGIN
			SELECT RAISE(ABORT, 'audit_log is append-only');
		END;`},
		{"audit_log delete guard", `
		CREATE TRIGGER IF NOT EXISTS audit_log_no_delete
		BEFORE DELETE ON audit_log
		BEGIN
			SELECT RAISE(ABORT, 'audit_log is append-only');
		END;`},
	}

	for _, st := range statements {
		if _, err := tx.Exec(st.sql); err != nil {
			tx.Rollback() // Rollback in case of error
			return fmt.Errorf("create %s: %w", st.name, err)
		}
	}

	// Commit the transaction once all tables are created successfully
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
