/*
Package sqlite provides a SQLite-backed employee directory.

PURPOSE:
  Implements payroll.Directory using SQLite. The directory is small (a
  single shop's staff), so the write model is deliberately coarse: every
  edit replaces the whole list inside one transaction. That is the
  atomic-overwrite contract - a concurrent reader sees either the old list
  or the new one, never a mix.

SCHEMA:
  employees:
    position         stored list order (List returns it ascending)
    name             unique, case-preserved
    aliases_json     JSON array of match aliases
    base_rate        decimal string, per-shift flat rate
    switch_override  optional "HH:MM", carried but unused by the engine

AMOUNT STORAGE:
  Base rates are stored as decimal strings, never floats, so a directory
  round-trip reproduces the exact rate.

WAL MODE:
  Opened with WAL for better concurrency; multiple readers don't block and
  crash recovery improves. A sync.RWMutex guards the connection on top.

USAGE:
  dir, err := sqlite.New("./data/payout.db")   // ":memory:" for tests
  if err != nil { log.Fatal(err) }
  defer dir.Close()

SEE ALSO:
  - payroll/store.go: the Directory interface
  - payroll/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/brewshift/payout/payroll"
)

// Directory implements payroll.Directory using SQLite.
type Directory struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the directory database at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Directory, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	d := &Directory{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return d, nil
}

// Close closes the database connection.
func (d *Directory) Close() error {
	return d.db.Close()
}

// migrate creates the database schema.
func (d *Directory) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		position        INTEGER NOT NULL,
		name            TEXT PRIMARY KEY,
		aliases_json    TEXT NOT NULL DEFAULT '[]',
		base_rate       TEXT NOT NULL DEFAULT '0',
		switch_override TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_employees_position ON employees(position);
	`
	_, err := d.db.Exec(schema)
	return err
}

// List returns the employees in their stored order.
func (d *Directory) List(ctx context.Context) ([]payroll.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rows, err := d.db.QueryContext(ctx, `
		SELECT name, aliases_json, base_rate, switch_override
		FROM employees ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}
	defer rows.Close()

	var employees []payroll.Employee
	for rows.Next() {
		var (
			emp        payroll.Employee
			aliasesRaw string
			rateRaw    string
			override   sql.NullString
		)
		if err := rows.Scan(&emp.Name, &aliasesRaw, &rateRaw, &override); err != nil {
			return nil, fmt.Errorf("scanning employee: %w", err)
		}
		if err := json.Unmarshal([]byte(aliasesRaw), &emp.Aliases); err != nil {
			return nil, &payroll.ConfigurationError{Field: "employee aliases", Cause: err}
		}
		rate, err := decimal.NewFromString(rateRaw)
		if err != nil {
			return nil, &payroll.ConfigurationError{Field: "employee base_rate", Cause: err}
		}
		emp.BaseRate = rate
		if override.Valid {
			emp.SwitchOverride = override.String
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// Replace atomically overwrites the full employee list.
func (d *Directory) Replace(ctx context.Context, employees []payroll.Employee) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM employees`); err != nil {
		return fmt.Errorf("clearing employees: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO employees (position, name, aliases_json, base_rate, switch_override)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, emp := range employees {
		aliases, err := json.Marshal(emp.Aliases)
		if err != nil {
			return fmt.Errorf("encoding aliases for %s: %w", emp.Name, err)
		}
		var override any
		if emp.SwitchOverride != "" {
			override = emp.SwitchOverride
		}
		if _, err := stmt.ExecContext(ctx, i, emp.Name, string(aliases), emp.BaseRate.String(), override); err != nil {
			return fmt.Errorf("inserting %s: %w", emp.Name, err)
		}
	}

	return tx.Commit()
}
