package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
)

// ErrNothingToRollback is returned by Rollback when no migration is applied
var ErrNothingToRollback = errors.New("no migrations to rollback")

// Migration represents a database migration
type Migration struct {
	Name    string
	UpSQL   string
	DownSQL string
}

// All returns the schema migrations in the order they must be applied
func All() []*Migration {
	return []*Migration{
		InitialSchema,
		RetentionPolicies,
	}
}

// Migrator applies and rolls back migrations, recording them in the
// schema_migrations table.
type Migrator struct {
	db *sql.DB
}

// New creates a new Migrator
func New(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

// Initialize creates the bookkeeping table if it doesn't exist
func (m *Migrator) Initialize() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := m.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns the names of applied migrations
func (m *Migrator) GetAppliedMigrations() (map[string]bool, error) {
	rows, err := m.db.Query(`SELECT name FROM schema_migrations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan migration name: %w", err)
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

// Pending returns the migrations that have not been applied yet
func (m *Migrator) Pending(migrations []*Migration) ([]*Migration, error) {
	applied, err := m.GetAppliedMigrations()
	if err != nil {
		return nil, err
	}

	var pending []*Migration
	for _, migration := range migrations {
		if !applied[migration.Name] {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// inTx runs statement and its bookkeeping query in one transaction
func (m *Migrator) inTx(migration *Migration, statement, bookkeeping string) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Printf("Warning: failed to rollback transaction: %v", err)
		}
	}()

	if _, err := tx.Exec(statement); err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", migration.Name, err)
	}
	if _, err := tx.Exec(bookkeeping, migration.Name); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", migration.Name, err)
	}

	return tx.Commit()
}

// ApplyMigration applies a single migration
func (m *Migrator) ApplyMigration(migration *Migration) error {
	return m.inTx(migration, migration.UpSQL, "INSERT INTO schema_migrations (name) VALUES ($1)")
}

// RollbackMigration rolls back a single migration
func (m *Migrator) RollbackMigration(migration *Migration) error {
	return m.inTx(migration, migration.DownSQL, "DELETE FROM schema_migrations WHERE name = $1")
}

// Migrate applies all pending migrations and returns how many were applied
func (m *Migrator) Migrate(migrations []*Migration) (int, error) {
	if err := m.Initialize(); err != nil {
		return 0, err
	}

	pending, err := m.Pending(migrations)
	if err != nil {
		return 0, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for i, migration := range pending {
		if err := m.ApplyMigration(migration); err != nil {
			return i, err
		}
		log.Printf("Applied migration: %s", migration.Name)
	}

	return len(pending), nil
}

// Rollback rolls back the most recently applied migration
func (m *Migrator) Rollback(migrations []*Migration) (*Migration, error) {
	applied, err := m.GetAppliedMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		if !applied[migrations[i].Name] {
			continue
		}
		if err := m.RollbackMigration(migrations[i]); err != nil {
			return nil, err
		}
		log.Printf("Rolled back migration: %s", migrations[i].Name)
		return migrations[i], nil
	}

	return nil, ErrNothingToRollback
}
