package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	_ "github.com/lib/pq"

	"github.com/saviobatista/ais-logger/internal/config"
	"github.com/saviobatista/ais-logger/internal/db/migrations"
)

type options struct {
	dbURL    string
	rollback bool
	status   bool
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	db, err := sql.Open("postgres", opts.dbURL)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	err = run(db, opts, os.Stdout)
	if cerr := db.Close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "error closing db: %v\n", cerr)
	}
	if err != nil {
		log.Printf("Migration failed: %v", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.dbURL, "db", config.DefaultDBConnStr, "Database connection string")
	fs.BoolVar(&opts.rollback, "rollback", false, "Rollback the last migration")
	fs.BoolVar(&opts.status, "status", false, "List applied and pending migrations")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.rollback && opts.status {
		fmt.Fprintln(output, "-rollback and -status are mutually exclusive")
		return opts, errors.New("conflicting flags")
	}
	return opts, nil
}

// run pings the database and executes the requested action
func run(db *sql.DB, opts options, out io.Writer) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	migrator := migrations.New(db)
	migrationList := migrations.All()

	switch {
	case opts.status:
		if err := migrator.Initialize(); err != nil {
			return err
		}
		applied, err := migrator.GetAppliedMigrations()
		if err != nil {
			return err
		}
		for _, m := range migrationList {
			state := "pending"
			if applied[m.Name] {
				state = "applied"
			}
			fmt.Fprintf(out, "%-8s %s\n", state, m.Name)
		}
		return nil

	case opts.rollback:
		m, err := migrator.Rollback(migrationList)
		if errors.Is(err, migrations.ErrNothingToRollback) {
			fmt.Fprintln(out, "Nothing to rollback")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to rollback migration: %w", err)
		}
		fmt.Fprintf(out, "Rolled back %s\n", m.Name)
		return nil

	default:
		n, err := migrator.Migrate(migrationList)
		if err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		fmt.Fprintf(out, "Applied %d migration(s)\n", n)
		return nil
	}
}
