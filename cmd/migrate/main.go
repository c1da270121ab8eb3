// Command migrate applies the session schema to the configured PostgreSQL database.
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/pflag"

	"github.com/JaimeStill/pdf-editor/internal/config"
	"github.com/JaimeStill/pdf-editor/internal/editor"
	"github.com/JaimeStill/pdf-editor/migrations"
	"github.com/JaimeStill/pdf-editor/pkg/logging"
)

type options struct {
	up      bool
	down    bool
	version bool
	steps   int
	dsn     string
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}

	fs := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	fs.BoolVar(&opts.up, "up", false, "apply all pending migrations")
	fs.BoolVar(&opts.down, "down", false, "roll back all migrations")
	fs.BoolVar(&opts.version, "version", false, "print the current schema version")
	fs.IntVar(&opts.steps, "steps", 0, "apply n migrations (negative rolls back)")
	fs.StringVar(&opts.dsn, "dsn", "", "database connection string (defaults to the [database] config)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	selected := 0
	for _, set := range []bool{opts.up, opts.down, opts.version, opts.steps != 0} {
		if set {
			selected++
		}
	}
	switch {
	case selected == 0:
		opts.up = true
	case selected > 1:
		return nil, errors.New("choose one of --up, --down, --version or --steps")
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts *options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger := logging.New(&cfg.Logging).With("command", "migrate")

	dsn := opts.dsn
	if dsn == "" {
		if cfg.Sessions.Store != editor.StorePostgres {
			return fmt.Errorf("session store is %q; set --dsn or use the postgres store", cfg.Sessions.Store)
		}
		dsn = cfg.Database.Dsn()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	m, err := migrations.New(db)
	if err != nil {
		return err
	}
	defer m.Close()

	switch {
	case opts.version:
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			logger.Info("no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		logger.Info("schema version", "version", version, "dirty", dirty)
		return nil
	case opts.down:
		err = m.Down()
	case opts.steps != 0:
		err = m.Steps(opts.steps)
	default:
		err = m.Up()
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema already up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	logger.Info("migrations applied")
	return nil
}
