// Package migrations applies the embedded schema with golang-migrate.
package migrations

import (
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sirupsen/logrus"
)

//go:embed sql/*.sql
var files embed.FS

// Source exposes the embedded migrations as a golang-migrate source.
func Source() (source.Driver, error) {
	d, err := iofs.New(files, "sql")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open embedded migrations")
	}
	return d, nil
}

// Up applies every pending migration against databaseURL (pgx5:// scheme).
func Up(databaseURL string, log logrus.FieldLogger) error {
	return run(databaseURL, log, func(m *migrate.Migrate) error { return m.Up() })
}

// Down rolls back one migration.
func Down(databaseURL string, log logrus.FieldLogger) error {
	return run(databaseURL, log, func(m *migrate.Migrate) error { return m.Steps(-1) })
}

func run(databaseURL string, log logrus.FieldLogger, step func(*migrate.Migrate) error) error {
	src, err := Source()
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return goerr.Wrap(err, "failed to init migrations")
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.WithFields(logrus.Fields{"source_error": srcErr, "db_error": dbErr}).Warn("failed to close migrator")
		}
	}()

	if err := step(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("✅ Schema already up to date")
			return nil
		}
		return goerr.Wrap(err, "migration failed")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return goerr.Wrap(err, "failed to read schema version")
	}
	log.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("✅ Migrations applied")
	return nil
}
