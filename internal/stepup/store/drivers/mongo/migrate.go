package mongo

import (
	"errors"
	"net/url"

	"github.com/eventia/stepup/internal/stepup/store/drivers/mongo/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
)

// ApplyMigrations runs the embedded index migrations against the configured
// database. Documents are schemaless, so "migration" here means collection
// indexes: uniqueness of device pairs and the expiry/lookup indexes every
// repository query leans on.
func (s *Store) ApplyMigrations() error {
	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	dbURL, err := s.migrateURL()
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return err
	}

	err = instance.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// migrateURL rewrites the connection URI so its path names the target
// database, which is how the migrate mongodb driver selects it.
func (s *Store) migrateURL() (string, error) {
	u, err := url.Parse(s.cfg.URI)
	if err != nil {
		return "", err
	}
	u.Path = "/" + s.cfg.Database
	return u.String(), nil
}
