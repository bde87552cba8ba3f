package database

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/bths-repair/bths-repair-the-world/core"
)

func dsn(conf *core.Config) string {
	user := url.UserPassword(conf.Database.User, conf.Database.Password)

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Database.Engine,
		User:     user,
		Host:     conf.Database.Address(),
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func Open(conf *core.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open(conf.Database.Engine, dsn(conf))
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	return db, nil
}

// Ping waits for the database to be ready. Waits 100ms longer between each attempt.
func Ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate applies all pending migrations from storage/database/migrations.
func Migrate(conf *core.Config) error {
	path := filepath.Join(conf.WorkDir, "storage", "database", "migrations")
	m, err := migrate.New("file://"+path, dsn(conf))
	if err != nil {
		return errors.Wrap(err, "initializing migrations")
	}
	defer func() { _, _ = m.Close() }()

	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// Rollback undoes the most recent migration.
func Rollback(conf *core.Config) error {
	path := filepath.Join(conf.WorkDir, "storage", "database", "migrations")
	m, err := migrate.New("file://"+path, dsn(conf))
	if err != nil {
		return errors.Wrap(err, "initializing migrations")
	}
	defer func() { _, _ = m.Close() }()

	if err = m.Steps(-1); err != nil {
		return errors.Wrap(err, "rolling back database")
	}
	return nil
}
