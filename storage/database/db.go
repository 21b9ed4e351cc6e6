package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/masdens1250/appamine/core"
)

var (
	drivers = map[string]string{
		"postgres": "postgres",
		"sqlite":   "sqlite",
	}

	// errors
	ErrUnknownEngine = errors.New("unknown database engine")
)

// Open connects to the configured database and waits for it to answer.
func Open(conf *core.Config) (*sqlx.DB, error) {
	driver, ok := drivers[conf.Database.Engine]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEngine, "%q", conf.Database.Engine)
	}
	db, err := sqlx.Open(driver, conf.Database.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1) // single writer
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
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

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS app_settings (
		id INTEGER PRIMARY KEY,
		school_name TEXT NOT NULL DEFAULT '',
		counselor_name TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMP NOT NULL
	)`,
}

// Migrate creates the tables the settings store needs. It is safe to run it on every start.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, q := range migrations {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return errors.Wrap(err, "migrating database")
		}
	}
	return nil
}
