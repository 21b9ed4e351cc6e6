// Package storage picks the configured settings backend.
package storage

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/masdens1250/appamine/core"
	"github.com/masdens1250/appamine/core/settings"
	"github.com/masdens1250/appamine/storage/database"
	"github.com/masdens1250/appamine/storage/database/inmem"
	"github.com/masdens1250/appamine/storage/database/sqlx"
	"github.com/masdens1250/appamine/storage/settingsfile"
)

var (
	// errors
	ErrUnknownBackend = errors.New("unknown settings backend")
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenSettingsRepository returns the settings store named by conf.Settings.Backend
// along with whatever must be closed once the application stops.
// The memory backend lives in memDB.
func OpenSettingsRepository(ctx context.Context, conf *core.Config, memDB *inmemdb.DB) (settings.Repository, io.Closer, error) {
	switch conf.Settings.Backend {
	case "", "file":
		return settingsfile.NewSettingsRepository(conf.Settings.File), nopCloser{}, nil

	case "sql":
		db, err := database.Open(conf)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening settings database")
		}
		if err = database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlxrepos.NewSettingsRepository(db), db, nil

	case "memory":
		return inmemdb.NewSettingsRepository(memDB), nopCloser{}, nil

	default:
		return nil, nil, errors.Wrapf(ErrUnknownBackend, "%q", conf.Settings.Backend)
	}
}
