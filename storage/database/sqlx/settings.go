package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/masdens1250/appamine/core"
	"github.com/masdens1250/appamine/core/settings"
)

// the settings table holds a single row
const settingsRowID = 1

var nowFunc = time.Now

type settingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) settings.Repository {
	return &settingsRepository{db: db}
}

func (repo *settingsRepository) GetSettings(ctx context.Context) (settings.Settings, error) {
	var s settings.Settings
	q := repo.db.Rebind(`SELECT school_name, counselor_name FROM app_settings WHERE id = ?`)
	if err := repo.db.GetContext(ctx, &s, q, settingsRowID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return settings.Settings{}, settings.ErrNotFound
		}
		return settings.Settings{}, repo.fail(ctx, err, "selecting settings")
	}
	return s, nil
}

func (repo *settingsRepository) SaveSettings(ctx context.Context, s settings.Settings) error {
	q := repo.db.Rebind(`
		INSERT INTO app_settings (id, school_name, counselor_name, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			school_name = excluded.school_name,
			counselor_name = excluded.counselor_name,
			updated_at = excluded.updated_at`)
	if _, err := repo.db.ExecContext(ctx, q, settingsRowID, s.SchoolName, s.CounselorName, nowFunc().UTC()); err != nil {
		return repo.fail(ctx, err, "saving settings")
	}
	return nil
}

// fail wraps a query error. A database that no longer answers pings is reported as a shutdown error.
func (repo *settingsRepository) fail(ctx context.Context, err error, msg string) error {
	if ctx.Err() != nil {
		return errors.Wrap(err, msg)
	}
	if pingErr := repo.db.PingContext(ctx); pingErr != nil {
		return core.NewShutdownError(fmt.Sprintf("%s: settings database unreachable: %v", msg, pingErr))
	}
	return errors.Wrap(err, msg)
}
