package inmemdb

import (
	"context"

	"github.com/masdens1250/appamine/core/settings"
)

type settingsRepository struct {
	db *settingsTable
}

func NewSettingsRepository(db *DB) settings.Repository {
	return &settingsRepository{db: db.settings}
}

func (repo *settingsRepository) GetSettings(_ context.Context) (settings.Settings, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.db.s == nil {
		return settings.Settings{}, settings.ErrNotFound
	}
	return *repo.db.s, nil
}

func (repo *settingsRepository) SaveSettings(_ context.Context, s settings.Settings) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.s = &s
	return nil
}
