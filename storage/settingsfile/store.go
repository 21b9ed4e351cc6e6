// Package settingsfile keeps the application settings in a YAML file.
package settingsfile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/masdens1250/appamine/core/settings"
)

type store struct {
	path  string
	mutex sync.RWMutex
}

func NewSettingsRepository(path string) settings.Repository {
	return &store{path: path}
}

func (st *store) GetSettings(_ context.Context) (settings.Settings, error) {
	st.mutex.RLock()
	defer st.mutex.RUnlock()

	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings.Settings{}, settings.ErrNotFound
		}
		return settings.Settings{}, errors.Wrapf(err, "reading %s", st.path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return settings.Settings{}, settings.ErrNotFound
	}

	var s settings.Settings
	if err = yaml.Unmarshal(data, &s); err != nil {
		return settings.Settings{}, errors.Wrapf(err, "decoding %s", st.path)
	}
	return s, nil
}

// SaveSettings writes to a temporary file first so readers never see a partial file.
func (st *store) SaveSettings(_ context.Context, s settings.Settings) error {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encoding settings")
	}
	if err = os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		return errors.Wrap(err, "creating settings directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(st.path), ".settings-*.yaml")
	if err != nil {
		return errors.Wrap(err, "creating temporary settings file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing settings")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "writing settings")
	}
	if err = os.Rename(tmp.Name(), st.path); err != nil {
		return errors.Wrap(err, "replacing settings file")
	}
	return nil
}
