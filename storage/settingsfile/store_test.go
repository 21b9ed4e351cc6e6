package settingsfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masdens1250/appamine/core/settings"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "config", "settings.yaml")
	repo := NewSettingsRepository(path)

	_, err := repo.GetSettings(ctx)
	assert.Equal(t, settings.ErrNotFound, errors.Cause(err))

	want := settings.Settings{SchoolName: "متوسطة الفتح", CounselorName: "أ. كريمة"}
	require.NoError(t, repo.SaveSettings(ctx, want))

	got, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "school_name: متوسطة الفتح")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files left behind")
}

func TestStore_Read(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		content string
		want    settings.Settings
		wantErr error
	}{
		{name: "empty file", content: "  \n", wantErr: settings.ErrNotFound},
		{name: "partial", content: "counselor_name: Amine\n", want: settings.Settings{CounselorName: "Amine"}},
		{name: "unknown keys ignored", content: "school_name: A\ntheme: dark\n", want: settings.Settings{SchoolName: "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := NewSettingsRepository(path).GetSettings(ctx)
			assert.Equal(t, tt.wantErr, errors.Cause(err))
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "settings.yaml")
		require.NoError(t, os.WriteFile(path, []byte("school_name: [unclosed"), 0o644))
		_, err := NewSettingsRepository(path).GetSettings(ctx)
		assert.Error(t, err)
	})
}
