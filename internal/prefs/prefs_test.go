package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbnsaiful/topup-rewards/internal/settings"
)

func TestStore_LoadMissingReturnsDefaults(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	p, err := store.Load("unknown-uid")
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, p.Theme)
	assert.Equal(t, "en", p.Language)
	assert.Zero(t, p.LastReadTimestamp)
	assert.Nil(t, p.CachedSettings)
}

func TestStore_SaveThenLoadRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	cached := settings.Default()
	cached.AppName = "TopUp"
	cached.Visibility.Earn = false

	want := Prefs{
		Theme:             ThemeDark,
		Language:          "ru",
		LastReadTimestamp: 1700000000000,
		CachedSettings:    &cached,
	}
	require.NoError(t, store.Save("uid-1", want))

	got, err := store.Load("uid-1")
	require.NoError(t, err)
	assert.Equal(t, want.Theme, got.Theme)
	assert.Equal(t, want.Language, got.Language)
	assert.Equal(t, want.LastReadTimestamp, got.LastReadTimestamp)
	require.NotNil(t, got.CachedSettings)
	assert.Equal(t, "TopUp", got.CachedSettings.AppName)
	assert.False(t, got.CachedSettings.Visibility.Earn)
}

func TestStore_SaveIsPerUser(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	a := Defaults()
	a.LastReadTimestamp = 100
	require.NoError(t, store.Save("uid-a", a))

	b, err := store.Load("uid-b")
	require.NoError(t, err)
	assert.Zero(t, b.LastReadTimestamp)
}

func TestStore_PathStaysInsideDir(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "prefs")
	store, err := NewStore(dir)
	require.NoError(t, err)

	// UID с разделителями пути не должен увести файл из каталога.
	p := Defaults()
	p.LastReadTimestamp = 7
	require.NoError(t, store.Save("../escape", p))

	_, err = os.Stat(filepath.Join(parent, "escape.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	loaded, err := store.Load("../escape")
	require.NoError(t, err)
	assert.Equal(t, int64(7), loaded.LastReadTimestamp)
}

func TestStore_CorruptFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save("uid-1", Defaults()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uid-1.json"), []byte("{not json"), 0o644))

	p, loadErr := store.Load("uid-1")
	assert.Error(t, loadErr)
	assert.Equal(t, ThemeLight, p.Theme)
}
