package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	cookies := []*network.Cookie{
		{Name: "SCSessionID", Value: "abc123", Domain: ".scopus.com", Path: "/"},
		{Name: "tracker", Value: "xyz", Domain: ".ads.example.com", Path: "/"},
	}
	localStorage := map[string]string{"pref": `{"theme":"dark"}`}

	require.NoError(t, store.Save(cookies, localStorage))
	require.True(t, store.Exists())

	gotCookies, gotStorage, err := store.Load()
	require.NoError(t, err)
	require.Len(t, gotCookies, 2)
	assert.Equal(t, "SCSessionID", gotCookies[0].Name)
	assert.Equal(t, ".scopus.com", gotCookies[0].Domain)
	assert.Equal(t, localStorage, gotStorage)
}

func TestStore_LoadMissingArtifacts(t *testing.T) {
	store := NewStore(t.TempDir())

	assert.False(t, store.Exists())
	_, _, err := store.Load()
	assert.ErrorIs(t, err, ErrMissingArtifacts)
}

func TestStore_ExistsRequiresBothFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, store.Save(nil, map[string]string{}))

	require.NoError(t, os.Remove(filepath.Join(dir, "local_storage.json")))
	assert.False(t, store.Exists())

	_, _, err := store.Load()
	assert.ErrorIs(t, err, ErrMissingArtifacts)
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save(nil, map[string]string{"k": "v"}))
	require.NoError(t, store.Clear())
	assert.False(t, store.Exists())

	// Clearing an already-empty store is not an error.
	assert.NoError(t, store.Clear())
}
