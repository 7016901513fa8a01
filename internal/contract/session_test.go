package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	empty, err := LoadSession(path)
	require.NoError(t, err)
	assert.False(t, empty.LoggedIn())

	saved := Session{Token: "tok-123", TokenType: "bearer", UserName: "ana"}
	require.NoError(t, SaveSession(path, saved))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
	assert.True(t, loaded.LoggedIn())

	require.NoError(t, ClearSession(path))
	require.NoError(t, ClearSession(path), "clearing twice is fine")

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadSessionCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := LoadSession(path)
	assert.Error(t, err)
	assert.False(t, s.LoggedIn())
}
