package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortableHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnv, home)

	assert.Equal(t, filepath.Join(home, "config"), ConfigDir())
	assert.Equal(t, filepath.Join(home, "state"), StateDir())
	assert.Equal(t, filepath.Join(home, "cache"), CacheDir())
	assert.Equal(t, filepath.Join(home, "run", "backend.sock"), SocketPath())
	assert.Equal(t, filepath.Join(home, "state", "logs"), LogDir())

	require.NoError(t, EnsureDirs())
	assert.DirExists(t, filepath.Join(home, "run"))
}

func TestXDGOverrides(t *testing.T) {
	t.Setenv(HomeEnv, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_STATE_HOME", "/xdg/state")
	t.Setenv("XDG_RUNTIME_DIR", "")

	assert.Equal(t, "/xdg/config/sheetsync", ConfigDir())
	assert.Equal(t, "/xdg/state/sheetsync", StateDir())
	assert.Equal(t, "/xdg/state/sheetsync", RuntimeDir())

	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/sheetsync/backend.sock", SocketPath())
}

func TestExpand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SHEETSYNC_SOCKET_DIR", "/run/editor")

	got, err := Expand("~/editor.sock")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "editor.sock"), got)

	got, err = Expand("${SHEETSYNC_SOCKET_DIR}/backend.sock")
	require.NoError(t, err)
	assert.Equal(t, "/run/editor/backend.sock", got)

	got, err = Expand("relative.sock")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}
