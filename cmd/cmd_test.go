package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/grovetools/sheetsync/errors"
	"github.com/grovetools/sheetsync/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendServer struct {
	*httptest.Server
	mu    sync.Mutex
	calls []string
}

func (b *backendServer) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func newBackendServer(t *testing.T) *backendServer {
	t.Helper()
	path := "/sheets/hero.tiger"
	snapshot := state.AppState{
		Documents: []state.Document{{
			Path:  path,
			Name:  "hero.tiger",
			Sheet: state.Sheet{Animations: map[string]state.Animation{}, Frames: []state.Frame{}},
		}},
		CurrentDocumentPath: &path,
	}
	snapshotJSON, err := json.Marshal(snapshot)
	require.NoError(t, err)

	b := &backendServer{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/api/invoke/")
		b.mu.Lock()
		b.calls = append(b.calls, name)
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch name {
		case "get_state":
			w.Write(snapshotJSON)
		case "undo":
			fmt.Fprint(w, `[{"op":"replace","path":"/documents/0/name","value":"undone.tiger"}]`)
		default:
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"error":"disk full"}`)
		}
	}))
	t.Cleanup(b.Close)
	return b
}

// writeConfig writes a project config pointing at url and returns its path.
func writeConfig(t *testing.T, url, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheetsync.yml")
	content := fmt.Sprintf("version: \"1.0\"\nbackend:\n  transport: http\n  url: %s\n%s", url, extra)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SHEETSYNC_HOME", t.TempDir())

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestStateCommand(t *testing.T) {
	backend := newBackendServer(t)
	cfg := writeConfig(t, backend.URL, "")

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "--config", cfg, "--json", "state")
		require.NoError(t, err)

		var got state.AppState
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got.Documents, 1)
		assert.Equal(t, "/sheets/hero.tiger", got.Documents[0].Path)
	})

	t.Run("summary", func(t *testing.T) {
		out, err := run(t, "--config", cfg, "state")
		require.NoError(t, err)
		assert.Contains(t, out, "hero.tiger")
	})
}

func TestInvokeAppliesReturnedPatch(t *testing.T) {
	backend := newBackendServer(t)
	cfg := writeConfig(t, backend.URL, "")

	out, err := run(t, "--config", cfg, "--json", "invoke", "undo")
	require.NoError(t, err)

	var got state.AppState
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "undone.tiger", got.Documents[0].Name)
	assert.Equal(t, []string{"get_state", "undo"}, backend.Calls())
}

func TestInvokeRejected(t *testing.T) {
	backend := newBackendServer(t)
	cfg := writeConfig(t, backend.URL, "")

	_, err := run(t, "--config", cfg, "invoke", "save")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeBackendRejected, errors.GetCode(err))

	syncErr, ok := errors.AsSyncError(err)
	require.True(t, ok)
	assert.Equal(t, "disk full", syncErr.Details["reason"])
}

func TestInvokeRefusesBeforeConnecting(t *testing.T) {
	backend := newBackendServer(t)
	cfg := writeConfig(t, backend.URL, "")

	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"unknown command", []string{"teleport"}, errors.ErrCodeUnknownCommand},
		{"unknown argument field", []string{"select_keyframe", `{"bogus":1}`}, errors.ErrCodeInvalidInput},
		{"arguments for a bare command", []string{"undo", `{"steps":2}`}, errors.ErrCodeInvalidInput},
		{"no command", nil, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"--config", cfg, "invoke"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
	assert.Empty(t, backend.Calls())
}

func TestInvokeList(t *testing.T) {
	out, err := run(t, "--json", "invoke", "--list")
	require.NoError(t, err)

	var names []string
	require.NoError(t, json.Unmarshal([]byte(out), &names))
	assert.Contains(t, names, "undo")
	assert.Contains(t, names, "save_as")
	assert.IsIncreasing(t, names)

	out, err = run(t, "invoke", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "needs an open document")
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := writeConfig(t, "http://127.0.0.1:1", "keybindings:\n  editor:\n    undo: [\"ctrl+u\"]\n")
		out, err := run(t, "--config", cfg, "config", "validate")
		require.NoError(t, err)
		assert.Contains(t, out, "Configuration is valid")
		assert.Contains(t, out, cfg)
	})

	t.Run("unknown action", func(t *testing.T) {
		cfg := writeConfig(t, "http://127.0.0.1:1", "keybindings:\n  editor:\n    teleport: [\"t\"]\n")
		_, err := run(t, "--config", cfg, "config", "validate")
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeConfigValidation, errors.GetCode(err))
		assert.Contains(t, err.Error(), "keybindings.editor.teleport")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yml"), "config", "validate")
		assert.Equal(t, errors.ErrCodeConfigNotFound, errors.GetCode(err))
	})
}

func TestConfigSchemaAndShow(t *testing.T) {
	out, err := run(t, "config", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"backend"`)
	assert.True(t, json.Valid([]byte(out)))

	cfg := writeConfig(t, "http://127.0.0.1:1", "")
	out, err = run(t, "--config", cfg, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# Source: "+cfg)
	assert.Contains(t, out, "transport: http")
}

func TestPathsHonourPortableHome(t *testing.T) {
	out, err := run(t, "paths")
	require.NoError(t, err)

	var got PathsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	home := os.Getenv("SHEETSYNC_HOME")
	assert.Equal(t, filepath.Join(home, "config"), got.ConfigDir)
	assert.Equal(t, filepath.Join(home, "run"), got.RuntimeDir)
	assert.True(t, strings.HasPrefix(got.Socket, got.RuntimeDir))
}

func TestVersionJSON(t *testing.T) {
	out, err := run(t, "--json", "version")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
	assert.NotEmpty(t, info["goVersion"])
}
