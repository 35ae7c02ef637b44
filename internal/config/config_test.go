package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := load(envOf(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8888", cfg.ListenAddr())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
relay_url = "ws://relay.local/ws"
history_url = "http://relay.local"
room = "design"
port = 9000
history_newest_first = true
advertise = false
`), 0o644))

	cfg, err := load(envOf(map[string]string{"SKETCHROOM_CONFIG": path}))
	require.NoError(t, err)
	assert.Equal(t, Config{
		RelayURL:           "ws://relay.local/ws",
		HistoryURL:         "http://relay.local",
		Room:               "design",
		Port:               9000,
		HistoryNewestFirst: true,
	}, cfg)

	cfg, err = load(envOf(map[string]string{
		"SKETCHROOM_CONFIG": path,
		"SKETCHROOM_ROOM":   "review",
		"SKETCHROOM_TOKEN":  "secret",
		"PORT":              "7000",
		"REDIS_ADDR":        "localhost:6379",
	}))
	require.NoError(t, err)
	assert.Equal(t, "review", cfg.Room)
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "ws://relay.local/ws", cfg.RelayURL)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("port = \"nope\""), 0o644))

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing explicit file", map[string]string{"SKETCHROOM_CONFIG": filepath.Join(dir, "none.toml")}},
		{"bad toml", map[string]string{"SKETCHROOM_CONFIG": bad}},
		{"bad port", map[string]string{"PORT": "http"}},
		{"port out of range", map[string]string{"PORT": "70000"}},
	}
	t.Chdir(dir)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(envOf(tt.env))
			assert.Error(t, err)
		})
	}
}
