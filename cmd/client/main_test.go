package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("game:\n  seats: 6\n  heartbeat_seconds: 2\n"), 0o644))

	tests := []struct {
		name      string
		path      string
		seats     int
		wantSeats int
		heartbeat time.Duration
	}{
		{"file settings", path, 0, 6, 2 * time.Second},
		{"flag overrides seats", path, 3, 3, 2 * time.Second},
		{"missing file falls back to defaults", filepath.Join(dir, "nope.yaml"), 0, 4, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := loadConfig(tt.path, tt.seats)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSeats, cfg.Game.Seats)
			assert.Equal(t, tt.heartbeat, cfg.Game.Heartbeat())
		})
	}
}

func TestLoadConfig_BadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("game: [\n"), 0o644))

	_, err := loadConfig(path, 0)
	assert.Error(t, err)
}
